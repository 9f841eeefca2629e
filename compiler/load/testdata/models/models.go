package models

import (
	"time"

	"github.com/syssam/sqlmodel/schema"
)

// User is a registered user.
type User struct {
	ID        int64 `sql:"id,pk"`
	Name      *string
	Age       schema.Opt[int]
	CreatedAt time.Time `sql:"created"`
	Scratch   string    `sql:"-"`
	note      string
}

// Post is written by a user.
//
//sqlmodel:table blog_posts
type Post struct {
	ID       int64 `sql:",pk"`
	AuthorID int64
	Tags     []string
	rank     int `sql:"rank"`
}

// Options has no mapped field.
type Options struct {
	Verbose bool
}

// Page is generic and never a model.
type Page[T any] struct {
	Items []T `sql:"items"`
}

func (p Post) Rank() int { return p.rank }

func (u User) Note() string { return u.note }
