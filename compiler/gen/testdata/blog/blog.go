package blog

import (
	"time"

	"github.com/syssam/sqlmodel/schema"
)

// Status is the publication state of an author.
type Status string

// Author writes posts.
type Author struct {
	ID     int64 `sql:"id,pk"`
	Name   string
	Email  *string `sql:"email_address"`
	Bio    schema.Opt[string]
	Joined time.Time
	Tags   []string `sql:"tags"`
	Status Status
}
