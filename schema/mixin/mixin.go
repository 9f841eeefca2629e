// Package mixin provides field groups shared by several models.
//
// A mixin is a plain struct embedded in the model together with the field
// descriptors of its columns. Lift it into a model with schema.Embed:
//
//	type User struct {
//	    ID int64
//	    mixin.Time
//	}
//
//	var Users = schema.MustRegister[User]("users",
//	    schema.Field("id", func(u *User) *int64 { return &u.ID }).PrimaryKey(),
//	    mixin.TimeOf(func(u *User) *mixin.Time { return &u.Time }),
//	)
//
// Custom mixins follow the same pattern:
//
//	type Audit struct {
//	    CreatedBy string
//	    UpdatedBy schema.Opt[string]
//	}
//
//	func AuditOf[T any](get func(*T) *Audit) schema.Group[T] {
//	    return schema.Embed(get,
//	        schema.Field("createdBy", func(a *Audit) *string { return &a.CreatedBy }),
//	        schema.Field("updatedBy", func(a *Audit) *schema.Opt[string] { return &a.UpdatedBy }),
//	    )
//	}
package mixin

import (
	"time"

	"github.com/syssam/sqlmodel/schema"
)

// Time adds created_at and updated_at columns.
// A zero timestamp is absent, so selective modifications leave it untouched.
type Time struct {
	CreatedAt schema.Opt[time.Time]
	UpdatedAt schema.Opt[time.Time]
}

// Touch sets UpdatedAt to now, and CreatedAt too if it is not set.
func (m *Time) Touch(now time.Time) {
	if _, ok := m.CreatedAt.Get(); !ok {
		m.CreatedAt = schema.Some(now)
	}
	m.UpdatedAt = schema.Some(now)
}

// TimeOf returns the descriptors of the Time columns embedded in T.
func TimeOf[T any](get func(*T) *Time) schema.Group[T] {
	return schema.Embed(get,
		schema.Field("createdAt", func(m *Time) *schema.Opt[time.Time] { return &m.CreatedAt }),
		schema.Field("updatedAt", func(m *Time) *schema.Opt[time.Time] { return &m.UpdatedAt }),
	)
}

// SoftDelete adds a deleted_at column. A NULL deleted_at marks a live record.
type SoftDelete struct {
	DeletedAt schema.Opt[time.Time]
}

// Deleted reports whether the record is marked as deleted.
func (m SoftDelete) Deleted() bool {
	_, ok := m.DeletedAt.Get()
	return ok
}

// SoftDeleteOf returns the descriptor of the SoftDelete column embedded in T.
func SoftDeleteOf[T any](get func(*T) *SoftDelete) schema.Group[T] {
	return schema.Embed(get,
		schema.Field("deletedAt", func(m *SoftDelete) *schema.Opt[time.Time] { return &m.DeletedAt }),
	)
}
