// Package mixin provides ready-made field groups on top of schema/mixin.
//
// These mixins are OPTIONAL and provided as convenient starting points.
//
// Available mixins:
//   - ID: UUID primary key generated on the client
//   - TenantID: tenant_id column for row-level multi-tenancy
//   - TimeSoftDelete: created_at, updated_at and deleted_at columns
//
// Usage:
//
//	type Document struct {
//	    mixin.ID
//	    mixin.TenantID
//	    mixin.TimeSoftDelete
//	    Title string
//	}
//
//	var Documents = schema.MustRegister[Document]("documents",
//	    mixin.IDOf(func(d *Document) *mixin.ID { return &d.ID }),
//	    mixin.TenantIDOf(func(d *Document) *mixin.TenantID { return &d.TenantID }),
//	    mixin.TimeSoftDeleteOf(func(d *Document) *mixin.TimeSoftDelete { return &d.TimeSoftDelete }),
//	    schema.Field("title", func(d *Document) *string { return &d.Title }),
//	)
package mixin

import (
	"github.com/google/uuid"

	"github.com/syssam/sqlmodel/privacy"
	"github.com/syssam/sqlmodel/schema"
	"github.com/syssam/sqlmodel/schema/mixin"
)

// ID adds a UUID primary key.
//
//	id CHAR(36) PRIMARY KEY
type ID struct {
	ID uuid.UUID
}

// Generate assigns a random UUID unless the key is already set.
func (m *ID) Generate() uuid.UUID {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return m.ID
}

// IDOf returns the descriptor of the ID column embedded in T.
func IDOf[T any](get func(*T) *ID) schema.Group[T] {
	return schema.Embed(get,
		schema.Field("id", func(m *ID) *uuid.UUID { return &m.ID }).PrimaryKey(),
	)
}

// TenantColumn is the column of the TenantID mixin.
const TenantColumn = "tenant_id"

// TenantID adds a tenant_id column. Combined with TenantPolicy, it
// isolates the records of each tenant.
//
//	tenant_id VARCHAR(255) NOT NULL
type TenantID struct {
	TenantID string
}

// TenantIDOf returns the descriptor of the TenantID column embedded in T.
func TenantIDOf[T any](get func(*T) *TenantID) schema.Group[T] {
	return schema.Embed(get,
		schema.Field("tenantID", func(m *TenantID) *string { return &m.TenantID }).Column(TenantColumn),
	)
}

// TenantPolicy returns the policy of a tenant-scoped model: reads need a
// viewer with a tenant, and modifications are allowed only when they
// write the tenant of the viewer.
//
//	docs, err := service.New[Document](drv, service.WithPolicy(mixin.TenantPolicy()))
func TenantPolicy() privacy.Policy {
	return privacy.Policy{
		Query: privacy.QueryPolicy{
			privacy.TenantQueryRule(),
		},
		Mutation: privacy.MutationPolicy{
			privacy.DenyIfNoViewer(),
			privacy.TenantRule(TenantColumn),
			privacy.AlwaysDenyRule(),
		},
	}
}

// TimeSoftDelete composes the Time and SoftDelete mixins of schema/mixin.
type TimeSoftDelete struct {
	mixin.Time
	mixin.SoftDelete
}

// TimeSoftDeleteOf returns the descriptors of the TimeSoftDelete columns
// embedded in T.
func TimeSoftDeleteOf[T any](get func(*T) *TimeSoftDelete) schema.Group[T] {
	return append(
		mixin.TimeOf(func(m *T) *mixin.Time { return &get(m).Time }),
		mixin.SoftDeleteOf(func(m *T) *mixin.SoftDelete { return &get(m).SoftDelete })...,
	)
}
