package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlmodel/dialect"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/dialect/sql/schema"
)

func TestValidateTable(t *testing.T) {
	users := schema.Table{Name: "users", Columns: []string{"id", "name", "age"}}

	t.Run("match", func(t *testing.T) {
		r := schema.ValidateTable(users, []string{"ID", "name", "age"})
		assert.False(t, r.HasErrors())
		assert.False(t, r.HasWarnings())
		assert.Equal(t, "No issues found", r.String())
	})

	t.Run("missing", func(t *testing.T) {
		r := schema.ValidateTable(users, []string{"id", "name"})
		require.Len(t, r.Errors, 1)
		assert.Equal(t, "users.age: column does not exist", r.Errors[0].Error())
		assert.Contains(t, r.String(), "Errors:\n  - users.age: column does not exist\n")
	})

	t.Run("duplicate", func(t *testing.T) {
		dup := schema.Table{Name: "users", Columns: []string{"id", "name", "Name"}}
		r := schema.ValidateTable(dup, []string{"id", "name"})
		require.Len(t, r.Errors, 1)
		assert.Equal(t, "users.Name: column is mapped more than once", r.Errors[0].Error())
	})

	t.Run("unmapped", func(t *testing.T) {
		r := schema.ValidateTable(users, []string{"id", "name", "age", "note"})
		assert.False(t, r.HasErrors())
		require.Len(t, r.Warnings, 1)
		assert.Equal(t, "users.note: column is not mapped", r.Warnings[0].Error())

		r = schema.ValidateTable(users, []string{"id", "name", "age", "note"}, schema.IgnoreUnmapped())
		assert.False(t, r.HasWarnings())
	})
}

func TestValidate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	drv := sql.OpenDB(dialect.MySQL, db)

	mock.ExpectQuery("SELECT * FROM `users` LIMIT 0").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "note"}))
	mock.ExpectQuery("SELECT * FROM `posts` LIMIT 0").
		WillReturnError(errors.New("table posts doesn't exist"))

	r, err := schema.Validate(context.Background(), drv, []schema.Table{
		{Name: "users", Columns: []string{"id", "name", "age"}},
		{Name: "posts", Columns: []string{"id"}},
	})
	require.NoError(t, err)
	require.Len(t, r.Errors, 2)
	assert.Equal(t, "users.age: column does not exist", r.Errors[0].Error())
	assert.Contains(t, r.Errors[1].Error(), "posts: table cannot be read")
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "users.note: column is not mapped", r.Warnings[0].Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateCanceled(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = schema.Validate(ctx, sql.OpenDB(dialect.MySQL, db), []schema.Table{{Name: "users"}})
	assert.ErrorIs(t, err, context.Canceled)
}
