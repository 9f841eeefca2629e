package sql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintErrors(t *testing.T) {
	tests := []struct {
		name                               string
		err                                error
		unique, foreignKey, check, notNull bool
	}{
		{name: "nil"},
		{name: "plain", err: errors.New("connection refused")},
		{name: "pq_unique", err: &pq.Error{Code: "23505"}, unique: true},
		{name: "pq_fk", err: &pq.Error{Code: "23503"}, foreignKey: true},
		{name: "pq_check", err: &pq.Error{Code: "23514"}, check: true},
		{name: "pq_not_null", err: &pq.Error{Code: "23502"}, notNull: true},
		{name: "pq_other", err: &pq.Error{Code: "42P01", Message: "violates unique constraint"}},
		{name: "mysql_dup", err: &mysql.MySQLError{Number: 1062}, unique: true},
		{name: "mysql_fk_parent", err: &mysql.MySQLError{Number: 1451}, foreignKey: true},
		{name: "mysql_fk_child", err: &mysql.MySQLError{Number: 1452}, foreignKey: true},
		{name: "mysql_check", err: &mysql.MySQLError{Number: 3819}, check: true},
		{name: "mysql_bad_null", err: &mysql.MySQLError{Number: 1048}, notNull: true},
		{name: "sqlite_unique", err: errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), unique: true},
		{name: "sqlite_fk", err: errors.New("FOREIGN KEY constraint failed"), foreignKey: true},
		{name: "sqlite_check", err: errors.New("CHECK constraint failed: age > 0"), check: true},
		{name: "sqlite_not_null", err: errors.New("NOT NULL constraint failed: users.name"), notNull: true},
		{name: "wrapped", err: fmt.Errorf("dialect/sql: exec: %w", &pq.Error{Code: "23505"}), unique: true},
		{name: "pg_message", err: errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`), unique: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, IsUniqueConstraintError(tt.err))
			assert.Equal(t, tt.foreignKey, IsForeignKeyConstraintError(tt.err))
			assert.Equal(t, tt.check, IsCheckConstraintError(tt.err))
			assert.Equal(t, tt.notNull, IsNotNullConstraintError(tt.err))
			assert.Equal(t, tt.unique || tt.foreignKey || tt.check || tt.notNull, IsConstraintError(tt.err))
		})
	}
}
