package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlBadNull                = 1048
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err) ||
		IsNotNullConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	return matches(err, []string{pgUniqueViolation}, []uint16{mysqlDuplicateEntry},
		"UNIQUE constraint failed",   // SQLite
		"violates unique constraint", // Postgres (string fallback)
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	return matches(err, []string{pgForeignKeyViolation}, []uint16{mysqlForeignKeyParent, mysqlForeignKeyChild},
		"FOREIGN KEY constraint failed",   // SQLite
		"violates foreign key constraint", // Postgres (string fallback)
	)
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
func IsCheckConstraintError(err error) bool {
	return matches(err, []string{pgCheckViolation}, []uint16{mysqlCheckConstraintViolate},
		"CHECK constraint failed",   // SQLite
		"violates check constraint", // Postgres (string fallback)
	)
}

// IsNotNullConstraintError reports if the error resulted from writing NULL into a
// NOT NULL column. A non-selective modify of a record with absent fields is the
// usual way to hit it.
func IsNotNullConstraintError(err error) bool {
	return matches(err, []string{pgNotNullViolation}, []uint16{mysqlBadNull},
		"NOT NULL constraint failed",   // SQLite
		"violates not-null constraint", // Postgres (string fallback)
	)
}

func matches(err error, pgCodes []string, mysqlNumbers []uint16, fallback ...string) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		for _, c := range pgCodes {
			if string(pqErr.Code) == c {
				return true
			}
		}
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		for _, n := range mysqlNumbers {
			if myErr.Number == n {
				return true
			}
		}
		return false
	}
	// Drivers without typed errors (modernc.org/sqlite) are matched by message.
	msg := err.Error()
	for _, sub := range fallback {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}
