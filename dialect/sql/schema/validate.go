// Package schema checks the tables of a database against the tables
// registered for models.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/syssam/sqlmodel/dialect"
	"github.com/syssam/sqlmodel/dialect/sql"
)

// Table is the expected shape of a database table.
type Table struct {
	Name    string
	Columns []string
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Merge appends the errors and warnings of o to r.
func (r *ValidationResult) Merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	ignoreUnmapped bool
}

// IgnoreUnmapped drops the warnings about database columns no model field
// is mapped to.
func IgnoreUnmapped() ValidateOption {
	return func(c *validateConfig) {
		c.ignoreUnmapped = true
	}
}

// ValidateTable compares the columns of a table with the columns the
// database reports for it. Missing and duplicated columns are errors and
// unmapped database columns are warnings. Names are compared without case.
func ValidateTable(t Table, current []string, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	have := make(map[string]bool, len(current))
	for _, c := range current {
		have[strings.ToLower(c)] = true
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		key := strings.ToLower(c)
		switch {
		case seen[key]:
			result.Errors = append(result.Errors, &ValidationError{Table: t.Name, Column: c, Message: "column is mapped more than once"})
		case !have[key]:
			result.Errors = append(result.Errors, &ValidationError{Table: t.Name, Column: c, Message: "column does not exist"})
		}
		seen[key] = true
	}
	if !cfg.ignoreUnmapped {
		for _, c := range current {
			if !seen[strings.ToLower(c)] {
				result.Warnings = append(result.Warnings, &ValidationError{Table: t.Name, Column: c, Message: "column is not mapped"})
			}
		}
	}
	return result
}

// Columns returns the columns of a table as reported by the database.
func Columns(ctx context.Context, drv dialect.Driver, table string) ([]string, error) {
	query, args, err := sql.Select(drv.Dialect()).From(table).Limit(0).Query()
	if err != nil {
		return nil, err
	}
	var rows sql.Rows
	if err := drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}

// Validate checks every table against the database. A table the database
// cannot read is reported as an error; a failing context aborts.
//
// Example:
//
//	result, err := schema.Validate(ctx, drv, tables)
//	if err != nil {
//	    return err
//	}
//	if result.HasErrors() {
//	    log.Fatal("schema mismatch:\n", result)
//	}
func Validate(ctx context.Context, drv dialect.Driver, tables []Table, opts ...ValidateOption) (*ValidationResult, error) {
	result := &ValidationResult{}
	for _, t := range tables {
		current, err := Columns(ctx, drv, t.Name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Errors = append(result.Errors, &ValidationError{Table: t.Name, Message: fmt.Sprintf("table cannot be read: %v", err)})
			continue
		}
		result.Merge(ValidateTable(t, current, opts...))
	}
	return result, nil
}
