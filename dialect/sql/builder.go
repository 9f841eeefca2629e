package sql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/sqlmodel/dialect"
)

// Querier wraps the basic Query method that is implemented
// by the different statement builders in this file.
type Querier interface {
	// Query returns the query representation of the element
	// and its arguments (if any).
	Query() (string, []any, error)
}

// Predicate writes a boolean SQL expression into the builder.
// Failures are recorded with Builder.AddError.
type Predicate func(*Builder)

// Builder is the base query builder for the sql dsl.
// It holds the SQL text, the bound arguments and the placeholder
// counter of a single statement.
type Builder struct {
	sb      strings.Builder
	args    []any
	dialect string
	errs    []error
}

// Dialect creates a new Builder for the given dialect.
func Dialect(name string) *Builder {
	return &Builder{dialect: name}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// WriteString writes the given string as is.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte writes the given byte as is.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad adds a space to the query.
func (b *Builder) Pad() *Builder {
	return b.WriteByte(' ')
}

// Len returns the length of the written query.
func (b *Builder) Len() int { return b.sb.Len() }

// Quote quotes the given identifier with the dialect quoting characters.
// Qualified identifiers ("t.c") are quoted part by part, and "*" is left as is.
func (b *Builder) Quote(ident string) string {
	if ident == "*" {
		return ident
	}
	q := `"`
	if b.dialect == dialect.MySQL {
		q = "`"
	}
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}

// Ident writes the given identifier quoted.
func (b *Builder) Ident(ident string) *Builder {
	if ident == "" {
		b.AddError(errors.New("dialect/sql: empty identifier"))
		return b
	}
	return b.WriteString(b.Quote(ident))
}

// IdentComma writes the identifiers separated by commas.
func (b *Builder) IdentComma(idents ...string) *Builder {
	for i, ident := range idents {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(ident)
	}
	return b
}

// Arg appends an input argument and writes its placeholder.
func (b *Builder) Arg(a any) *Builder {
	b.args = append(b.args, a)
	if b.dialect == dialect.Postgres {
		return b.WriteString("$" + strconv.Itoa(len(b.args)))
	}
	return b.WriteByte('?')
}

// Args appends a list of arguments to the builder, separated by commas.
func (b *Builder) Args(as ...any) *Builder {
	for i, a := range as {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(a)
	}
	return b
}

// Wrap writes the output of f wrapped in parentheses.
func (b *Builder) Wrap(f func(*Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	return b.WriteByte(')')
}

// AddError appends an error to the builder errors.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns a concatenated error of all errors encountered during
// the query-building, or were added manually by calling AddError.
func (b *Builder) Err() error {
	if len(b.errs) == 1 {
		return b.errs[0]
	}
	return errors.Join(b.errs...)
}

// Query implements the Querier interface.
func (b *Builder) Query() (string, []any, error) {
	return b.sb.String(), b.args, b.Err()
}

// OrderTerm is a single ORDER BY term.
type OrderTerm struct {
	Column string
	Desc   bool
}

// Selector is a builder for the `SELECT` statement.
type Selector struct {
	dialect  string
	columns  []string
	count    bool
	table    string
	template string
	where    Predicate
	order    []OrderTerm
	limit    *int
	offset   *int
}

// Select returns a new selector for the `SELECT` statement.
func Select(d string, columns ...string) *Selector {
	return &Selector{dialect: d, columns: columns}
}

// SelectTemplate returns a selector whose `SELECT ... FROM ...` part is the
// given caller-trusted SQL text. The WHERE, ORDER BY and pagination clauses
// are appended by the selector.
func SelectTemplate(d, template string) *Selector {
	return &Selector{dialect: d, template: strings.TrimSpace(template)}
}

// From sets the source table of the selector.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Count turns the selector into a `SELECT COUNT(*)` statement.
func (s *Selector) Count() *Selector {
	s.count = true
	return s
}

// Where sets the predicate of the statement. A nil predicate is a no-op.
func (s *Selector) Where(p Predicate) *Selector {
	s.where = p
	return s
}

// OrderBy appends ordering terms to the selector.
func (s *Selector) OrderBy(terms ...OrderTerm) *Selector {
	s.order = append(s.order, terms...)
	return s
}

// Limit adds the `LIMIT` clause to the `SELECT` statement.
func (s *Selector) Limit(limit int) *Selector {
	s.limit = &limit
	return s
}

// Offset adds the `OFFSET` clause to the `SELECT` statement.
func (s *Selector) Offset(offset int) *Selector {
	s.offset = &offset
	return s
}

// Query returns query representation of a `SELECT` statement.
func (s *Selector) Query() (string, []any, error) {
	b := Dialect(s.dialect)
	switch {
	case s.template != "":
		b.WriteString(s.template)
	case s.table == "":
		b.AddError(errors.New("dialect/sql: missing table for select"))
	default:
		b.WriteString("SELECT ")
		switch {
		case s.count:
			b.WriteString("COUNT(*)")
		case len(s.columns) == 0:
			b.WriteByte('*')
		default:
			b.IdentComma(s.columns...)
		}
		b.WriteString(" FROM ").Ident(s.table)
	}
	writeWhere(b, s.where)
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, t := range s.order {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(t.Column)
			if t.Desc {
				b.WriteString(" DESC")
			}
		}
	}
	if s.limit != nil {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		// MySQL and SQLite do not accept OFFSET without LIMIT.
		switch {
		case s.limit != nil:
		case b.dialect == dialect.MySQL:
			b.WriteString(" LIMIT 18446744073709551615")
		case b.dialect != dialect.Postgres:
			b.WriteString(" LIMIT -1")
		}
		b.WriteString(" OFFSET ").WriteString(strconv.Itoa(*s.offset))
	}
	return b.Query()
}

// Assignment is a single `SET column = value` pair. A nil Value is
// written as SQL NULL.
type Assignment struct {
	Column string
	Value  any
}

// UpdateBuilder is a builder for `UPDATE` statement.
type UpdateBuilder struct {
	dialect string
	table   string
	sets    []Assignment
	where   Predicate
}

// Update creates a builder for the `UPDATE` statement.
func Update(d, table string) *UpdateBuilder {
	return &UpdateBuilder{dialect: d, table: table}
}

// Set sets a column to a given value.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.sets = append(u.sets, Assignment{Column: column, Value: v})
	return u
}

// SetNull sets a column as null value.
func (u *UpdateBuilder) SetNull(column string) *UpdateBuilder {
	return u.Set(column, nil)
}

// Empty reports whether this builder does not contain update changes.
func (u *UpdateBuilder) Empty() bool {
	return len(u.sets) == 0
}

// Where sets the predicate of the statement. A nil predicate is a no-op.
func (u *UpdateBuilder) Where(p Predicate) *UpdateBuilder {
	u.where = p
	return u
}

// Query returns query representation of an `UPDATE` statement.
func (u *UpdateBuilder) Query() (string, []any, error) {
	b := Dialect(u.dialect)
	if u.Empty() {
		b.AddError(fmt.Errorf("dialect/sql: update %s: no columns to set", u.table))
	}
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, a := range u.sets {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(a.Column).WriteString(" = ")
		if a.Value == nil {
			b.WriteString("NULL")
		} else {
			b.Arg(a.Value)
		}
	}
	writeWhere(b, u.where)
	return b.Query()
}

// DeleteBuilder is a builder for `DELETE` statement.
type DeleteBuilder struct {
	dialect string
	table   string
	where   Predicate
}

// Delete creates a builder for the `DELETE` statement.
func Delete(d, table string) *DeleteBuilder {
	return &DeleteBuilder{dialect: d, table: table}
}

// Where sets the predicate of the statement. A nil predicate is a no-op.
func (d *DeleteBuilder) Where(p Predicate) *DeleteBuilder {
	d.where = p
	return d
}

// Query returns query representation of a `DELETE` statement.
func (d *DeleteBuilder) Query() (string, []any, error) {
	b := Dialect(d.dialect)
	b.WriteString("DELETE FROM ").Ident(d.table)
	writeWhere(b, d.where)
	return b.Query()
}

func writeWhere(b *Builder, p Predicate) {
	if p == nil {
		return
	}
	start := b.Len()
	b.WriteString(" WHERE ")
	mark := b.Len()
	p(b)
	if b.Len() == mark {
		// The predicate wrote nothing, drop the dangling keyword.
		s := b.sb.String()[:start]
		b.sb.Reset()
		b.sb.WriteString(s)
	}
}
