package fragment

import (
	"fmt"
	"strings"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/dialect"
	"github.com/syssam/sqlmodel/dialect/sql"
)

// Resolver maps a field name used in a fragment to its column name.
// schema.Table.Column is the usual implementation.
type Resolver func(field string) (string, error)

// Op is a comparison operator.
type Op string

// Comparison operators.
const (
	OpEQ   Op = "="
	OpNEQ  Op = "<>"
	OpGT   Op = ">"
	OpGTE  Op = ">="
	OpLT   Op = "<"
	OpLTE  Op = "<="
	OpLike Op = "LIKE"
)

// Condition is an immutable predicate tree over model fields. Values are
// always bound as query arguments. The zero value is the empty condition,
// which matches every record.
type Condition struct {
	n node
}

type node interface {
	render(*sql.Builder, Resolver) error
	format(*strings.Builder)
}

// EQ returns a condition matching records whose field equals v.
func EQ(field string, v any) Condition { return cmp(field, OpEQ, v) }

// NEQ returns a condition matching records whose field is not equal to v.
func NEQ(field string, v any) Condition { return cmp(field, OpNEQ, v) }

// GT returns a condition matching records whose field is greater than v.
func GT(field string, v any) Condition { return cmp(field, OpGT, v) }

// GTE returns a condition matching records whose field is greater than or equal to v.
func GTE(field string, v any) Condition { return cmp(field, OpGTE, v) }

// LT returns a condition matching records whose field is less than v.
func LT(field string, v any) Condition { return cmp(field, OpLT, v) }

// LTE returns a condition matching records whose field is less than or equal to v.
func LTE(field string, v any) Condition { return cmp(field, OpLTE, v) }

// Like returns a condition matching records whose field matches the LIKE pattern.
func Like(field, pattern string) Condition { return cmp(field, OpLike, pattern) }

// Contains returns a condition matching records whose field contains sub.
// Wildcard characters in sub match literally.
func Contains(field, sub string) Condition {
	return Condition{n: &likeNode{field: field, pattern: "%" + escapeLike(sub) + "%"}}
}

// HasPrefix returns a condition matching records whose field starts with prefix.
func HasPrefix(field, prefix string) Condition {
	return Condition{n: &likeNode{field: field, pattern: escapeLike(prefix) + "%"}}
}

// HasSuffix returns a condition matching records whose field ends with suffix.
func HasSuffix(field, suffix string) Condition {
	return Condition{n: &likeNode{field: field, pattern: "%" + escapeLike(suffix)}}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func cmp(field string, op Op, v any) Condition {
	return Condition{n: &cmpNode{field: field, op: op, value: v}}
}

// In returns a membership condition. With no values it matches nothing.
func In(field string, vs ...any) Condition {
	return Condition{n: &inNode{field: field, values: append([]any(nil), vs...)}}
}

// NotIn returns a negated membership condition. With no values it matches
// every record.
func NotIn(field string, vs ...any) Condition {
	return Condition{n: &inNode{field: field, values: append([]any(nil), vs...), not: true}}
}

// IsNull returns a condition matching records whose field is NULL.
func IsNull(field string) Condition {
	return Condition{n: &nullNode{field: field}}
}

// NotNull returns a condition matching records whose field is not NULL.
func NotNull(field string) Condition {
	return Condition{n: &nullNode{field: field, not: true}}
}

// And returns the conjunction of the given conditions. Empty conditions
// are dropped, and nested conjunctions are flattened.
func And(cs ...Condition) Condition { return junction("AND", cs) }

// Or returns the disjunction of the given conditions. Empty conditions are
// dropped.
func Or(cs ...Condition) Condition { return junction("OR", cs) }

func junction(op string, cs []Condition) Condition {
	var nodes []node
	for _, c := range cs {
		switch n := c.n.(type) {
		case nil:
		case *junctionNode:
			if n.op == op {
				nodes = append(nodes, n.nodes...)
			} else {
				nodes = append(nodes, n)
			}
		default:
			nodes = append(nodes, n)
		}
	}
	switch len(nodes) {
	case 0:
		return Condition{}
	case 1:
		return Condition{n: nodes[0]}
	default:
		return Condition{n: &junctionNode{op: op, nodes: nodes}}
	}
}

// Not returns the negation of c. The negation of the empty condition is
// the empty condition.
func Not(c Condition) Condition {
	if c.n == nil {
		return c
	}
	return Condition{n: &notNode{n: c.n}}
}

// Raw returns a condition from a caller-trusted SQL expression. Each '?'
// in expr is replaced by the dialect placeholder of the matching argument,
// including a '?' inside a string literal. "??" writes a literal '?', as
// needed by the jsonb operators of PostgreSQL. Column names in expr are
// written as is.
//
//	fragment.Raw("age BETWEEN ? AND ?", 18, 30)
//	fragment.Raw("tags ??| ?", pq.Array([]string{"a", "b"}))
func Raw(expr string, args ...any) Condition {
	return Condition{n: &rawNode{expr: expr, args: append([]any(nil), args...)}}
}

// And returns the conjunction of c and the given conditions. c is left unchanged.
func (c Condition) And(cs ...Condition) Condition {
	return And(append([]Condition{c}, cs...)...)
}

// Or returns the disjunction of c and the given conditions. c is left unchanged.
func (c Condition) Or(cs ...Condition) Condition {
	return Or(append([]Condition{c}, cs...)...)
}

// IsEmpty reports whether c is the empty condition.
func (c Condition) IsEmpty() bool { return c.n == nil }

// Render writes c into b, resolving field names with resolve.
func (c Condition) Render(b *sql.Builder, resolve Resolver) error {
	if c.n == nil {
		return nil
	}
	return c.n.render(b, resolve)
}

// Predicate returns c as a builder predicate, or nil for the empty
// condition. Render errors are recorded on the builder.
func (c Condition) Predicate(resolve Resolver) sql.Predicate {
	if c.n == nil {
		return nil
	}
	return func(b *sql.Builder) {
		b.AddError(c.n.render(b, resolve))
	}
}

// String returns a readable representation of c, with values inlined.
// It is meant for logs and never sent to the database.
func (c Condition) String() string {
	if c.n == nil {
		return ""
	}
	var sb strings.Builder
	c.n.format(&sb)
	return sb.String()
}

type cmpNode struct {
	field string
	op    Op
	value any
}

func (n *cmpNode) render(b *sql.Builder, resolve Resolver) error {
	col, err := resolve(n.field)
	if err != nil {
		return err
	}
	if n.value == nil {
		return sqlmodel.NewInvalidArgumentError(n.field, nil, "nil value, use IsNull or NotNull")
	}
	b.Ident(col).Pad().WriteString(string(n.op)).Pad().Arg(n.value)
	return nil
}

func (n *cmpNode) format(sb *strings.Builder) {
	fmt.Fprintf(sb, "%s %s %v", n.field, n.op, n.value)
}

type likeNode struct {
	field   string
	pattern string
}

func (n *likeNode) render(b *sql.Builder, resolve Resolver) error {
	col, err := resolve(n.field)
	if err != nil {
		return err
	}
	b.Ident(col).WriteString(" LIKE ").Arg(n.pattern)
	// MySQL and PostgreSQL use backslash as the default LIKE escape character.
	if b.Dialect() == dialect.SQLite {
		b.WriteString(` ESCAPE '\'`)
	}
	return nil
}

func (n *likeNode) format(sb *strings.Builder) {
	fmt.Fprintf(sb, "%s LIKE %s", n.field, n.pattern)
}

type inNode struct {
	field  string
	values []any
	not    bool
}

func (n *inNode) render(b *sql.Builder, resolve Resolver) error {
	col, err := resolve(n.field)
	if err != nil {
		return err
	}
	if len(n.values) == 0 {
		if n.not {
			b.WriteString("1 = 1")
		} else {
			b.WriteString("1 = 0")
		}
		return nil
	}
	b.Ident(col)
	if n.not {
		b.WriteString(" NOT")
	}
	b.WriteString(" IN ")
	b.Wrap(func(b *sql.Builder) { b.Args(n.values...) })
	return nil
}

func (n *inNode) format(sb *strings.Builder) {
	sb.WriteString(n.field)
	if n.not {
		sb.WriteString(" NOT")
	}
	sb.WriteString(" IN (")
	for i, v := range n.values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(sb, v)
	}
	sb.WriteByte(')')
}

type nullNode struct {
	field string
	not   bool
}

func (n *nullNode) render(b *sql.Builder, resolve Resolver) error {
	col, err := resolve(n.field)
	if err != nil {
		return err
	}
	b.Ident(col).WriteString(" IS ")
	if n.not {
		b.WriteString("NOT ")
	}
	b.WriteString("NULL")
	return nil
}

func (n *nullNode) format(sb *strings.Builder) {
	sb.WriteString(n.field)
	if n.not {
		sb.WriteString(" IS NOT NULL")
	} else {
		sb.WriteString(" IS NULL")
	}
}

type junctionNode struct {
	op    string
	nodes []node
}

func (n *junctionNode) render(b *sql.Builder, resolve Resolver) error {
	for i, c := range n.nodes {
		if i > 0 {
			b.Pad().WriteString(n.op).Pad()
		}
		var err error
		if grouped(c) {
			b.Wrap(func(b *sql.Builder) { err = c.render(b, resolve) })
		} else {
			err = c.render(b, resolve)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (n *junctionNode) format(sb *strings.Builder) {
	for i, c := range n.nodes {
		if i > 0 {
			sb.WriteString(" " + n.op + " ")
		}
		if grouped(c) {
			sb.WriteByte('(')
			c.format(sb)
			sb.WriteByte(')')
		} else {
			c.format(sb)
		}
	}
}

// grouped reports whether n must be parenthesized inside a junction.
func grouped(n node) bool {
	switch n.(type) {
	case *junctionNode, *rawNode:
		return true
	default:
		return false
	}
}

type notNode struct {
	n node
}

func (n *notNode) render(b *sql.Builder, resolve Resolver) error {
	var err error
	b.WriteString("NOT ").Wrap(func(b *sql.Builder) { err = n.n.render(b, resolve) })
	return err
}

func (n *notNode) format(sb *strings.Builder) {
	sb.WriteString("NOT (")
	n.n.format(sb)
	sb.WriteByte(')')
}

type rawNode struct {
	expr string
	args []any
}

func (n *rawNode) render(b *sql.Builder, _ Resolver) error {
	parts := splitRaw(n.expr)
	if got := len(parts) - 1; got != len(n.args) {
		return sqlmodel.NewInvalidArgumentError("raw", n.expr,
			fmt.Sprintf("expression has %d placeholders but %d arguments", got, len(n.args)))
	}
	for i, a := range n.args {
		b.WriteString(parts[i]).Arg(a)
	}
	b.WriteString(parts[len(parts)-1])
	return nil
}

// splitRaw splits expr at its placeholders and unescapes "??".
func splitRaw(expr string) []string {
	var (
		parts []string
		cur   strings.Builder
	)
	for i := 0; i < len(expr); i++ {
		switch {
		case expr[i] != '?':
			cur.WriteByte(expr[i])
		case i+1 < len(expr) && expr[i+1] == '?':
			cur.WriteByte('?')
			i++
		default:
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	return append(parts, cur.String())
}

func (n *rawNode) format(sb *strings.Builder) {
	sb.WriteString(n.expr)
	if len(n.args) > 0 {
		fmt.Fprintf(sb, " %v", n.args)
	}
}
