package fragment

import (
	"strings"

	"github.com/syssam/sqlmodel/dialect/sql"
)

// Direction is the sort direction of an order term.
type Direction int

// Sort directions.
const (
	Ascending Direction = iota
	Descending
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// Order is a single (field, direction) sort term.
type Order struct {
	Field     string
	Direction Direction
}

// Sort is an immutable, ordered list of sort terms. The zero value means
// no explicit ordering.
type Sort struct {
	orders []Order
}

// Asc returns a sort by the given fields in ascending order.
func Asc(fields ...string) Sort { return sortOf(Ascending, fields) }

// Desc returns a sort by the given fields in descending order.
func Desc(fields ...string) Sort { return sortOf(Descending, fields) }

func sortOf(d Direction, fields []string) Sort {
	orders := make([]Order, len(fields))
	for i, f := range fields {
		orders[i] = Order{Field: f, Direction: d}
	}
	return Sort{orders: orders}
}

// SortOf returns a sort from the given terms.
func SortOf(orders ...Order) Sort {
	return Sort{orders: append([]Order(nil), orders...)}
}

// Then returns a sort with the terms of next appended to s. s is left unchanged.
func (s Sort) Then(next ...Sort) Sort {
	orders := append([]Order(nil), s.orders...)
	for _, n := range next {
		orders = append(orders, n.orders...)
	}
	return Sort{orders: orders}
}

// IsEmpty reports whether s has no terms.
func (s Sort) IsEmpty() bool { return len(s.orders) == 0 }

// Orders returns a copy of the terms of s.
func (s Sort) Orders() []Order {
	return append([]Order(nil), s.orders...)
}

// Terms resolves the terms of s into builder order terms.
func (s Sort) Terms(resolve Resolver) ([]sql.OrderTerm, error) {
	if len(s.orders) == 0 {
		return nil, nil
	}
	terms := make([]sql.OrderTerm, len(s.orders))
	for i, o := range s.orders {
		col, err := resolve(o.Field)
		if err != nil {
			return nil, err
		}
		terms[i] = sql.OrderTerm{Column: col, Desc: o.Direction == Descending}
	}
	return terms, nil
}

// String implements fmt.Stringer.
func (s Sort) String() string {
	parts := make([]string, len(s.orders))
	for i, o := range s.orders {
		parts[i] = o.Field + " " + o.Direction.String()
	}
	return strings.Join(parts, ", ")
}
