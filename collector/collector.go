package collector

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/dialect"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/fragment"
)

// Intent is the category of a collector.
type Intent string

// Collector intents.
const (
	IntentRemove Intent = "remove"
	IntentModify Intent = "modify"
	IntentCount  Intent = "count"
	IntentGet    Intent = "get"
	IntentFind   Intent = "find"
)

// IsMutation reports whether the intent changes stored records.
func (i Intent) IsMutation() bool {
	return i == IntentRemove || i == IntentModify
}

// Mode selects how a modify collector treats absent and null fields.
type Mode uint8

const (
	// Selective skips absent fields and writes NULL for null fields.
	Selective Mode = iota
	// Full writes every non-key field. Absent and null fields become NULL.
	Full
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == Full {
		return "full"
	}
	return "selective"
}

// Operation describes what a collector will do, without its SQL.
// Policies and logs look at it before the collector runs.
type Operation struct {
	ID     string             // Unique id of the collector
	Name   string             // Factory function, e.g. "RemoveBySqlFragment"
	Intent Intent             // Category
	Table  string             // Target table
	Where  fragment.Condition // Caller condition; empty for keyed and unconditional operations
	Keyed  bool               // Addresses records by primary key
	Mode   Mode               // Modify mode; meaningful for IntentModify only
	Set    []sql.Assignment   // Columns written by a modify
}

// Value returns the value a modify writes to column. A nil value with
// ok true means the column is set to NULL.
func (op Operation) Value(column string) (v any, ok bool) {
	for _, a := range op.Set {
		if a.Column == column {
			return a.Value, true
		}
	}
	return nil, false
}

// Unconditional reports whether the operation applies to every record of
// the table.
func (op Operation) Unconditional() bool {
	return !op.Keyed && op.Where.IsEmpty()
}

// buildFunc renders the statement of a collector for a dialect.
type buildFunc func(dialect string) (string, []any, error)

// execFunc runs a rendered statement.
type execFunc[R any] func(ctx context.Context, ex dialect.ExecQuerier, query string, args []any) (R, error)

// Collector is a prepared, single-use operation. It binds a model table,
// an intent and fragments into a statement that is rendered and executed
// by Collect. Factory functions never perform I/O: argument and key errors
// are kept in the collector and returned by Collect before touching the
// database.
type Collector[R any] struct {
	op    Operation
	build buildFunc
	exec  execFunc[R]
	err   error
	noop  bool
	empty R
	used  atomic.Bool
}

func newCollector[R any](op Operation, build buildFunc, exec execFunc[R]) *Collector[R] {
	op.ID = uuid.NewString()
	return &Collector[R]{op: op, build: build, exec: exec}
}

// failed returns a collector that reports err on Collect.
func failed[R any](op Operation, err error) *Collector[R] {
	c := newCollector[R](op, nil, nil)
	c.err = err
	return c
}

// shortCircuit returns a collector that returns empty on Collect without a query.
func shortCircuit[R any](op Operation, empty R) *Collector[R] {
	c := newCollector[R](op, nil, nil)
	c.noop, c.empty = true, empty
	return c
}

// Operation returns the description of the collector.
func (c *Collector[R]) Operation() Operation { return c.op }

// Err returns the error recorded when the collector was built, if any.
func (c *Collector[R]) Err() error { return c.err }

// Noop reports whether the collector completes without a query, as for
// keyed operations over an empty key list.
func (c *Collector[R]) Noop() bool { return c.noop }

// Query renders the statement of the collector for the given dialect.
// A no-op collector renders an empty query.
func (c *Collector[R]) Query(d string) (string, []any, error) {
	switch {
	case c.err != nil:
		return "", nil, c.err
	case c.noop:
		return "", nil, nil
	}
	return c.build(d)
}

// Collect renders the statement in the dialect of ex and executes it.
// A collector can be collected only once.
func (c *Collector[R]) Collect(ctx context.Context, ex dialect.ExecQuerier) (R, error) {
	var zero R
	if !c.used.CompareAndSwap(false, true) {
		return zero, sqlmodel.ErrCollectorConsumed
	}
	if c.err != nil {
		return zero, c.err
	}
	if c.noop {
		return c.empty, nil
	}
	return c.run(ctx, ex)
}

// CollectVia is like Collect, but hands the execution of the statement to
// via. via may return a result obtained elsewhere, such as a cache, instead
// of calling run. Build errors and no-op collectors never reach via.
func (c *Collector[R]) CollectVia(ctx context.Context, ex dialect.ExecQuerier, via func(run func() (R, error)) (R, error)) (R, error) {
	var zero R
	if !c.used.CompareAndSwap(false, true) {
		return zero, sqlmodel.ErrCollectorConsumed
	}
	if c.err != nil {
		return zero, c.err
	}
	if c.noop {
		return c.empty, nil
	}
	return via(func() (R, error) { return c.run(ctx, ex) })
}

func (c *Collector[R]) run(ctx context.Context, ex dialect.ExecQuerier) (R, error) {
	var zero R
	query, args, err := c.build(dialect.Of(ex))
	if err != nil {
		return zero, err
	}
	res, err := c.exec(ctx, ex, query, args)
	if err != nil {
		return zero, c.wrap(err)
	}
	return res, nil
}

// String implements fmt.Stringer.
func (c *Collector[R]) String() string {
	return fmt.Sprintf("%s %s(%s)", c.op.Name, c.op.Table, c.op.ID)
}

func (c *Collector[R]) wrap(err error) error {
	if !c.op.Intent.IsMutation() {
		return sqlmodel.NewQueryError(c.op.Table, string(c.op.Intent), err)
	}
	if sql.IsConstraintError(err) {
		err = sqlmodel.NewConstraintError(err.Error(), err)
	}
	return sqlmodel.NewMutationError(c.op.Table, string(c.op.Intent), err)
}

// Collect runs c against ex.
//
//	n, err := collector.Collect(ctx, drv, collector.CountAll(users))
func Collect[R any](ctx context.Context, ex dialect.ExecQuerier, c *Collector[R]) (R, error) {
	return c.Collect(ctx, ex)
}
