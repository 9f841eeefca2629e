// Package collector builds the prepared operations executed against a
// database.
//
// Every factory function is a pure function of its inputs. It validates
// the arguments, resolves the primary key when the operation addresses a
// record by key, and returns a single-use [Collector]. Nothing is sent to
// the database until Collect is called with a dialect.ExecQuerier:
//
//	c := collector.CountByOnlyPrimaryKeyContains(users, []any{1, 2, 3})
//	n, err := c.Collect(ctx, drv)
//
// The statement is rendered in the dialect of the executor passed to
// Collect. Errors found while building (invalid pages, missing or
// composite primary keys) are kept in the collector and returned by
// Collect without any I/O.
//
// Modify operations take an explicit [Mode]. In Selective mode fields
// absent on the model are left untouched, and in Full mode every non-key
// column is written.
package collector
