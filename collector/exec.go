package collector

import (
	"context"
	"fmt"

	"github.com/syssam/sqlmodel/dialect"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/schema"
)

// execAffected runs a statement and returns the number of affected rows.
func execAffected(ctx context.Context, ex dialect.ExecQuerier, query string, args []any) (int64, error) {
	var res sql.Result
	if err := ex.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// queryInt64 runs a statement returning a single integer, like COUNT(*).
func queryInt64(ctx context.Context, ex dialect.ExecQuerier, query string, args []any) (int64, error) {
	rows := &sql.Rows{}
	if err := ex.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("no rows returned by %q", query)
	}
	var n int64
	if err := rows.Scan(&n); err != nil {
		return 0, err
	}
	return n, rows.Close()
}

// queryModels returns an executor scanning every row into a new model.
// Columns are matched by the names the query returns, so templates may
// select a subset of the mapped columns.
func queryModels[T any](t *schema.Table[T]) execFunc[[]*T] {
	return func(ctx context.Context, ex dialect.ExecQuerier, query string, args []any) ([]*T, error) {
		rows := &sql.Rows{}
		if err := ex.Query(ctx, query, args, rows); err != nil {
			return nil, err
		}
		defer rows.Close()
		columns, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		ms := []*T{}
		for rows.Next() {
			m := t.New()
			dest, err := t.ScanDest(m, columns)
			if err != nil {
				return nil, err
			}
			if err := rows.Scan(dest...); err != nil {
				return nil, err
			}
			ms = append(ms, m)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return ms, rows.Close()
	}
}

// queryModel is like queryModels but returns the first model, or nil.
func queryModel[T any](t *schema.Table[T]) execFunc[*T] {
	all := queryModels(t)
	return func(ctx context.Context, ex dialect.ExecQuerier, query string, args []any) (*T, error) {
		ms, err := all(ctx, ex, query, args)
		if err != nil || len(ms) == 0 {
			return nil, err
		}
		return ms[0], nil
	}
}

// queryValues returns an executor scanning the first column of every row.
func queryValues[V any]() execFunc[[]V] {
	return func(ctx context.Context, ex dialect.ExecQuerier, query string, args []any) ([]V, error) {
		rows := &sql.Rows{}
		if err := ex.Query(ctx, query, args, rows); err != nil {
			return nil, err
		}
		defer rows.Close()
		vs := []V{}
		for rows.Next() {
			var v V
			if err := rows.Scan(&v); err != nil {
				return nil, err
			}
			vs = append(vs, v)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return vs, rows.Close()
	}
}

// queryValue returns an executor scanning the first column of the first
// row. No row is an absent value and a NULL column is a null value.
func queryValue[V any]() execFunc[schema.Opt[V]] {
	return func(ctx context.Context, ex dialect.ExecQuerier, query string, args []any) (schema.Opt[V], error) {
		var v schema.Opt[V]
		rows := &sql.Rows{}
		if err := ex.Query(ctx, query, args, rows); err != nil {
			return v, err
		}
		defer rows.Close()
		if !rows.Next() {
			return v, rows.Err()
		}
		if err := rows.Scan(&v); err != nil {
			return schema.Opt[V]{}, err
		}
		return v, rows.Close()
	}
}
