package service

import (
	"context"

	"github.com/syssam/sqlmodel/collector"
	"github.com/syssam/sqlmodel/fragment"
	"github.com/syssam/sqlmodel/schema"
)

// FindSingleColumn returns one field of the records matching where,
// ordered by orderBy. Use a pointer V for nullable columns.
//
//	names, err := service.FindSingleColumn[User, string](ctx, users, "name", fragment.GT("age", 30), fragment.Asc("name"))
func FindSingleColumn[T, V any](ctx context.Context, s *Service[T], field string, where fragment.Condition, orderBy fragment.Sort) ([]V, error) {
	return Collect(ctx, s, collector.FindSingleColumnBySqlFragment[T, V](s.table, field, where, orderBy))
}

// FindSingleColumnByOnlyPrimaryKey returns one field of the record with the
// given key as a list. The list is empty when no record has the key or the
// column is NULL.
func FindSingleColumnByOnlyPrimaryKey[T, V any](ctx context.Context, s *Service[T], field string, key any) ([]V, error) {
	v, err := FindFirstSingleColumnByOnlyPrimaryKey[T, V](ctx, s, field, key)
	if err != nil {
		return nil, err
	}
	if x, ok := v.Get(); ok {
		return []V{x}, nil
	}
	return []V{}, nil
}

// FindFirstSingleColumn returns one field of the first record matching
// where under the order of orderBy.
func FindFirstSingleColumn[T, V any](ctx context.Context, s *Service[T], field string, where fragment.Condition, orderBy fragment.Sort) (schema.Opt[V], error) {
	return Collect(ctx, s, collector.FindFirstSingleColumnBySqlFragment[T, V](s.table, field, where, orderBy))
}

// FindFirstSingleColumnByOnlyPrimaryKey returns one field of the record
// with the given key. The result is absent when no record has the key and
// null when the column is NULL.
func FindFirstSingleColumnByOnlyPrimaryKey[T, V any](ctx context.Context, s *Service[T], field string, key any) (schema.Opt[V], error) {
	return Collect(ctx, s, collector.GetSingleValueByOnlyPrimaryKeyEQ[T, V](s.table, field, key))
}
