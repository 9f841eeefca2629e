package service

import (
	"context"

	"github.com/syssam/sqlmodel/collector"
	"github.com/syssam/sqlmodel/fragment"
)

// CountBySqlModel counts the records matching the condition of m.
func (s *Service[T]) CountBySqlModel(ctx context.Context, m fragment.SQLModel) (int64, error) {
	return s.CountBySqlFragment(ctx, m.Where)
}

// CountBySQL runs the count statement countSQL filtered by the condition
// of m. countSQL must not contain a WHERE clause.
//
//	n, err := users.CountBySQL(ctx, "SELECT COUNT(*) FROM users", fragment.Model(fragment.GT("age", 30), fragment.Sort{}))
func (s *Service[T]) CountBySQL(ctx context.Context, countSQL string, m fragment.SQLModel) (int64, error) {
	return Collect(ctx, s, collector.CountBySqlTemplate(s.table, countSQL, m.Where))
}

// ExistBySqlModel reports whether a record matches the condition of m.
func (s *Service[T]) ExistBySqlModel(ctx context.Context, m fragment.SQLModel) (bool, error) {
	return positive(s.CountBySqlModel(ctx, m))
}

// ExistBySQL reports whether the count statement countSQL, filtered by the
// condition of m, counts any record.
func (s *Service[T]) ExistBySQL(ctx context.Context, countSQL string, m fragment.SQLModel) (bool, error) {
	return positive(s.CountBySQL(ctx, countSQL, m))
}

// FindBySqlModel runs the statement selectSQL filtered and ordered by m.
// The selected columns are mapped to the fields of T by name.
func (s *Service[T]) FindBySqlModel(ctx context.Context, selectSQL string, m fragment.SQLModel) ([]*T, error) {
	return Collect(ctx, s, collector.FindBySqlTemplate(s.table, selectSQL, m))
}

// FindFirstBySqlModel is like FindBySqlModel but returns the first record,
// or nil.
func (s *Service[T]) FindFirstBySqlModel(ctx context.Context, selectSQL string, m fragment.SQLModel) (*T, error) {
	return Collect(ctx, s, collector.FindFirstBySqlTemplate(s.table, selectSQL, m))
}

// FindPageBySqlModel is like FindBySqlModel but returns page pageNum.
func (s *Service[T]) FindPageBySqlModel(ctx context.Context, selectSQL string, m fragment.SQLModel, pageNum, pageSize int) ([]*T, error) {
	return Collect(ctx, s, collector.FindPageBySqlTemplate(s.table, selectSQL, m, pageNum, pageSize))
}

// RemoveBySqlModel is not supported and always fails with a
// *sqlmodel.UnsupportedOperationError.
//
// Deprecated: Use RemoveBySqlFragment.
func (s *Service[T]) RemoveBySqlModel(ctx context.Context, deleteSQL string, m fragment.SQLModel) (int64, error) {
	return Collect(ctx, s, collector.RemoveBySqlTemplate(s.table, deleteSQL, m.Where))
}
