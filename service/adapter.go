package service

import (
	"context"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/collector"
	"github.com/syssam/sqlmodel/fragment"
)

// FindBySqlFragment returns the records matching where, ordered by orderBy.
func (s *Service[T]) FindBySqlFragment(ctx context.Context, where fragment.Condition, orderBy fragment.Sort) ([]*T, error) {
	return Collect(ctx, s, collector.FindBySqlFragment(s.table, where, orderBy))
}

// FindFirstBySqlFragment returns the first record matching where under the
// order of orderBy, or nil.
func (s *Service[T]) FindFirstBySqlFragment(ctx context.Context, where fragment.Condition, orderBy fragment.Sort) (*T, error) {
	return Collect(ctx, s, collector.FindFirstBySqlFragment(s.table, where, orderBy))
}

// ModifyBySqlFragment writes every non-key field of m to the records
// matching where. Absent fields are written as NULL.
func (s *Service[T]) ModifyBySqlFragment(ctx context.Context, m *T, where fragment.Condition) (int64, error) {
	return Collect(ctx, s, collector.ModifyBySqlFragment(s.table, m, where, collector.Full))
}

// ModifySelectiveBySqlFragment writes the present non-key fields of m to
// the records matching where.
func (s *Service[T]) ModifySelectiveBySqlFragment(ctx context.Context, m *T, where fragment.Condition) (int64, error) {
	return Collect(ctx, s, collector.ModifyBySqlFragment(s.table, m, where, collector.Selective))
}

// RemoveBySqlFragment deletes the records matching where.
func (s *Service[T]) RemoveBySqlFragment(ctx context.Context, where fragment.Condition) (int64, error) {
	return Collect(ctx, s, collector.RemoveBySqlFragment(s.table, where))
}

// CountBySqlFragment counts the records matching where.
func (s *Service[T]) CountBySqlFragment(ctx context.Context, where fragment.Condition) (int64, error) {
	return Collect(ctx, s, collector.CountBySqlFragment(s.table, where))
}

// FindPageBySqlFragment returns page pageNum of the records matching where.
func (s *Service[T]) FindPageBySqlFragment(ctx context.Context, where fragment.Condition, orderBy fragment.Sort, pageNum, pageSize int) ([]*T, error) {
	return Collect(ctx, s, collector.FindPageBySqlFragment(s.table, where, orderBy, pageNum, pageSize))
}

// RemoveAll deletes every record.
func (s *Service[T]) RemoveAll(ctx context.Context) (int64, error) {
	return Collect(ctx, s, collector.RemoveAll(s.table))
}

// RemoveByOnlyPrimaryKey deletes the record with the given key and reports
// whether it existed.
func (s *Service[T]) RemoveByOnlyPrimaryKey(ctx context.Context, key any) (bool, error) {
	return positive(Collect(ctx, s, collector.RemoveByOnlyPrimaryKeyEQ(s.table, key)))
}

// RemoveByOnlyPrimaryKeys deletes the records with the given keys.
func (s *Service[T]) RemoveByOnlyPrimaryKeys(ctx context.Context, keys []any) (int64, error) {
	return Collect(ctx, s, collector.RemoveByOnlyPrimaryKeyContains(s.table, keys))
}

// RemoveByCondition deletes the records matching where.
func (s *Service[T]) RemoveByCondition(ctx context.Context, where fragment.Condition) (int64, error) {
	return s.RemoveBySqlFragment(ctx, where)
}

// ModifyByOnlyPrimaryKey writes every non-key field of m to the record
// with its key and reports whether the record was updated.
func (s *Service[T]) ModifyByOnlyPrimaryKey(ctx context.Context, m *T) (bool, error) {
	return positive(Collect(ctx, s, collector.ModifyModelByOnlyPrimaryKeyEQ(s.table, m, collector.Full)))
}

// ModifySelectiveByOnlyPrimaryKey writes the present non-key fields of m to
// the record with its key and reports whether the record was updated.
func (s *Service[T]) ModifySelectiveByOnlyPrimaryKey(ctx context.Context, m *T) (bool, error) {
	return positive(Collect(ctx, s, collector.ModifyModelByOnlyPrimaryKeyEQ(s.table, m, collector.Selective)))
}

// ModifyByCondition is ModifyBySqlFragment.
func (s *Service[T]) ModifyByCondition(ctx context.Context, m *T, where fragment.Condition) (int64, error) {
	return s.ModifyBySqlFragment(ctx, m, where)
}

// ModifySelectiveByCondition is ModifySelectiveBySqlFragment.
func (s *Service[T]) ModifySelectiveByCondition(ctx context.Context, m *T, where fragment.Condition) (int64, error) {
	return s.ModifySelectiveBySqlFragment(ctx, m, where)
}

// ModifyValuesByCondition writes the given fields to the records matching
// where.
//
//	n, err := users.ModifyValuesByCondition(ctx, collector.Values{"age": 31}, fragment.EQ("name", "a8m"))
func (s *Service[T]) ModifyValuesByCondition(ctx context.Context, values collector.Values, where fragment.Condition) (int64, error) {
	return Collect(ctx, s, collector.ModifyValuesBySqlFragment(s.table, values, where))
}

// CountAll counts every record.
func (s *Service[T]) CountAll(ctx context.Context) (int64, error) {
	return Collect(ctx, s, collector.CountAll(s.table))
}

// CountByOnlyPrimaryKey counts the records with the given key.
func (s *Service[T]) CountByOnlyPrimaryKey(ctx context.Context, key any) (int64, error) {
	return Collect(ctx, s, collector.CountByOnlyPrimaryKeyEQ(s.table, key))
}

// CountByOnlyPrimaryKeys counts the records with one of the given keys.
func (s *Service[T]) CountByOnlyPrimaryKeys(ctx context.Context, keys []any) (int64, error) {
	return Collect(ctx, s, collector.CountByOnlyPrimaryKeyContains(s.table, keys))
}

// CountByCondition is CountBySqlFragment.
func (s *Service[T]) CountByCondition(ctx context.Context, where fragment.Condition) (int64, error) {
	return s.CountBySqlFragment(ctx, where)
}

// ExistByOnlyPrimaryKey reports whether a record with the given key exists.
func (s *Service[T]) ExistByOnlyPrimaryKey(ctx context.Context, key any) (bool, error) {
	return positive(s.CountByOnlyPrimaryKey(ctx, key))
}

// ExistByOnlyPrimaryKeys reports whether a record exists for every given
// key. It is true for an empty key list.
func (s *Service[T]) ExistByOnlyPrimaryKeys(ctx context.Context, keys []any) (bool, error) {
	n, err := s.CountByOnlyPrimaryKeys(ctx, keys)
	return err == nil && n == int64(len(keys)), err
}

// ExistByCondition reports whether a record matches where.
func (s *Service[T]) ExistByCondition(ctx context.Context, where fragment.Condition) (bool, error) {
	return positive(s.CountByCondition(ctx, where))
}

// FindAll returns every record.
func (s *Service[T]) FindAll(ctx context.Context) ([]*T, error) {
	return Collect(ctx, s, collector.FindAll(s.table))
}

// FindByOnlyPrimaryKey returns the record with the given key, or nil.
func (s *Service[T]) FindByOnlyPrimaryKey(ctx context.Context, key any) (*T, error) {
	return Collect(ctx, s, collector.GetModelByOnlyPrimaryKeyEQ(s.table, key))
}

// FindByOnlyPrimaryKeys returns the records with one of the given keys in
// no particular order.
func (s *Service[T]) FindByOnlyPrimaryKeys(ctx context.Context, keys []any) ([]*T, error) {
	return Collect(ctx, s, collector.FindByOnlyPrimaryKeyContains(s.table, keys))
}

// Get is like FindByOnlyPrimaryKey, but fails with a *sqlmodel.NotFoundError
// when no record has the key.
func (s *Service[T]) Get(ctx context.Context, key any) (*T, error) {
	m, err := s.FindByOnlyPrimaryKey(ctx, key)
	switch {
	case err != nil:
		return nil, err
	case m == nil:
		return nil, sqlmodel.NewNotFoundErrorWithID(s.table.Name(), key)
	}
	return m, nil
}

// FindByCondition returns the records matching where.
func (s *Service[T]) FindByCondition(ctx context.Context, where fragment.Condition) ([]*T, error) {
	return s.FindBySqlFragment(ctx, where, fragment.Sort{})
}

// FindFirstByCondition returns the first record matching where, or nil.
func (s *Service[T]) FindFirstByCondition(ctx context.Context, where fragment.Condition) (*T, error) {
	return s.FindFirstBySqlFragment(ctx, where, fragment.Sort{})
}

// FindBySort returns every record ordered by orderBy.
func (s *Service[T]) FindBySort(ctx context.Context, orderBy fragment.Sort) ([]*T, error) {
	return s.FindBySqlFragment(ctx, fragment.Condition{}, orderBy)
}

// FindByConditionSort is FindBySqlFragment.
func (s *Service[T]) FindByConditionSort(ctx context.Context, where fragment.Condition, orderBy fragment.Sort) ([]*T, error) {
	return s.FindBySqlFragment(ctx, where, orderBy)
}

// FindByExample returns the records whose fields equal the present fields
// of example. Null fields match NULL columns. Fields of plain types are
// always present, so optional criteria need pointer or schema.Opt fields.
func (s *Service[T]) FindByExample(ctx context.Context, example *T, orderBy fragment.Sort) ([]*T, error) {
	if example == nil {
		return nil, sqlmodel.NewInvalidArgumentError("model", nil, "nil model")
	}
	return s.FindBySqlFragment(ctx, fragment.ByExample(s.table.Example(example)), orderBy)
}

// FindPage returns page pageNum of all records.
func (s *Service[T]) FindPage(ctx context.Context, pageNum, pageSize int) ([]*T, error) {
	return s.FindPageBySqlFragment(ctx, fragment.Condition{}, fragment.Sort{}, pageNum, pageSize)
}

// FindPageByCondition returns page pageNum of the records matching where.
func (s *Service[T]) FindPageByCondition(ctx context.Context, where fragment.Condition, pageNum, pageSize int) ([]*T, error) {
	return s.FindPageBySqlFragment(ctx, where, fragment.Sort{}, pageNum, pageSize)
}

// FindPageBySort returns page pageNum of all records ordered by orderBy.
func (s *Service[T]) FindPageBySort(ctx context.Context, orderBy fragment.Sort, pageNum, pageSize int) ([]*T, error) {
	return s.FindPageBySqlFragment(ctx, fragment.Condition{}, orderBy, pageNum, pageSize)
}

// FindPageByConditionSort is FindPageBySqlFragment.
func (s *Service[T]) FindPageByConditionSort(ctx context.Context, where fragment.Condition, orderBy fragment.Sort, pageNum, pageSize int) ([]*T, error) {
	return s.FindPageBySqlFragment(ctx, where, orderBy, pageNum, pageSize)
}

func positive(n int64, err error) (bool, error) {
	return err == nil && n > 0, err
}
