package service

import "context"

// RemoveById deletes the record with the given key.
//
// Deprecated: Use RemoveByOnlyPrimaryKey.
func (s *Service[T]) RemoveById(ctx context.Context, id any) (bool, error) {
	return s.RemoveByOnlyPrimaryKey(ctx, id)
}

// RemoveByIds deletes the records with the given keys.
//
// Deprecated: Use RemoveByOnlyPrimaryKeys.
func (s *Service[T]) RemoveByIds(ctx context.Context, ids []any) (int64, error) {
	return s.RemoveByOnlyPrimaryKeys(ctx, ids)
}

// ModifyById writes every non-key field of m to the record with its key.
//
// Deprecated: Use ModifyByOnlyPrimaryKey.
func (s *Service[T]) ModifyById(ctx context.Context, m *T) (bool, error) {
	return s.ModifyByOnlyPrimaryKey(ctx, m)
}

// ModifySelectiveById writes the present non-key fields of m to the record
// with its key.
//
// Deprecated: Use ModifySelectiveByOnlyPrimaryKey.
func (s *Service[T]) ModifySelectiveById(ctx context.Context, m *T) (bool, error) {
	return s.ModifySelectiveByOnlyPrimaryKey(ctx, m)
}

// CountById counts the records with the given key.
//
// Deprecated: Use CountByOnlyPrimaryKey.
func (s *Service[T]) CountById(ctx context.Context, id any) (int64, error) {
	return s.CountByOnlyPrimaryKey(ctx, id)
}

// CountByIds counts the records with one of the given keys.
//
// Deprecated: Use CountByOnlyPrimaryKeys.
func (s *Service[T]) CountByIds(ctx context.Context, ids []any) (int64, error) {
	return s.CountByOnlyPrimaryKeys(ctx, ids)
}

// ExistById reports whether a record with the given key exists.
//
// Deprecated: Use ExistByOnlyPrimaryKey.
func (s *Service[T]) ExistById(ctx context.Context, id any) (bool, error) {
	return s.ExistByOnlyPrimaryKey(ctx, id)
}

// ExistByIds reports whether a record exists for every given key.
//
// Deprecated: Use ExistByOnlyPrimaryKeys.
func (s *Service[T]) ExistByIds(ctx context.Context, ids []any) (bool, error) {
	return s.ExistByOnlyPrimaryKeys(ctx, ids)
}

// FindById returns the record with the given key, or nil.
//
// Deprecated: Use FindByOnlyPrimaryKey.
func (s *Service[T]) FindById(ctx context.Context, id any) (*T, error) {
	return s.FindByOnlyPrimaryKey(ctx, id)
}
