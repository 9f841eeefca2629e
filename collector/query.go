package collector

import (
	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/fragment"
	"github.com/syssam/sqlmodel/schema"
)

// selectSpec is the shape of a SELECT statement over a model table.
type selectSpec struct {
	columns  []string
	template string
	where    fragment.Condition
	orderBy  fragment.Sort
	limit    int
	offset   int
}

func (s selectSpec) build(table string, resolve fragment.Resolver) buildFunc {
	return func(d string) (string, []any, error) {
		var sel *sql.Selector
		if s.template != "" {
			sel = sql.SelectTemplate(d, s.template)
		} else {
			sel = sql.Select(d, s.columns...).From(table)
		}
		sel.Where(s.where.Predicate(resolve))
		terms, err := s.orderBy.Terms(resolve)
		if err != nil {
			return "", nil, err
		}
		sel.OrderBy(terms...)
		if s.limit > 0 {
			sel.Limit(s.limit)
		}
		if s.offset > 0 {
			sel.Offset(s.offset)
		}
		return sel.Query()
	}
}

// page validates the page arguments and returns the LIMIT and OFFSET.
func page(pageNum, pageSize int) (limit, offset int, err error) {
	if pageNum < 1 {
		return 0, 0, sqlmodel.NewInvalidArgumentError("pageNum", pageNum, "must be at least 1")
	}
	if pageSize < 1 {
		return 0, 0, sqlmodel.NewInvalidArgumentError("pageSize", pageSize, "must be at least 1")
	}
	return pageSize, (pageNum - 1) * pageSize, nil
}

// GetModelByOnlyPrimaryKeyEQ loads the record with the given key. The
// result is nil when no record has the key.
func GetModelByOnlyPrimaryKeyEQ[T any](t *schema.Table[T], key any) *Collector[*T] {
	o := op(t, "GetModelByOnlyPrimaryKeyEQ", IntentGet)
	o.Keyed = true
	where, err := byOnlyPrimaryKeyEQ(t, key)
	if err != nil {
		return failed[*T](o, err)
	}
	s := selectSpec{columns: t.Columns(), where: where, limit: 1}
	return newCollector[*T](o, s.build(t.Name(), resolver(t)), queryModel(t))
}

// GetSingleValueByOnlyPrimaryKeyEQ loads a single field of the record with
// the given key. The result is absent when no record has the key and null
// when the column is NULL.
func GetSingleValueByOnlyPrimaryKeyEQ[T, V any](t *schema.Table[T], field string, key any) *Collector[schema.Opt[V]] {
	o := op(t, "GetSingleValueByOnlyPrimaryKeyEQ", IntentGet)
	o.Keyed = true
	where, err := byOnlyPrimaryKeyEQ(t, key)
	if err != nil {
		return failed[schema.Opt[V]](o, err)
	}
	col, err := t.Column(field)
	if err != nil {
		return failed[schema.Opt[V]](o, err)
	}
	s := selectSpec{columns: []string{col}, where: where, limit: 1}
	return newCollector[schema.Opt[V]](o, s.build(t.Name(), resolver(t)), queryValue[V]())
}

// FindByOnlyPrimaryKeyContains loads the records having one of the given
// keys. An empty key list loads nothing and runs no query.
func FindByOnlyPrimaryKeyContains[T any](t *schema.Table[T], keys []any) *Collector[[]*T] {
	o := op(t, "FindByOnlyPrimaryKeyContains", IntentFind)
	o.Keyed = true
	where, err := byOnlyPrimaryKeyContains(t, keys)
	switch {
	case err != nil:
		return failed[[]*T](o, err)
	case len(keys) == 0:
		return shortCircuit(o, []*T{})
	}
	s := selectSpec{columns: t.Columns(), where: where}
	return newCollector[[]*T](o, s.build(t.Name(), resolver(t)), queryModels(t))
}

// FindAll loads every record of the table.
func FindAll[T any](t *schema.Table[T]) *Collector[[]*T] {
	o := op(t, "FindAll", IntentFind)
	s := selectSpec{columns: t.Columns()}
	return newCollector[[]*T](o, s.build(t.Name(), resolver(t)), queryModels(t))
}

// FindBySqlFragment loads the records matching where, ordered by orderBy.
func FindBySqlFragment[T any](t *schema.Table[T], where fragment.Condition, orderBy fragment.Sort) *Collector[[]*T] {
	o := op(t, "FindBySqlFragment", IntentFind)
	o.Where = where
	s := selectSpec{columns: t.Columns(), where: where, orderBy: orderBy}
	return newCollector[[]*T](o, s.build(t.Name(), resolver(t)), queryModels(t))
}

// FindFirstBySqlFragment loads the first record matching where under the
// order of orderBy. The result is nil when nothing matches.
func FindFirstBySqlFragment[T any](t *schema.Table[T], where fragment.Condition, orderBy fragment.Sort) *Collector[*T] {
	o := op(t, "FindFirstBySqlFragment", IntentFind)
	o.Where = where
	s := selectSpec{columns: t.Columns(), where: where, orderBy: orderBy, limit: 1}
	return newCollector[*T](o, s.build(t.Name(), resolver(t)), queryModel(t))
}

// FindPageBySqlFragment loads one page of the records matching where.
// Pages are numbered from 1.
func FindPageBySqlFragment[T any](t *schema.Table[T], where fragment.Condition, orderBy fragment.Sort, pageNum, pageSize int) *Collector[[]*T] {
	o := op(t, "FindPageBySqlFragment", IntentFind)
	o.Where = where
	limit, offset, err := page(pageNum, pageSize)
	if err != nil {
		return failed[[]*T](o, err)
	}
	s := selectSpec{columns: t.Columns(), where: where, orderBy: orderBy, limit: limit, offset: offset}
	return newCollector[[]*T](o, s.build(t.Name(), resolver(t)), queryModels(t))
}

// FindSingleColumnBySqlFragment loads a single field of the records
// matching where. Use a pointer V for nullable columns.
func FindSingleColumnBySqlFragment[T, V any](t *schema.Table[T], field string, where fragment.Condition, orderBy fragment.Sort) *Collector[[]V] {
	o := op(t, "FindSingleColumnBySqlFragment", IntentFind)
	o.Where = where
	col, err := t.Column(field)
	if err != nil {
		return failed[[]V](o, err)
	}
	s := selectSpec{columns: []string{col}, where: where, orderBy: orderBy}
	return newCollector[[]V](o, s.build(t.Name(), resolver(t)), queryValues[V]())
}

// FindFirstSingleColumnBySqlFragment loads a single field of the first
// record matching where under the order of orderBy.
func FindFirstSingleColumnBySqlFragment[T, V any](t *schema.Table[T], field string, where fragment.Condition, orderBy fragment.Sort) *Collector[schema.Opt[V]] {
	o := op(t, "FindFirstSingleColumnBySqlFragment", IntentFind)
	o.Where = where
	col, err := t.Column(field)
	if err != nil {
		return failed[schema.Opt[V]](o, err)
	}
	s := selectSpec{columns: []string{col}, where: where, orderBy: orderBy, limit: 1}
	return newCollector[schema.Opt[V]](o, s.build(t.Name(), resolver(t)), queryValue[V]())
}
