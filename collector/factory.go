package collector

import (
	"fmt"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/fragment"
	"github.com/syssam/sqlmodel/schema"
)

// Values holds the fields written by ModifyValuesBySqlFragment, keyed by
// field or column name. A nil value writes NULL, and an absent
// schema.Value or zero schema.Opt leaves the column untouched.
type Values map[string]any

func resolver[T any](t *schema.Table[T]) fragment.Resolver {
	return t.Column
}

// byOnlyPrimaryKeyEQ returns the equality condition on the single primary key.
func byOnlyPrimaryKeyEQ[T any](t *schema.Table[T], key any) (fragment.Condition, error) {
	pk, err := t.PrimaryKey()
	if err != nil {
		return fragment.Condition{}, err
	}
	if key == nil {
		return fragment.Condition{}, sqlmodel.NewInvalidArgumentError(pk.Name, nil, "nil primary key value")
	}
	return fragment.EQ(pk.Name, key), nil
}

// byOnlyPrimaryKeyContains returns the membership condition on the single
// primary key.
func byOnlyPrimaryKeyContains[T any](t *schema.Table[T], keys []any) (fragment.Condition, error) {
	pk, err := t.PrimaryKey()
	if err != nil {
		return fragment.Condition{}, err
	}
	for i, k := range keys {
		if k == nil {
			return fragment.Condition{}, sqlmodel.NewInvalidArgumentError(fmt.Sprintf("%s[%d]", pk.Name, i), nil, "nil primary key value")
		}
	}
	return fragment.In(pk.Name, keys...), nil
}

func op[T any](t *schema.Table[T], name string, intent Intent) Operation {
	return Operation{Name: name, Intent: intent, Table: t.Name()}
}

// RemoveAll deletes every record of the table.
func RemoveAll[T any](t *schema.Table[T]) *Collector[int64] {
	return remove(t, op(t, "RemoveAll", IntentRemove), fragment.Condition{})
}

// RemoveByOnlyPrimaryKeyEQ deletes the record with the given key.
func RemoveByOnlyPrimaryKeyEQ[T any](t *schema.Table[T], key any) *Collector[int64] {
	o := op(t, "RemoveByOnlyPrimaryKeyEQ", IntentRemove)
	o.Keyed = true
	where, err := byOnlyPrimaryKeyEQ(t, key)
	if err != nil {
		return failed[int64](o, err)
	}
	return remove(t, o, where)
}

// RemoveByOnlyPrimaryKeyContains deletes the records with the given keys.
// An empty key list deletes nothing and runs no query.
func RemoveByOnlyPrimaryKeyContains[T any](t *schema.Table[T], keys []any) *Collector[int64] {
	o := op(t, "RemoveByOnlyPrimaryKeyContains", IntentRemove)
	o.Keyed = true
	where, err := byOnlyPrimaryKeyContains(t, keys)
	switch {
	case err != nil:
		return failed[int64](o, err)
	case len(keys) == 0:
		return shortCircuit[int64](o, 0)
	}
	return remove(t, o, where)
}

// RemoveBySqlFragment deletes the records matching where. An empty
// condition deletes every record.
func RemoveBySqlFragment[T any](t *schema.Table[T], where fragment.Condition) *Collector[int64] {
	o := op(t, "RemoveBySqlFragment", IntentRemove)
	o.Where = where
	return remove(t, o, where)
}

func remove[T any](t *schema.Table[T], o Operation, where fragment.Condition) *Collector[int64] {
	return newCollector[int64](o, func(d string) (string, []any, error) {
		return sql.Delete(d, t.Name()).Where(where.Predicate(resolver(t))).Query()
	}, execAffected)
}

// ModifyModelByOnlyPrimaryKeyEQ updates the record addressed by the primary
// key of m with the other fields of m. The key itself is never written.
func ModifyModelByOnlyPrimaryKeyEQ[T any](t *schema.Table[T], m *T, mode Mode) *Collector[int64] {
	o := op(t, "ModifyModelByOnlyPrimaryKeyEQ", IntentModify)
	o.Keyed, o.Mode = true, mode
	pk, err := t.PrimaryKey()
	if err != nil {
		return failed[int64](o, err)
	}
	if m == nil {
		return failed[int64](o, sqlmodel.NewInvalidArgumentError("model", nil, "nil model"))
	}
	key, err := t.Value(m, pk.Name)
	if err != nil {
		return failed[int64](o, err)
	}
	if !key.IsSet() {
		return failed[int64](o, sqlmodel.NewInvalidArgumentError(pk.Name, key, "primary key value is not set"))
	}
	return modify(t, o, modelAssignments(t, m, mode), fragment.EQ(pk.Name, key.Any()))
}

// ModifyBySqlFragment updates the records matching where with the non-key
// fields of m. An empty condition updates every record.
func ModifyBySqlFragment[T any](t *schema.Table[T], m *T, where fragment.Condition, mode Mode) *Collector[int64] {
	o := op(t, "ModifyBySqlFragment", IntentModify)
	o.Where, o.Mode = where, mode
	if m == nil {
		return failed[int64](o, sqlmodel.NewInvalidArgumentError("model", nil, "nil model"))
	}
	return modify(t, o, modelAssignments(t, m, mode), where)
}

// ModifyValuesBySqlFragment updates the given fields of the records matching
// where. Primary-key fields cannot be written.
func ModifyValuesBySqlFragment[T any](t *schema.Table[T], values Values, where fragment.Condition) *Collector[int64] {
	o := op(t, "ModifyValuesBySqlFragment", IntentModify)
	o.Where, o.Mode = where, Selective
	byColumn := make(map[string]any, len(values))
	for name, v := range values {
		f, err := t.Field(name)
		if err != nil {
			return failed[int64](o, err)
		}
		if f.PrimaryKey {
			return failed[int64](o, sqlmodel.NewInvalidArgumentError(name, v, "primary key fields cannot be modified"))
		}
		if _, ok := byColumn[f.Column]; ok {
			return failed[int64](o, sqlmodel.NewInvalidArgumentError(name, v, "field given more than once"))
		}
		byColumn[f.Column] = v
	}
	var sets []sql.Assignment
	for _, f := range t.Fields() {
		v, ok := byColumn[f.Column]
		if !ok {
			continue
		}
		if v == nil {
			sets = append(sets, sql.Assignment{Column: f.Column})
			continue
		}
		switch val := schema.ValueOf(v); val.State() {
		case schema.StateNull:
			sets = append(sets, sql.Assignment{Column: f.Column})
		case schema.StateSet:
			sets = append(sets, sql.Assignment{Column: f.Column, Value: val.Any()})
		}
	}
	return modify(t, o, sets, where)
}

// modelAssignments returns the SET list of a modify statement. Key fields
// are skipped. In Selective mode absent fields are skipped too, and in Full
// mode they are written as NULL.
func modelAssignments[T any](t *schema.Table[T], m *T, mode Mode) []sql.Assignment {
	var sets []sql.Assignment
	for _, fv := range t.Values(m) {
		if fv.PrimaryKey {
			continue
		}
		switch fv.Value.State() {
		case schema.StateAbsent:
			if mode == Selective {
				continue
			}
			sets = append(sets, sql.Assignment{Column: fv.Column})
		case schema.StateNull:
			sets = append(sets, sql.Assignment{Column: fv.Column})
		default:
			sets = append(sets, sql.Assignment{Column: fv.Column, Value: fv.Value.Any()})
		}
	}
	return sets
}

// modify returns the update collector. With nothing to set it completes
// with 0 affected rows and runs no query.
func modify[T any](t *schema.Table[T], o Operation, sets []sql.Assignment, where fragment.Condition) *Collector[int64] {
	if len(sets) == 0 {
		return shortCircuit[int64](o, 0)
	}
	o.Set = sets
	return newCollector[int64](o, func(d string) (string, []any, error) {
		u := sql.Update(d, t.Name())
		for _, a := range sets {
			u.Set(a.Column, a.Value)
		}
		return u.Where(where.Predicate(resolver(t))).Query()
	}, execAffected)
}

// CountAll counts every record of the table.
func CountAll[T any](t *schema.Table[T]) *Collector[int64] {
	return count(t, op(t, "CountAll", IntentCount), fragment.Condition{})
}

// CountByOnlyPrimaryKeyEQ counts the records with the given key (0 or 1).
func CountByOnlyPrimaryKeyEQ[T any](t *schema.Table[T], key any) *Collector[int64] {
	o := op(t, "CountByOnlyPrimaryKeyEQ", IntentCount)
	o.Keyed = true
	where, err := byOnlyPrimaryKeyEQ(t, key)
	if err != nil {
		return failed[int64](o, err)
	}
	return count(t, o, where)
}

// CountByOnlyPrimaryKeyContains counts the records having one of the given
// keys. An empty key list counts 0 and runs no query.
func CountByOnlyPrimaryKeyContains[T any](t *schema.Table[T], keys []any) *Collector[int64] {
	o := op(t, "CountByOnlyPrimaryKeyContains", IntentCount)
	o.Keyed = true
	where, err := byOnlyPrimaryKeyContains(t, keys)
	switch {
	case err != nil:
		return failed[int64](o, err)
	case len(keys) == 0:
		return shortCircuit[int64](o, 0)
	}
	return count(t, o, where)
}

// CountBySqlFragment counts the records matching where.
func CountBySqlFragment[T any](t *schema.Table[T], where fragment.Condition) *Collector[int64] {
	o := op(t, "CountBySqlFragment", IntentCount)
	o.Where = where
	return count(t, o, where)
}

func count[T any](t *schema.Table[T], o Operation, where fragment.Condition) *Collector[int64] {
	return newCollector[int64](o, func(d string) (string, []any, error) {
		return sql.Select(d).From(t.Name()).Count().Where(where.Predicate(resolver(t))).Query()
	}, queryInt64)
}
