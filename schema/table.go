package schema

import (
	"fmt"
	"reflect"

	"github.com/syssam/sqlmodel"
)

// FieldSet is implemented by a single field descriptor and by field groups
// returned from Embed.
type FieldSet[T any] interface {
	defs() []*FieldDef[T]
}

func (f *FieldDef[T]) defs() []*FieldDef[T] { return []*FieldDef[T]{f} }

// Group is a list of field descriptors registered together.
type Group[T any] []*FieldDef[T]

func (g Group[T]) defs() []*FieldDef[T] { return g }

// Table is the registered mapping of the model type T to a database table.
// It is immutable after registration and safe for concurrent use.
type Table[T any] struct {
	name   string
	typ    reflect.Type
	fields []*FieldDef[T]
	byName map[string]*FieldDef[T]
	byCol  map[string]*FieldDef[T]
	reg    *Registry
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Type returns the model type.
func (t *Table[T]) Type() reflect.Type { return t.typ }

// Model returns the model type name, as used in error messages.
func (t *Table[T]) Model() string { return t.typ.String() }

// Fields returns the mapping of all fields in declaration order.
func (t *Table[T]) Fields() []FieldInfo {
	infos := make([]FieldInfo, len(t.fields))
	for i, f := range t.fields {
		infos[i] = f.info
	}
	return infos
}

// Columns returns all column names in declaration order.
func (t *Table[T]) Columns() []string {
	cols := make([]string, len(t.fields))
	for i, f := range t.fields {
		cols[i] = f.info.Column
	}
	return cols
}

// Field returns the mapping of the named field. The name may also be a
// column name.
func (t *Table[T]) Field(name string) (FieldInfo, error) {
	f, err := t.lookup(name)
	if err != nil {
		return FieldInfo{}, err
	}
	return f.info, nil
}

// Column resolves a field or column name into its column name.
func (t *Table[T]) Column(name string) (string, error) {
	f, err := t.lookup(name)
	if err != nil {
		return "", err
	}
	return f.info.Column, nil
}

func (t *Table[T]) lookup(name string) (*FieldDef[T], error) {
	if f, ok := t.byName[name]; ok {
		return f, nil
	}
	if f, ok := t.byCol[name]; ok {
		return f, nil
	}
	return nil, sqlmodel.NewMappingError(t.Model(), name, "no mapped column")
}

// Value reads the named field of m.
func (t *Table[T]) Value(m *T, name string) (Value, error) {
	f, err := t.lookup(name)
	if err != nil {
		return Value{}, err
	}
	return f.value(m), nil
}

// Values reads all fields of m in declaration order.
func (t *Table[T]) Values(m *T) []FieldValue {
	vs := make([]FieldValue, len(t.fields))
	for i, f := range t.fields {
		vs[i] = FieldValue{FieldInfo: f.info, Value: f.value(m)}
	}
	return vs
}

// Example returns the fields of m that are not absent. It is the basis of
// query-by-example conditions.
func (t *Table[T]) Example(m *T) []FieldValue {
	var vs []FieldValue
	for _, f := range t.fields {
		if v := f.value(m); !v.IsAbsent() {
			vs = append(vs, FieldValue{FieldInfo: f.info, Value: v})
		}
	}
	return vs
}

// Set assigns v to the named field of m. A nil v resets the field.
func (t *Table[T]) Set(m *T, name string, v any) error {
	f, err := t.lookup(name)
	if err != nil {
		return err
	}
	if err := f.set(m, v); err != nil {
		return sqlmodel.NewMappingError(t.Model(), name, err.Error())
	}
	return nil
}

// ScanDest returns the scan destinations in m for the given columns.
func (t *Table[T]) ScanDest(m *T, columns []string) ([]any, error) {
	dest := make([]any, len(columns))
	for i, c := range columns {
		f, err := t.lookup(c)
		if err != nil {
			return nil, err
		}
		dest[i] = f.dest(m)
	}
	return dest, nil
}

// New returns a new zero model instance.
func (t *Table[T]) New() *T { return new(T) }

// PrimaryKeys returns the primary-key fields of the model.
func (t *Table[T]) PrimaryKeys() (PrimaryKeySet, error) {
	return t.reg.keys.Resolve(t.typ)
}

// PrimaryKey returns the single primary-key field of the model, or a
// PrimaryKeyError if the model declares none or several.
func (t *Table[T]) PrimaryKey() (FieldInfo, error) {
	return t.reg.keys.RequireSingle(t.typ)
}

// String implements fmt.Stringer.
func (t *Table[T]) String() string {
	return fmt.Sprintf("%s(%s)", t.Model(), t.name)
}

func newTable[T any](reg *Registry, name string, sets []FieldSet[T]) (*Table[T], error) {
	t := &Table[T]{
		name:   name,
		typ:    reflect.TypeOf((*T)(nil)).Elem(),
		byName: make(map[string]*FieldDef[T]),
		byCol:  make(map[string]*FieldDef[T]),
		reg:    reg,
	}
	var errs []error
	if name == "" {
		errs = append(errs, sqlmodel.NewMappingError(t.Model(), "", "empty table name"))
	}
	for _, s := range sets {
		if s == nil {
			continue
		}
		for _, f := range s.defs() {
			switch {
			case f == nil:
				continue
			case f.info.Name == "":
				errs = append(errs, sqlmodel.NewMappingError(t.Model(), "", "field without a name"))
				continue
			case f.value == nil:
				errs = append(errs, sqlmodel.NewMappingError(t.Model(), f.info.Name, "missing accessor"))
				continue
			case f.info.Column == "":
				errs = append(errs, sqlmodel.NewMappingError(t.Model(), f.info.Name, "empty column name"))
				continue
			}
			if _, ok := t.byName[f.info.Name]; ok {
				errs = append(errs, sqlmodel.NewMappingError(t.Model(), f.info.Name, "duplicate field"))
				continue
			}
			if _, ok := t.byCol[f.info.Column]; ok {
				errs = append(errs, sqlmodel.NewMappingError(t.Model(), f.info.Name, fmt.Sprintf("duplicate column %q", f.info.Column)))
				continue
			}
			t.byName[f.info.Name] = f
			t.byCol[f.info.Column] = f
			t.fields = append(t.fields, f)
		}
	}
	if len(t.fields) == 0 && len(errs) == 0 {
		errs = append(errs, sqlmodel.NewMappingError(t.Model(), "", "no fields"))
	}
	if err := sqlmodel.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	return t, nil
}
