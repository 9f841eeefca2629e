package schema

import (
	"reflect"
	"sync"

	"github.com/syssam/sqlmodel"
)

// FieldResolver maps a model type to its fields. Registry implements it.
type FieldResolver interface {
	FieldsOf(reflect.Type) ([]FieldInfo, error)
}

// metadata is the type-erased view of a *Table[T] kept in a Registry.
type metadata interface {
	Name() string
	Model() string
	Fields() []FieldInfo
}

// Registry holds the registered tables. The zero value is not usable,
// use NewRegistry.
type Registry struct {
	mu     sync.RWMutex
	tables map[reflect.Type]metadata
	keys   *KeyResolver
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{tables: make(map[reflect.Type]metadata)}
	r.keys = NewKeyResolver(r)
	return r
}

// DefaultRegistry is used by Register, MustRegister and Lookup.
var DefaultRegistry = NewRegistry()

// Register maps the model type T to table in the default registry.
//
//	var Users = schema.MustRegister[User]("users",
//	    schema.Field("id", func(u *User) *int64 { return &u.ID }).PrimaryKey(),
//	    schema.Ptr("name", func(u *User) **string { return &u.Name }),
//	    schema.Field("age", func(u *User) *schema.Opt[int] { return &u.Age }),
//	)
func Register[T any](table string, fields ...FieldSet[T]) (*Table[T], error) {
	return RegisterIn[T](DefaultRegistry, table, fields...)
}

// MustRegister is like Register but panics if the mapping is invalid.
func MustRegister[T any](table string, fields ...FieldSet[T]) *Table[T] {
	t, err := Register[T](table, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// RegisterIn maps the model type T to table in r. Registering a type again
// replaces its previous mapping.
func RegisterIn[T any](r *Registry, table string, fields ...FieldSet[T]) (*Table[T], error) {
	t, err := newTable[T](r, table, fields)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.tables[t.typ] = t
	r.mu.Unlock()
	r.keys.Forget(t.typ)
	return t, nil
}

// Lookup returns the table registered for T in the default registry.
func Lookup[T any]() (*Table[T], error) {
	return LookupIn[T](DefaultRegistry)
}

// LookupIn returns the table registered for T in r.
func LookupIn[T any](r *Registry) (*Table[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	r.mu.RLock()
	m, ok := r.tables[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, sqlmodel.NewMappingError(typ.String(), "", "model type is not registered")
	}
	return m.(*Table[T]), nil
}

// LookupType returns the table name and fields registered for typ.
func (r *Registry) LookupType(typ reflect.Type) (string, []FieldInfo, error) {
	r.mu.RLock()
	m, ok := r.tables[typ]
	r.mu.RUnlock()
	if !ok {
		return "", nil, sqlmodel.NewMappingError(typeName(typ), "", "model type is not registered")
	}
	return m.Name(), m.Fields(), nil
}

// FieldsOf implements FieldResolver.
func (r *Registry) FieldsOf(typ reflect.Type) ([]FieldInfo, error) {
	_, fields, err := r.LookupType(typ)
	return fields, err
}

// Keys returns the primary-key resolver backed by r.
func (r *Registry) Keys() *KeyResolver { return r.keys }

// Tables returns the names of all registered tables.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for _, m := range r.tables {
		names = append(names, m.Name())
	}
	return names
}

func typeName(typ reflect.Type) string {
	if typ == nil {
		return "<nil>"
	}
	return typ.String()
}
