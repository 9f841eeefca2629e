package schema

import (
	"reflect"
	"strings"
	"sync"

	"github.com/syssam/sqlmodel"
)

// PrimaryKeySet is the ordered set of primary-key fields of a model type.
type PrimaryKeySet []FieldInfo

// Len returns the number of primary-key fields.
func (s PrimaryKeySet) Len() int { return len(s) }

// Columns returns the primary-key column names.
func (s PrimaryKeySet) Columns() []string {
	cols := make([]string, len(s))
	for i, f := range s {
		cols[i] = f.Column
	}
	return cols
}

// Contains reports whether the field or column name is part of the key.
func (s PrimaryKeySet) Contains(name string) bool {
	for _, f := range s {
		if f.Name == name || f.Column == name {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (s PrimaryKeySet) String() string {
	return "(" + strings.Join(s.Columns(), ", ") + ")"
}

// KeyResolver computes the primary-key set of model types and memoizes it
// per type. Concurrent first lookups of the same type may compute the set
// more than once; all of them store the same result.
type KeyResolver struct {
	fields FieldResolver
	cache  sync.Map // reflect.Type -> PrimaryKeySet
}

// NewKeyResolver returns a resolver that reads field mappings from fr.
func NewKeyResolver(fr FieldResolver) *KeyResolver {
	return &KeyResolver{fields: fr}
}

// Resolve returns the primary-key fields of typ in declaration order.
// Mapping errors of the field resolver are returned as-is and not cached.
func (k *KeyResolver) Resolve(typ reflect.Type) (PrimaryKeySet, error) {
	if v, ok := k.cache.Load(typ); ok {
		return v.(PrimaryKeySet), nil
	}
	fields, err := k.fields.FieldsOf(typ)
	if err != nil {
		return nil, err
	}
	var keys PrimaryKeySet
	for _, f := range fields {
		if f.PrimaryKey {
			keys = append(keys, f)
		}
	}
	k.cache.Store(typ, keys)
	return keys, nil
}

// RequireSingle returns the only primary-key field of typ. It fails with a
// PrimaryKeyError if typ declares zero or more than one key field.
func (k *KeyResolver) RequireSingle(typ reflect.Type) (FieldInfo, error) {
	keys, err := k.Resolve(typ)
	if err != nil {
		return FieldInfo{}, err
	}
	if len(keys) != 1 {
		return FieldInfo{}, sqlmodel.NewPrimaryKeyError(typeName(typ), len(keys))
	}
	return keys[0], nil
}

// Forget drops the memoized key set of typ.
func (k *KeyResolver) Forget(typ reflect.Type) {
	k.cache.Delete(typ)
}
