package schema

import (
	"fmt"
	"strings"
	"unicode"
)

// FieldInfo is the mapping of a single model field, as returned by
// FieldResolver.FieldsOf.
type FieldInfo struct {
	Name       string // Go-facing field name used in fragments
	Column     string // Column name in the table
	PrimaryKey bool
}

// FieldValue pairs a field with its value on a model instance.
type FieldValue struct {
	FieldInfo
	Value Value
}

// FieldDef describes one mapped field of the model type T: its names and
// the accessor functions used instead of runtime reflection.
type FieldDef[T any] struct {
	info  FieldInfo
	value func(*T) Value
	dest  func(*T) any
	set   func(*T, any) error
}

// Field returns the descriptor of a field stored in the struct at ptr(m).
// The zero value of V is a present value, unless V is an Opt or a
// driver.Valuer returning nil (see ValueOf).
//
//	schema.Field("age", func(u *User) *int { return &u.Age })
func Field[T, V any](name string, ptr func(*T) *V) *FieldDef[T] {
	f := &FieldDef[T]{info: FieldInfo{Name: name, Column: snake(name)}}
	if ptr == nil {
		return f
	}
	f.value = func(m *T) Value { return ValueOf(*ptr(m)) }
	f.dest = func(m *T) any { return ptr(m) }
	f.set = func(m *T, v any) error {
		p := ptr(m)
		switch x := v.(type) {
		case nil:
			var zero V
			*p = zero
		case V:
			*p = x
		default:
			return fmt.Errorf("cannot assign %T to field of type %T", v, *p)
		}
		return nil
	}
	return f
}

// Ptr returns the descriptor of a pointer field. A nil pointer is absent.
//
//	schema.Ptr("name", func(u *User) **string { return &u.Name })
func Ptr[T, V any](name string, ptr func(*T) **V) *FieldDef[T] {
	f := &FieldDef[T]{info: FieldInfo{Name: name, Column: snake(name)}}
	if ptr == nil {
		return f
	}
	f.value = func(m *T) Value {
		p := *ptr(m)
		if p == nil {
			return Absent()
		}
		return ValueOf(*p)
	}
	f.dest = func(m *T) any { return ptr(m) }
	f.set = func(m *T, v any) error {
		pp := ptr(m)
		switch x := v.(type) {
		case nil:
			*pp = nil
		case V:
			*pp = &x
		case *V:
			*pp = x
		default:
			return fmt.Errorf("cannot assign %T to field of type %T", v, *pp)
		}
		return nil
	}
	return f
}

// Embed lifts the field descriptors of an embedded struct E into T, so a
// group of fields can be shared by several models.
//
//	type Audit struct{ CreatedBy string }
//	var auditFields = []*schema.FieldDef[Audit]{
//	    schema.Field("createdBy", func(a *Audit) *string { return &a.CreatedBy }),
//	}
//	schema.Embed(func(u *User) *Audit { return &u.Audit }, auditFields...)
func Embed[T, E any](get func(*T) *E, fields ...*FieldDef[E]) Group[T] {
	out := make(Group[T], 0, len(fields))
	for _, ef := range fields {
		ef := ef
		f := &FieldDef[T]{info: ef.info}
		if ef.value != nil && get != nil {
			f.value = func(m *T) Value { return ef.value(get(m)) }
			f.dest = func(m *T) any { return ef.dest(get(m)) }
			f.set = func(m *T, v any) error { return ef.set(get(m), v) }
		}
		out = append(out, f)
	}
	return out
}

// Column overrides the default column name (snake_case of the field name).
func (f *FieldDef[T]) Column(name string) *FieldDef[T] {
	f.info.Column = name
	return f
}

// PrimaryKey marks the field as (part of) the primary key.
func (f *FieldDef[T]) PrimaryKey() *FieldDef[T] {
	f.info.PrimaryKey = true
	return f
}

// Info returns the mapping of the field.
func (f *FieldDef[T]) Info() FieldInfo { return f.info }

// DefaultColumn returns the column of a field registered without Column.
//
//	schema.DefaultColumn("createdAt") // created_at
func DefaultColumn(field string) string { return snake(field) }

// snake converts a Go-style field name into a snake_case column name.
func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
