package fragment

import (
	"time"

	"github.com/google/uuid"
)

// Field is a typed reference to a model field. It builds conditions and
// sort terms whose values are checked at compile time.
//
// Usage:
//
//	var Age = fragment.Field[int]("age")
//	svc.FindByCondition(ctx, Age.GTE(18).And(Age.LT(30)))
type Field[V any] string

// Name returns the field name.
func (f Field[V]) Name() string { return string(f) }

// EQ returns a condition that checks if the field equals the given value.
func (f Field[V]) EQ(v V) Condition { return EQ(string(f), v) }

// NEQ returns a condition that checks if the field does not equal the given value.
func (f Field[V]) NEQ(v V) Condition { return NEQ(string(f), v) }

// In returns a condition that checks if the field value is in the given list.
func (f Field[V]) In(vs ...V) Condition { return In(string(f), anys(vs)...) }

// NotIn returns a condition that checks if the field value is not in the given list.
func (f Field[V]) NotIn(vs ...V) Condition { return NotIn(string(f), anys(vs)...) }

// GT returns a condition that checks if the field is greater than the given value.
func (f Field[V]) GT(v V) Condition { return GT(string(f), v) }

// GTE returns a condition that checks if the field is greater than or equal to the given value.
func (f Field[V]) GTE(v V) Condition { return GTE(string(f), v) }

// LT returns a condition that checks if the field is less than the given value.
func (f Field[V]) LT(v V) Condition { return LT(string(f), v) }

// LTE returns a condition that checks if the field is less than or equal to the given value.
func (f Field[V]) LTE(v V) Condition { return LTE(string(f), v) }

// IsNull returns a condition that checks if the field is NULL.
func (f Field[V]) IsNull() Condition { return IsNull(string(f)) }

// NotNull returns a condition that checks if the field is not NULL.
func (f Field[V]) NotNull() Condition { return NotNull(string(f)) }

// Asc returns an ascending sort by the field.
func (f Field[V]) Asc() Sort { return Asc(string(f)) }

// Desc returns a descending sort by the field.
func (f Field[V]) Desc() Sort { return Desc(string(f)) }

// Common field types.
type (
	IntField     = Field[int]
	Int64Field   = Field[int64]
	Float64Field = Field[float64]
	BoolField    = Field[bool]
	TimeField    = Field[time.Time]
	UUIDField    = Field[uuid.UUID]
)

// StringField is a typed reference to a string field. Besides the Field
// operations it supports substring matching.
type StringField string

// Name returns the field name.
func (f StringField) Name() string { return string(f) }

func (f StringField) field() Field[string] { return Field[string](f) }

// EQ returns a condition that checks if the field equals the given value.
func (f StringField) EQ(v string) Condition { return f.field().EQ(v) }

// NEQ returns a condition that checks if the field does not equal the given value.
func (f StringField) NEQ(v string) Condition { return f.field().NEQ(v) }

// In returns a condition that checks if the field value is in the given list.
func (f StringField) In(vs ...string) Condition { return f.field().In(vs...) }

// NotIn returns a condition that checks if the field value is not in the given list.
func (f StringField) NotIn(vs ...string) Condition { return f.field().NotIn(vs...) }

// GT returns a condition that checks if the field is greater than the given value.
func (f StringField) GT(v string) Condition { return f.field().GT(v) }

// LT returns a condition that checks if the field is less than the given value.
func (f StringField) LT(v string) Condition { return f.field().LT(v) }

// Contains returns a condition that checks if the field contains the given substring.
func (f StringField) Contains(v string) Condition { return Contains(string(f), v) }

// HasPrefix returns a condition that checks if the field has the given prefix.
func (f StringField) HasPrefix(v string) Condition { return HasPrefix(string(f), v) }

// HasSuffix returns a condition that checks if the field has the given suffix.
func (f StringField) HasSuffix(v string) Condition { return HasSuffix(string(f), v) }

// Like returns a condition that checks if the field matches the LIKE pattern.
func (f StringField) Like(pattern string) Condition { return Like(string(f), pattern) }

// IsNull returns a condition that checks if the field is NULL.
func (f StringField) IsNull() Condition { return IsNull(string(f)) }

// NotNull returns a condition that checks if the field is not NULL.
func (f StringField) NotNull() Condition { return NotNull(string(f)) }

// Asc returns an ascending sort by the field.
func (f StringField) Asc() Sort { return Asc(string(f)) }

// Desc returns a descending sort by the field.
func (f StringField) Desc() Sort { return Desc(string(f)) }

func anys[V any](vs []V) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
