package schema

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// State is the presence state of a field value.
type State uint8

// Presence states.
const (
	// StateAbsent marks a value the caller did not supply.
	// Selective modifications skip it, full modifications write NULL.
	StateAbsent State = iota
	// StateNull marks a value explicitly set to SQL NULL.
	StateNull
	// StateSet marks a concrete value.
	StateSet
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateNull:
		return "null"
	case StateSet:
		return "set"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Value is a tagged field value: absent, explicit NULL or set to a value.
type Value struct {
	state State
	v     any
}

// Absent returns the "not supplied" value.
func Absent() Value { return Value{} }

// Null returns the explicit SQL NULL value.
func Null() Value { return Value{state: StateNull} }

// Set returns a value holding v. Set(nil) is the same as Null().
func Set(v any) Value {
	if v == nil {
		return Null()
	}
	return Value{state: StateSet, v: v}
}

// State returns the presence state of the value.
func (v Value) State() State { return v.state }

// IsAbsent reports whether the value was not supplied.
func (v Value) IsAbsent() bool { return v.state == StateAbsent }

// IsNull reports whether the value is an explicit NULL.
func (v Value) IsNull() bool { return v.state == StateNull }

// IsSet reports whether the value holds a concrete value.
func (v Value) IsSet() bool { return v.state == StateSet }

// Any returns the held value, or nil when absent or NULL.
func (v Value) Any() any { return v.v }

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.state == StateSet {
		return fmt.Sprint(v.v)
	}
	return v.state.String()
}

// tristate is implemented by Opt.
type tristate interface {
	optState() (State, any)
}

// ValueOf converts a Go field value into a tagged Value:
//
//   - nil and Opt zero values are absent,
//   - Opt created with NullOpt is an explicit NULL,
//   - driver.Valuer types (sql.NullString, ...) returning nil are absent,
//   - anything else is set.
func ValueOf(x any) Value {
	switch v := x.(type) {
	case nil:
		return Absent()
	case Value:
		return v
	case tristate:
		s, held := v.optState()
		return Value{state: s, v: held}
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil || dv == nil {
			return Absent()
		}
		return Set(dv)
	default:
		return Set(v)
	}
}

// Opt is a field type that tells "not supplied" apart from "explicit NULL".
// The zero value is absent.
//
//	type User struct {
//	    ID   int64
//	    Name schema.Opt[string]
//	}
//
//	u := User{ID: 1, Name: schema.NullOpt[string]()} // writes name = NULL
type Opt[V any] struct {
	state State
	v     V
}

// Some returns an Opt holding v.
func Some[V any](v V) Opt[V] {
	return Opt[V]{state: StateSet, v: v}
}

// NullOpt returns an Opt explicitly set to NULL.
func NullOpt[V any]() Opt[V] {
	return Opt[V]{state: StateNull}
}

// Get returns the held value and whether it is set.
func (o Opt[V]) Get() (V, bool) {
	return o.v, o.state == StateSet
}

// OrElse returns the held value, or def when the Opt is not set.
func (o Opt[V]) OrElse(def V) V {
	if o.state == StateSet {
		return o.v
	}
	return def
}

// State returns the presence state.
func (o Opt[V]) State() State { return o.state }

// IsAbsent reports whether the Opt was not supplied.
func (o Opt[V]) IsAbsent() bool { return o.state == StateAbsent }

func (o Opt[V]) optState() (State, any) {
	if o.state == StateSet {
		return StateSet, o.v
	}
	return o.state, nil
}

// String implements fmt.Stringer.
func (o Opt[V]) String() string {
	if o.state == StateSet {
		return fmt.Sprint(o.v)
	}
	return o.state.String()
}

// Value implements the driver.Valuer interface.
func (o Opt[V]) Value() (driver.Value, error) {
	if o.state != StateSet {
		return nil, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(o.v)
}

// Scan implements the sql.Scanner interface. A NULL column scans into an
// explicit NULL, so a fetched record written back does not lose the column.
func (o *Opt[V]) Scan(src any) error {
	if src == nil {
		var zero V
		o.state, o.v = StateNull, zero
		return nil
	}
	var n sql.Null[V]
	if err := n.Scan(src); err != nil {
		return err
	}
	o.state, o.v = StateSet, n.V
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (o Opt[V]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeUint8(uint8(o.state)); err != nil {
		return err
	}
	if o.state != StateSet {
		return nil
	}
	return enc.Encode(o.v)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (o *Opt[V]) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeUint8()
	if err != nil {
		return err
	}
	o.state = State(s)
	if o.state != StateSet {
		var zero V
		o.v = zero
		return nil
	}
	return dec.Decode(&o.v)
}

var (
	_ driver.Valuer         = Opt[int]{}
	_ sql.Scanner           = (*Opt[int])(nil)
	_ msgpack.CustomEncoder = Opt[int]{}
	_ msgpack.CustomDecoder = (*Opt[int])(nil)
)
