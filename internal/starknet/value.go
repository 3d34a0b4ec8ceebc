package starknet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	domainerrors "stark-ops.backend/internal/domain/errors"
)

// ValueKind discriminates the closed set of structured value shapes.
type ValueKind int

const (
	KindAbsent ValueKind = iota
	KindScalar
	KindList
	KindObject
)

// Value is a structured argument or result: a felt scalar, an ordered list,
// or a named-field object. The zero Value is "absent".
type Value struct {
	kind   ValueKind
	scalar *big.Int
	list   []Value
	object map[string]Value
}

// Felt builds a scalar value from an int64.
func Felt(v int64) Value {
	return BigFelt(big.NewInt(v))
}

// BigFelt builds a scalar value from a big integer.
func BigFelt(v *big.Int) Value {
	return Value{kind: KindScalar, scalar: new(big.Int).Set(v)}
}

// List builds an ordered sequence value.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Object builds a named-field value.
func Object(fields map[string]Value) Value {
	return Value{kind: KindObject, object: fields}
}

func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether the value is unset or an empty object.
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent || (v.kind == KindObject && len(v.object) == 0)
}

// Scalar returns the felt payload of a scalar value.
func (v Value) Scalar() *big.Int { return v.scalar }

// Items returns the elements of a list value.
func (v Value) Items() []Value { return v.list }

// Field looks up a named field of an object value.
func (v Value) Field(name string) (Value, bool) {
	f, ok := v.object[name]
	return f, ok
}

// FieldNames returns the object's field names in sorted order.
func (v Value) FieldNames() []string {
	names := make([]string, 0, len(v.object))
	for name := range v.object {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports structural equality, including nested lists and objects.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.scalar.Cmp(other.scalar) == 0
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.object) != len(other.object) {
			return false
		}
		for name, f := range v.object {
			of, ok := other.object[name]
			if !ok || !f.Equal(of) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// UnmarshalJSON accepts numbers and numeric strings as scalars, arrays as
// lists and objects as named fields. Any other shape is rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		fields := make(map[string]Value, len(raw))
		for name, msg := range raw {
			var f Value
			if err := f.UnmarshalJSON(msg); err != nil {
				return err
			}
			fields[name] = f
		}
		*v = Object(fields)
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]Value, len(raw))
		for i, msg := range raw {
			if err := items[i].UnmarshalJSON(msg); err != nil {
				return err
			}
		}
		*v = List(items...)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		felt, err := ParseFelt(s)
		if err != nil {
			return err
		}
		*v = BigFelt(felt)
		return nil
	default:
		felt, err := ParseFelt(string(data))
		if err != nil {
			return fmt.Errorf("unsupported JSON value %s: %w", data, domainerrors.ErrArgumentShape)
		}
		*v = BigFelt(felt)
		return nil
	}
}

// MarshalJSON renders scalars as JSON numbers, preserving arbitrary size.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return []byte(FormatFelt(v.scalar)), nil
	case KindList:
		items := v.list
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(items)
	case KindObject:
		fields := v.object
		if fields == nil {
			fields = map[string]Value{}
		}
		return json.Marshal(fields)
	default:
		return []byte("null"), nil
	}
}
