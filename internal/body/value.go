// Package body builds request payloads from explicit value trees.
package body

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Kind identifies a Value variant
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a serializable request body node
type Value struct {
	kind   Kind
	b      bool
	num    json.Number
	str    string
	items  []Value
	fields map[string]Value
}

// Null is the JSON null literal
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps an integer
func Int(n int64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatInt(n, 10))}
}

// Float wraps a float
func Float(f float64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// Array builds an array node
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value(nil), items...)}
}

// Object builds an object node
func Object(fields map[string]Value) Value {
	copied := make(map[string]Value, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Value{kind: KindObject, fields: copied}
}

// Optional returns v, or Null when v is nil
func Optional(v *Value) Value {
	if v == nil {
		return Null()
	}
	return *v
}

// Kind returns the node variant
func (v Value) Kind() Kind { return v.kind }

// Field returns an object member
func (v Value) Field(name string) (Value, bool) {
	f, ok := v.fields[name]
	return f, ok
}

// Len returns the number of array items or object members
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.fields)
	default:
		return 0
	}
}

// MarshalJSON encodes the tree as canonical JSON: object keys sorted, no
// insignificant whitespace.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		f, err := v.num.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.Errorf("invalid number %q", v.num)
		}
		buf.WriteString(v.num.String())
	case KindString:
		s, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(s)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		keys := make([]string, 0, len(v.fields))
		for k := range v.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(name)
			buf.WriteByte(':')
			if err := v.fields[k].encode(buf); err != nil {
				return errors.Wrapf(err, "field %s", k)
			}
		}
		buf.WriteByte('}')
	default:
		return errors.Errorf("unknown value kind %d", v.kind)
	}
	return nil
}

// Encode returns the canonical JSON bytes of v
func Encode(v Value) ([]byte, error) {
	return v.MarshalJSON()
}

// FromJSON parses JSON text into a value tree
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Value{}, errors.Wrap(err, "failed to parse body")
	}
	if dec.More() {
		return Value{}, errors.New("failed to parse body: trailing data")
	}
	return FromAny(raw)
}

// FromAny converts decoded JSON-like Go values (maps, slices, strings,
// numbers, bools, nil) into a value tree.
func FromAny(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Value{kind: KindNumber, num: t}, nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	case []interface{}:
		items := make([]Value, 0, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, errors.Wrapf(err, "index %d", i)
			}
			items = append(items, v)
		}
		return Value{kind: KindArray, items: items}, nil
	case []string:
		items := make([]Value, 0, len(t))
		for _, s := range t {
			items = append(items, String(s))
		}
		return Value{kind: KindArray, items: items}, nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, errors.Wrapf(err, "field %s", k)
			}
			fields[k] = v
		}
		return Value{kind: KindObject, fields: fields}, nil
	case map[string]string:
		fields := make(map[string]Value, len(t))
		for k, s := range t {
			fields[k] = String(s)
		}
		return Value{kind: KindObject, fields: fields}, nil
	default:
		return Value{}, fmt.Errorf("unsupported body value of type %T", x)
	}
}
