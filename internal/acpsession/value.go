// ABOUTME: Type-erased JSON value for schema-opaque fields (tool args, _meta, permission content) (§9)
// ABOUTME: A closed sum over null/bool/int/float/string/array/object, not a reflective interface{} wrapper

package acpsession

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ValueKind discriminates the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// Value is a general-purpose JSON value used wherever the wire protocol
// carries schema-opaque data. It is a purpose-built enum rather than a bare
// any/interface{} so equality and inspection do not require reflection.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

func NullValue() Value             { return Value{kind: KindNull} }
func BoolValue(b bool) Value       { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value       { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value   { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value   { return Value{kind: KindString, s: s} }
func ArrayValue(v []Value) Value   { return Value{kind: KindArray, arr: v} }
func ObjectValue(m map[string]Value) Value { return Value{kind: KindObject, obj: m} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Bool() bool      { return v.b }
func (v Value) Int() int64      { return v.i }
func (v Value) Float() float64  { return v.f }
func (v Value) String() string  { return v.s }
func (v Value) Array() []Value  { return v.arr }
func (v Value) Object() map[string]Value { return v.obj }

// Equal compares by canonical JSON form, matching §9's "equality defined by
// canonical JSON serialization" rather than by structural Go comparison
// (maps are not otherwise comparable). Object key order does not matter, and
// numbers compare by JSON value, so IntValue(1) equals FloatValue(1).
func (v Value) Equal(other Value) bool {
	a, errA := json.Marshal(v)
	b, errB := json.Marshal(other)
	if errA != nil || errB != nil {
		return false
	}
	return canonicalize(a) == canonicalize(b)
}

func canonicalize(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	out, _ := json.Marshal(sortedAny(v))
	return string(out)
}

func sortedAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(t))
		for _, k := range keys {
			out[k] = sortedAny(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = sortedAny(e)
		}
		return out
	default:
		return t
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		return json.Marshal(v.arr)
	case KindObject:
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("acpsession: unknown Value kind %d", v.kind)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = NullValue()
		return nil
	case bytes.Equal(data, []byte("true")):
		*v = BoolValue(true)
		return nil
	case bytes.Equal(data, []byte("false")):
		*v = BoolValue(false)
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case len(data) > 0 && data[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		arr := make([]Value, len(raw))
		for i, r := range raw {
			if err := arr[i].UnmarshalJSON(r); err != nil {
				return err
			}
		}
		*v = ArrayValue(arr)
		return nil
	case len(data) > 0 && data[0] == '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		obj := make(map[string]Value, len(raw))
		for k, r := range raw {
			var ev Value
			if err := ev.UnmarshalJSON(r); err != nil {
				return err
			}
			obj[k] = ev
		}
		*v = ObjectValue(obj)
		return nil
	default:
		var i int64
		if err := json.Unmarshal(data, &i); err == nil {
			*v = IntValue(i)
			return nil
		}
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("acpsession: not a JSON value: %s", data)
		}
		*v = FloatValue(f)
		return nil
	}
}
