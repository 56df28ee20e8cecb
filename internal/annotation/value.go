package annotation

import "encoding/json"

// Kind identifies the shape a variant field was received in.
type Kind uint8

const (
	// KindAbsent marks a missing field or a value of an unsupported shape
	// (number, bool, null).
	KindAbsent Kind = iota

	// KindString marks a JSON string.
	KindString

	// KindMapping marks a JSON object.
	KindMapping

	// KindSequence marks a JSON array.
	KindSequence
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Value is a decoded field that may arrive as a string, a mapping, a sequence
// or not at all. The zero Value is absent.
//
// Value is immutable once built; accessors never fail and return the zero
// result when the shape does not match.
type Value struct {
	kind    Kind
	str     string
	mapping map[string]Value
	items   []Value
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// MappingValue returns a mapping Value holding a copy of m.
func MappingValue(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMapping, mapping: cp}
}

// SequenceValue returns a sequence Value holding the given items in order.
func SequenceValue(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindSequence, items: cp}
}

// ValueOf converts a decoded JSON value (as produced by encoding/json into an
// any) to a Value. Strings, objects and arrays are kept; every other kind,
// including nil, becomes absent. Convenience Go shapes such as []string and
// map[string]string are accepted as well.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return StringValue(t)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = ValueOf(e)
		}
		return Value{kind: KindMapping, mapping: m}
	case map[string]string:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = StringValue(e)
		}
		return Value{kind: KindMapping, mapping: m}
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = ValueOf(e)
		}
		return Value{kind: KindSequence, items: items}
	case []string:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = StringValue(e)
		}
		return Value{kind: KindSequence, items: items}
	case []map[string]any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = ValueOf(e)
		}
		return Value{kind: KindSequence, items: items}
	default:
		return Value{}
	}
}

// Kind reports the shape of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether v is absent.
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// Str returns the string held by v and true, or "" and false if v is not a
// string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Get returns the value stored under key when v is a mapping.
// It returns an absent Value for missing keys and non-mapping values.
func (v Value) Get(key string) Value {
	if v.kind != KindMapping {
		return Value{}
	}
	return v.mapping[key]
}

// Items returns the elements of v when v is a sequence, in order.
// The returned slice must not be modified.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Len returns the number of elements of a sequence or entries of a mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindMapping:
		return len(v.mapping)
	case KindSequence:
		return len(v.items)
	default:
		return 0
	}
}

// UnmarshalJSON decodes any JSON value into v. Unsupported kinds decode to an
// absent Value; only malformed JSON is reported as an error.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// MarshalJSON encodes v back to JSON. An absent Value encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw())
}

// raw converts v back to the plain Go shapes used by encoding/json.
func (v Value) raw() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindMapping:
		m := make(map[string]any, len(v.mapping))
		for k, e := range v.mapping {
			m[k] = e.raw()
		}
		return m
	case KindSequence:
		items := make([]any, len(v.items))
		for i, e := range v.items {
			items[i] = e.raw()
		}
		return items
	default:
		return nil
	}
}
