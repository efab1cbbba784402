package value

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Dict is a mutable string-keyed map of *RefValue, insertion-ordered so
// that Repr and JSON export are deterministic. It is the other possible
// output of Collect (spec.md §4.10) when at least one capture carries an
// alias, and is what the `ast()` builtin ultimately returns.
type Dict struct {
	keys   []string
	values map[string]*RefValue
}

// NewDict constructs an empty Dict value.
func NewDict() *RefValue {
	return NewRef(&Dict{values: map[string]*RefValue{}})
}

func (d *Dict) TypeName() string   { return "dict" }
func (d *Dict) IsTrue() bool       { return len(d.keys) > 0 }
func (d *Dict) Severity() Severity { return FloorDict }
func (*Dict) IsCallable() bool     { return false }
func (*Dict) IsConsuming() bool    { return false }
func (*Dict) IsNullable() bool     { return false }

func (d *Dict) Repr() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(d.values[k].Repr())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Set inserts or updates key with v, preserving first-insertion order.
func (d *Dict) Set(key string, v *RefValue) {
	if d.values == nil {
		d.values = map[string]*RefValue{}
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get returns the value for key, or nil if absent.
func (d *Dict) Get(key string) *RefValue {
	if d.values == nil {
		return nil
	}
	return d.values[key]
}

// Has reports whether key is present.
func (d *Dict) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// NextSyntheticKey returns the lowest-numbered "#N" key not already
// present, used by Collect's list/dict ambiguity fold (spec.md §4.10
// step 5) to fold list members into a non-empty dict.
func (d *Dict) NextSyntheticKey() string {
	n := 0
	for {
		candidate := syntheticKey(n)
		if !d.Has(candidate) {
			return candidate
		}
		n++
	}
}

func syntheticKey(n int) string {
	var sb strings.Builder
	sb.WriteByte('#')
	sb.WriteString(itoa(n))
	return sb.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// ToJSON renders the dict as a JSON document, walking it with sjson
// rather than a full encoding/json struct round trip since Dict's shape
// (insertion-ordered string keys to heterogeneous *RefValue) has no
// static Go type to unmarshal into.
func (d *Dict) ToJSON() string {
	doc := "{}"
	for _, k := range d.keys {
		v := d.values[k]
		doc = setJSON(doc, k, v.Object())
	}
	return doc
}

func setJSON(doc, path string, obj Object) string {
	var next string
	var err error
	switch v := obj.(type) {
	case Int:
		next, err = sjson.Set(doc, path, v.AsInt64())
	case Float:
		next, err = sjson.Set(doc, path, float64(v))
	case Bool:
		next, err = sjson.Set(doc, path, bool(v))
	case Str:
		next, err = sjson.Set(doc, path, string(v))
	case Null, Void:
		next, err = sjson.SetRaw(doc, path, "null")
	case *List:
		inner := "[]"
		for i, item := range v.Items {
			inner = setJSON(inner, itoa(i), item.Object())
		}
		next, err = sjson.SetRaw(doc, path, inner)
	case *Dict:
		next, err = sjson.SetRaw(doc, path, v.ToJSON())
	default:
		next, err = sjson.Set(doc, path, v.Repr())
	}
	if err != nil {
		return doc
	}
	return next
}

// FromJSON parses a JSON document into a Dict/List/scalar *RefValue tree
// using gjson for ad hoc field extraction rather than a hand-rolled decoder.
func FromJSON(doc string) *RefValue {
	return fromGjson(gjson.Parse(doc))
}

func fromGjson(r gjson.Result) *RefValue {
	switch r.Type {
	case gjson.Null:
		return NullValue
	case gjson.False:
		return FalseValue
	case gjson.True:
		return TrueValue
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return NewInt(int64(r.Num))
		}
		return NewFloat(r.Num)
	case gjson.String:
		return NewStr(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var items []*RefValue
			r.ForEach(func(_, value gjson.Result) bool {
				items = append(items, fromGjson(value))
				return true
			})
			return NewList(items)
		}
		d := &Dict{values: map[string]*RefValue{}}
		r.ForEach(func(key, value gjson.Result) bool {
			d.Set(key.String(), fromGjson(value))
			return true
		})
		return NewRef(d)
	default:
		return VoidValue
	}
}
