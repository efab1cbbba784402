package value

import "math/big"

// Iterator is implemented by every value kind the `iter(value)` builtin
// and a grammar's `for` construct can drive (spec.md §4.11): a value that
// can yield a sequence of *RefValue results one at a time.
type Iterator interface {
	Object
	// Next returns the next value and true, or (nil, false) once
	// exhausted.
	Next() (*RefValue, bool)
}

// --- MethodIter ------------------------------------------------------------

// MethodIter iterates by calling Fn with a 0-based running index until it
// reports exhaustion, grounded on spec.md §4.11's "method-iter (iterate by
// calling a method with an integer index until it returns void)". Fn is
// supplied by the caller (typically vm/builtin code invoking a callable
// value) since this leaf package cannot itself dispatch a Call.
type MethodIter struct {
	Fn    func(index int64) (*RefValue, bool)
	index int64
}

// NewMethodIter wraps fn as a method-iter.
func NewMethodIter(fn func(index int64) (*RefValue, bool)) *MethodIter {
	return &MethodIter{Fn: fn}
}

func (it *MethodIter) TypeName() string   { return "iter" }
func (it *MethodIter) Repr() string       { return "<method-iter>" }
func (it *MethodIter) IsTrue() bool       { return true }
func (it *MethodIter) Severity() Severity { return SeverityDefault }
func (*MethodIter) IsCallable() bool      { return false }
func (*MethodIter) IsConsuming() bool     { return false }
func (*MethodIter) IsNullable() bool      { return false }

func (it *MethodIter) Next() (*RefValue, bool) {
	v, ok := it.Fn(it.index)
	if !ok {
		return nil, false
	}
	it.index++
	return v, true
}

// --- MapIter ---------------------------------------------------------------

// MapIter maps each item from Inner through Fn, skipping any mapped result
// that comes back Void (spec.md §4.11's "map-iter (map each item through a
// callable, skip voids)").
type MapIter struct {
	Inner Iterator
	Fn    func(*RefValue) (*RefValue, bool)
}

// NewMapIter wraps inner, mapping each yielded value through fn.
func NewMapIter(inner Iterator, fn func(*RefValue) (*RefValue, bool)) *MapIter {
	return &MapIter{Inner: inner, Fn: fn}
}

func (it *MapIter) TypeName() string   { return "iter" }
func (it *MapIter) Repr() string       { return "<map-iter>" }
func (it *MapIter) IsTrue() bool       { return true }
func (it *MapIter) Severity() Severity { return SeverityDefault }
func (*MapIter) IsCallable() bool      { return false }
func (*MapIter) IsConsuming() bool     { return false }
func (*MapIter) IsNullable() bool      { return false }

func (it *MapIter) Next() (*RefValue, bool) {
	for {
		v, ok := it.Inner.Next()
		if !ok {
			return nil, false
		}
		mapped, ok := it.Fn(v)
		if !ok {
			continue
		}
		if _, isVoid := mapped.Object().(Void); isVoid {
			continue
		}
		return mapped, true
	}
}

// --- EnumIter --------------------------------------------------------------

// EnumIter pairs each item from Inner with a running 0-based count, as a
// 2-element List [index, value] (spec.md §4.11's "enum-iter").
type EnumIter struct {
	Inner Iterator
	count int64
}

// NewEnumIter wraps inner, pairing each yielded value with its index.
func NewEnumIter(inner Iterator) *EnumIter {
	return &EnumIter{Inner: inner}
}

func (it *EnumIter) TypeName() string   { return "iter" }
func (it *EnumIter) Repr() string       { return "<enum-iter>" }
func (it *EnumIter) IsTrue() bool       { return true }
func (it *EnumIter) Severity() Severity { return SeverityDefault }
func (*EnumIter) IsCallable() bool      { return false }
func (*EnumIter) IsConsuming() bool     { return false }
func (*EnumIter) IsNullable() bool      { return false }

func (it *EnumIter) Next() (*RefValue, bool) {
	v, ok := it.Inner.Next()
	if !ok {
		return nil, false
	}
	pair := NewList([]*RefValue{NewInt(it.count), v})
	it.count++
	return pair, true
}

// --- RangeIter ---------------------------------------------------------------

// RangeIter walks bigint values from a start offset to a stop offset
// (exclusive) by step, grounded on spec.md §4.11's "range-iter (bigint
// start/stop/step)".
type RangeIter struct {
	cur, stop, step *big.Int
}

// NewRangeIter builds a range-iter over [start, stop) advancing by step.
// step must be non-zero; a negative step counts down.
func NewRangeIter(start, stop, step *big.Int) *RangeIter {
	return &RangeIter{cur: new(big.Int).Set(start), stop: stop, step: step}
}

func (it *RangeIter) TypeName() string   { return "iter" }
func (it *RangeIter) Repr() string       { return "<range-iter>" }
func (it *RangeIter) IsTrue() bool       { return true }
func (it *RangeIter) Severity() Severity { return SeverityDefault }
func (*RangeIter) IsCallable() bool      { return false }
func (*RangeIter) IsConsuming() bool     { return false }
func (*RangeIter) IsNullable() bool      { return false }

func (it *RangeIter) Next() (*RefValue, bool) {
	if it.step.Sign() >= 0 {
		if it.cur.Cmp(it.stop) >= 0 {
			return nil, false
		}
	} else if it.cur.Cmp(it.stop) <= 0 {
		return nil, false
	}
	v := NewIntFromBig(new(big.Int).Set(it.cur))
	it.cur.Add(it.cur, it.step)
	return v, true
}

// --- list/dict iteration helpers -------------------------------------------

// Iter returns a fresh method-iter walking l's items in order, the List's
// contribution to the `iter(value)` builtin's dispatch (spec.md §4.11).
func (l *List) Iter() Iterator {
	items := l.Items
	return NewMethodIter(func(i int64) (*RefValue, bool) {
		if i < 0 || int(i) >= len(items) {
			return nil, false
		}
		return items[i], true
	})
}

// Iter returns a fresh method-iter walking d's entries in insertion order
// as 2-element [key, value] pairs.
func (d *Dict) Iter() Iterator {
	keys := d.Keys()
	return NewMethodIter(func(i int64) (*RefValue, bool) {
		if i < 0 || int(i) >= len(keys) {
			return nil, false
		}
		k := keys[i]
		return NewList([]*RefValue{NewStr(k), d.Get(k)}), true
	})
}
