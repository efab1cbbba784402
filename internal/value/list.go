package value

import "strings"

// List is a mutable, ordered sequence of *RefValue. It is the primary
// output of Collect (spec.md §4.10) when captures have no alias, and of
// the main-loop multi-iteration accumulator (spec.md §4.9 step 5).
type List struct {
	Items []*RefValue
}

// NewList constructs a List value from the given items (not copied).
func NewList(items []*RefValue) *RefValue {
	return NewRef(&List{Items: items})
}

// EmptyList constructs a fresh, empty List value.
func EmptyList() *RefValue {
	return NewRef(&List{})
}

func (l *List) TypeName() string   { return "list" }
func (l *List) IsTrue() bool       { return len(l.Items) > 0 }
func (l *List) Severity() Severity { return FloorList }
func (*List) IsCallable() bool     { return false }
func (*List) IsConsuming() bool    { return false }
func (*List) IsNullable() bool     { return false }

func (l *List) Repr() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, it := range l.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(it.Repr())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Push appends v to the list.
func (l *List) Push(v *RefValue) {
	l.Items = append(l.Items, v)
}

// Get returns the item at index i (supporting negative indices counting
// from the end, as Tokay's list/get_item builtin does), or nil if out of
// range.
func (l *List) Get(i int) *RefValue {
	if i < 0 {
		i += len(l.Items)
	}
	if i < 0 || i >= len(l.Items) {
		return nil
	}
	return l.Items[i]
}

// Set stores v at index i, growing the list with Void entries if
// necessary, matching how the finalizer's generated locals are
// zero-filled (spec.md §4.9 step 1).
func (l *List) Set(i int, v *RefValue) {
	if i < 0 {
		i += len(l.Items)
	}
	if i < 0 {
		return
	}
	for i >= len(l.Items) {
		l.Items = append(l.Items, VoidValue)
	}
	l.Items[i] = v
}

// Len returns the number of items.
func (l *List) Len() int { return len(l.Items) }
