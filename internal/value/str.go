package value

import "strconv"

// Str is an owned UTF-8 string value.
type Str string

// NewStr wraps a Go string as a Str value.
func NewStr(s string) *RefValue {
	return NewRef(Str(s))
}

func (s Str) TypeName() string   { return "str" }
func (s Str) Repr() string       { return strconv.Quote(string(s)) }
func (s Str) IsTrue() bool       { return len(s) > 0 }
func (s Str) Severity() Severity { return FloorStr }
func (Str) IsCallable() bool     { return false }
func (Str) IsConsuming() bool    { return false }
func (Str) IsNullable() bool     { return false }

// String returns the raw (unquoted) Go string.
func (s Str) String() string { return string(s) }
