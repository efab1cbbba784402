package value

import (
	"fmt"
	"math/big"
)

// Int is an arbitrary-precision integer, grounded on the `math/big.Int`
// usage the pack's `cbarrick-ripl` Prolog numeric type shows for exact
// integer arithmetic, matching spec.md §3's "int (bigint)".
type Int struct {
	V *big.Int
}

// NewInt wraps an int64 as an Int value.
func NewInt(i int64) *RefValue {
	return NewRef(Int{V: big.NewInt(i)})
}

// NewIntFromBig wraps an existing *big.Int.
func NewIntFromBig(v *big.Int) *RefValue {
	return NewRef(Int{V: v})
}

func (i Int) TypeName() string   { return "int" }
func (i Int) Repr() string       { return i.V.String() }
func (i Int) IsTrue() bool       { return i.V.Sign() != 0 }
func (i Int) Severity() Severity { return FloorInt }
func (Int) IsCallable() bool     { return false }
func (Int) IsConsuming() bool    { return false }
func (Int) IsNullable() bool     { return false }

// AsInt64 returns the value truncated to an int64.
func (i Int) AsInt64() int64 { return i.V.Int64() }

// AsFloat64 returns the value converted to a float64.
func (i Int) AsFloat64() float64 {
	f := new(big.Float).SetInt(i.V)
	out, _ := f.Float64()
	return out
}

// Float is a 64-bit floating point value.
type Float float64

// NewFloat wraps a float64 as a Float value.
func NewFloat(f float64) *RefValue {
	return NewRef(Float(f))
}

func (f Float) TypeName() string   { return "float" }
func (f Float) Repr() string       { return fmt.Sprintf("%g", float64(f)) }
func (f Float) IsTrue() bool       { return float64(f) != 0.0 }
func (f Float) Severity() Severity { return FloorFloat }
func (Float) IsCallable() bool     { return false }
func (Float) IsConsuming() bool    { return false }
func (Float) IsNullable() bool     { return false }

// Numeric is implemented by values usable on either side of an arithmetic
// BinaryOp/UnaryOp (spec.md §4.3).
type Numeric interface {
	Object
	AsInt() *big.Int
	AsFloat() float64
	IsFloatKind() bool
}

func (i Int) AsInt() *big.Int   { return i.V }
func (i Int) AsFloat() float64  { return i.AsFloat64() }
func (Int) IsFloatKind() bool   { return false }

func (f Float) AsInt() *big.Int {
	bi, _ := big.NewFloat(float64(f)).Int(nil)
	return bi
}
func (f Float) AsFloat() float64 { return float64(f) }
func (Float) IsFloatKind() bool  { return true }
