package vm

import (
	"fmt"
	"math/big"

	"github.com/tokay-lang/tokay/internal/value"
)

// binaryOp implements the operator names BinaryOp carries (spec.md §4.3):
// arithmetic promotes int+int to bigint math and anything touching a
// float to float64; comparisons fall back to Repr equality for
// non-numeric operands, mirroring how dynamically typed scripting
// languages commonly define "==" across mismatched kinds.
func binaryOp(name string, a, b *value.RefValue) (*value.RefValue, error) {
	an, aIsNum := a.Object().(value.Numeric)
	bn, bIsNum := b.Object().(value.Numeric)

	switch name {
	case "add":
		if as, ok := a.Object().(value.Str); ok {
			return value.NewStr(string(as) + DisplayString(b)), nil
		}
		if aIsNum && bIsNum {
			return numericArith(an, bn, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) },
				func(x, y float64) float64 { return x + y }), nil
		}
	case "sub":
		if aIsNum && bIsNum {
			return numericArith(an, bn, func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) },
				func(x, y float64) float64 { return x - y }), nil
		}
	case "mul":
		if aIsNum && bIsNum {
			return numericArith(an, bn, func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) },
				func(x, y float64) float64 { return x * y }), nil
		}
	case "div":
		if aIsNum && bIsNum {
			return value.NewFloat(an.AsFloat() / bn.AsFloat()), nil
		}
	case "idiv":
		if aIsNum && bIsNum && bn.AsInt().Sign() != 0 {
			return value.NewIntFromBig(new(big.Int).Div(an.AsInt(), bn.AsInt())), nil
		}
	case "mod":
		if aIsNum && bIsNum && bn.AsInt().Sign() != 0 {
			return value.NewIntFromBig(new(big.Int).Mod(an.AsInt(), bn.AsInt())), nil
		}
	case "eq":
		return value.NewBool(equalObjects(a, b)), nil
	case "neq":
		return value.NewBool(!equalObjects(a, b)), nil
	case "lt", "lteq", "gt", "gteq":
		if aIsNum && bIsNum {
			return value.NewBool(compareNumeric(an, bn, name)), nil
		}
		return value.NewBool(compareRepr(a, b, name)), nil
	case "and":
		return value.NewBool(a.IsTrue() && b.IsTrue()), nil
	case "or":
		return value.NewBool(a.IsTrue() || b.IsTrue()), nil
	}
	return nil, fmt.Errorf("unsupported operands for %q: %s, %s", name, a.TypeName(), b.TypeName())
}

func numericArith(a, b value.Numeric, intOp func(x, y *big.Int) *big.Int, floatOp func(x, y float64) float64) *value.RefValue {
	if a.IsFloatKind() || b.IsFloatKind() {
		return value.NewFloat(floatOp(a.AsFloat(), b.AsFloat()))
	}
	return value.NewIntFromBig(intOp(a.AsInt(), b.AsInt()))
}

func compareNumeric(a, b value.Numeric, op string) bool {
	var c int
	if a.IsFloatKind() || b.IsFloatKind() {
		af, bf := a.AsFloat(), b.AsFloat()
		switch {
		case af < bf:
			c = -1
		case af > bf:
			c = 1
		}
	} else {
		c = a.AsInt().Cmp(b.AsInt())
	}
	switch op {
	case "lt":
		return c < 0
	case "lteq":
		return c <= 0
	case "gt":
		return c > 0
	case "gteq":
		return c >= 0
	}
	return false
}

func compareRepr(a, b *value.RefValue, op string) bool {
	c := 0
	switch {
	case a.Repr() < b.Repr():
		c = -1
	case a.Repr() > b.Repr():
		c = 1
	}
	switch op {
	case "lt":
		return c < 0
	case "lteq":
		return c <= 0
	case "gt":
		return c > 0
	case "gteq":
		return c >= 0
	}
	return false
}

func equalObjects(a, b *value.RefValue) bool {
	an, aIsNum := a.Object().(value.Numeric)
	bn, bIsNum := b.Object().(value.Numeric)
	if aIsNum && bIsNum {
		return compareNumeric(an, bn, "lteq") && compareNumeric(an, bn, "gteq")
	}
	return a.Repr() == b.Repr()
}

// unaryOp implements the operator names UnaryOp carries.
func unaryOp(name string, a *value.RefValue) (*value.RefValue, error) {
	switch name {
	case "neg":
		if n, ok := a.Object().(value.Numeric); ok {
			if n.IsFloatKind() {
				return value.NewFloat(-n.AsFloat()), nil
			}
			return value.NewIntFromBig(new(big.Int).Neg(n.AsInt())), nil
		}
	case "not":
		return value.NewBool(!a.IsTrue()), nil
	case "iinc":
		if n, ok := a.Object().(value.Numeric); ok {
			return value.NewIntFromBig(new(big.Int).Add(n.AsInt(), big.NewInt(1))), nil
		}
	case "idec":
		if n, ok := a.Object().(value.Numeric); ok {
			return value.NewIntFromBig(new(big.Int).Sub(n.AsInt(), big.NewInt(1))), nil
		}
	}
	return nil, fmt.Errorf("unsupported operand for %q: %s", name, a.TypeName())
}
