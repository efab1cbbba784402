// Package iml implements Tokay's intermediate representation (spec.md §5):
// the tree-shaped ImlOp/ImlValue graph a (currently out-of-scope, see
// spec.md Non-goals) surface-syntax parser would produce, and that the
// finalizer and lowering passes turn into flat vm.Op bytecode. Grounded on
// original_source/src/compiler/iml/ — op.rs's Op enum and value.rs's
// ImlValue enum — expressed as Go sum types via one concrete struct per
// variant behind a closed interface, the same closed-interface-plus-
// type-switch pattern internal/value uses for its Object kinds.
package iml

import "github.com/tokay-lang/tokay/internal/vm"

// ImlOp is the IR's executable-node interface. Each concrete type below
// is one of spec.md §5's Nop/Op/Load/Call/Alt/Seq/If/Loop variants.
type ImlOp interface {
	imlOp()
}

// Nop performs no action; used as a placeholder by the finalizer when an
// op collapses to nothing (e.g. an empty Alt branch).
type Nop struct{}

// Op wraps a single vm.Op instruction that needs no further lowering
// beyond direct emission (e.g. Accept, Reject, Drop).
type Op struct {
	Code vm.Code
	Str  string
}

// Load pushes a value already known at this point in the IR: either a
// compile-time constant (Value) or a runtime lookup (one of ImlValue's
// other variants, resolved by Resolve).
type Load struct {
	Value ImlValue
}

// Call invokes Target (itself an ImlValue — usually a Name resolved to a
// Parselet/Variable) with the given positional argument sub-trees, plus any
// named arguments (spec.md §4.9 Step 1's kwargs), KwNames[i] naming the
// parameter KwArgs[i] binds to.
type Call struct {
	Target  ImlValue
	Args    []ImlOp
	KwNames []string
	KwArgs  []ImlOp
}

// Alt tries each branch in order (PEG ordered choice), accepting on the
// first branch that doesn't reject and rejecting only if all do.
type Alt struct {
	Branches []ImlOp
}

// Seq runs each op in order, rejecting as soon as one does; Items that
// carry an alias (named captures, `name => op`) record it so lowering can
// emit MakeAlias.
type Seq struct {
	Items   []ImlOp
	Aliases []string // parallel to Items; "" means no alias
}

// If runs Then when Cond accepts and is truthy, Else (which may be nil)
// otherwise.
type If struct {
	Cond ImlOp
	Then ImlOp
	Else ImlOp
}

// Loop repeats Body, collecting each iteration's result, until it rejects
// or (when Bounded) a fixed iteration count is reached.
type Loop struct {
	Body    ImlOp
	Bounded bool
	Min     int
	Max     int // -1 == unbounded
}

func (Nop) imlOp()  {}
func (Op) imlOp()   {}
func (Load) imlOp() {}
func (Call) imlOp() {}
func (Alt) imlOp()  {}
func (Seq) imlOp()  {}
func (If) imlOp()   {}
func (Loop) imlOp() {}
