package iml

import (
	"strings"

	"github.com/tokay-lang/tokay/internal/value"
	"github.com/tokay-lang/tokay/internal/vm"
)

// This file provides a small literal/call builder for constructing
// ImlParselet trees directly in Go, standing in for the surface-syntax
// grammar parser (out of scope per spec.md's Non-goals) when writing
// fixtures for the finalizer/lowering/VM test suites and for `tokay`'s
// end-to-end scenario tests.

// Lit matches an exact literal string, wrapping a small generated
// vm.Builtin as the Call target the same way a resolved named builtin
// would be after scope-chain lookup (spec.md §5).
func Lit(s string) ImlOp {
	b := &vm.Builtin{Name: "lit:" + s, Consuming: true, Func: matchLiteral(s)}
	return Call{Target: Value{V: value.NewRef(b)}}
}

func matchLiteral(s string) vm.BuiltinFunc {
	return func(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
		start := t.Reader.Tell()
		for _, want := range s {
			got, ok := t.Reader.Peek()
			if !ok || got != want {
				t.Reader.Reset(start)
				return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
			}
			t.Reader.Next()
		}
		return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(s)}, vm.Reject{}
	}
}

// CallRef calls an already-resolved builtin/value directly, used to
// reference entries from a builtin.Std() registry by name.
func CallRef(obj value.Object, args ...ImlOp) ImlOp {
	return Call{Target: Value{V: value.NewRef(obj)}, Args: args}
}

// CallParselet references another ImlParselet definition directly
// (mutual/self-recursion fixtures).
func CallParselet(def *ImlParselet) ImlOp {
	return Call{Target: &Parselet{Def: def}}
}

// CallParseletArgs calls another ImlParselet definition with positional
// arguments, the Parselet-target counterpart to CallRef's Builtin-target
// form.
func CallParseletArgs(def *ImlParselet, args ...ImlOp) ImlOp {
	return Call{Target: &Parselet{Def: def}, Args: args}
}

// Named attaches named arguments to an already-built Call (from CallRef,
// CallParselet or CallParseletArgs), implementing the kwargs half of
// spec.md §4.9 Step 1: names[i] is the parameter args[i] binds to. Panics
// if call is not a Call — every bootstrap constructor above returns one.
func Named(call ImlOp, names []string, args ...ImlOp) ImlOp {
	c := call.(Call)
	c.KwNames = names
	c.KwArgs = args
	return c
}

// Local references parameter or local slot i inside a parselet body.
// Parameters occupy the first len(Params) slots of a parselet's locals
// array in declaration order; any further slots hold plain `Locals` names
// (spec.md §4.9 Step 1's argument binding writes directly into these same
// slots).
func Local(slot int) ImlOp {
	return Load{Value: Variable{Slot: slot}}
}

// Push wraps a constant value as a Load op (spec.md §4.6's Load/fast
// paths).
func Push(v *value.RefValue) ImlOp {
	return Load{Value: Value{V: v}}
}

// SeqOf builds an unaliased sequence.
func SeqOf(items ...ImlOp) ImlOp {
	return Seq{Items: items, Aliases: make([]string, len(items))}
}

// NamedSeq builds a sequence where item i is tagged with aliases[i]
// ("" for no alias), triggering Collect-into-dict at lowering time.
func NamedSeq(items []ImlOp, aliases []string) ImlOp {
	return Seq{Items: items, Aliases: aliases}
}

// Choice builds ordered-choice alternation (PEG `|`).
func Choice(branches ...ImlOp) ImlOp {
	return Alt{Branches: branches}
}

// AcceptOp emits a hard accept of the top-of-stack value.
func AcceptOp() ImlOp { return Op{Code: vm.OpAccept} }

// RejectOp emits a soft reject.
func RejectOp() ImlOp { return Op{Code: vm.OpReject} }

// NewParselet builds an un-finalized ImlParselet with the given body and
// no params/locals, the common case for the test fixtures in this repo.
func NewParselet(name string, body ImlOp) *ImlParselet {
	return &ImlParselet{Name: name, Body: body}
}

// joinNames is a tiny helper used by tests composing diagnostic parselet
// names from multiple literals.
func joinNames(parts ...string) string {
	return strings.Join(parts, "_")
}
