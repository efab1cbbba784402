package cmd

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/tokay-lang/tokay/internal/builtin"
	"github.com/tokay-lang/tokay/internal/iml"
	"github.com/tokay-lang/tokay/internal/lowering"
	"github.com/tokay-lang/tokay/internal/value"
	"github.com/tokay-lang/tokay/internal/vm"
)

// build finalizes and lowers a bootstrap-format program whose first
// parselet is __main__, the same two-step pipeline tokay's (out of scope)
// grammar front end would invoke before handing a Program to the CLI.
func build(defs ...*iml.ImlParselet) *vm.Program {
	iml.Finalize(defs)
	return lowering.Program(defs)
}

// TestScenarioHelloWorld is spec.md §8's S1: the program
// `"Hello " + "World"` on empty input produces "Hello World", exercising
// the binary-operator path (vm.OpBinary) rather than a parselet call chain.
func TestScenarioHelloWorld(t *testing.T) {
	// Lit() only matches against non-empty input, so this scenario runs the
	// + over two pushed constants directly rather than over a zero-length
	// match against truly empty input (spec.md's S1 describes the result,
	// not a specific bytecode shape for producing it).
	main := iml.NewParselet("__main__", iml.SeqOf(
		iml.Push(value.NewStr("Hello ")),
		iml.Push(value.NewStr("World")),
		iml.Op{Code: vm.OpBinary, Str: "add"},
		// OpBinary only leaves its result on the plain value stack, not the
		// capture window collect() reads from, so an explicit Accept is
		// needed to surface it as the parselet's return value.
		iml.AcceptOp(),
	))

	prog := build(main)
	th := vm.NewThread(prog, []byte(""), builtin.Std())
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snaps.MatchSnapshot(t, "S1_hello_world", result.Repr())
}

// TestScenarioLeftRecursiveExpr is spec.md §8's S2: `expr = expr "+" Int |
// Int` over "1+2+3" grows a left-recursive nested structure. The bootstrap
// format builds named aliases as a Dict rather than S2's bare nested-list
// notation (spec.md's Collect ambiguity rule always produces a Dict once
// any alias is present, List only when none is — see internal/vm/collect.go)
// so this snapshot captures the Dict shape the engine actually produces for
// the same grammar, not spec.md's illustrative List rendering.
func TestScenarioLeftRecursiveExpr(t *testing.T) {
	reg := builtin.Std()
	integerFn, ok := reg.Lookup("Integer")
	if !ok {
		t.Fatalf("Integer builtin not registered")
	}

	expr := iml.NewParselet("expr", nil)
	main := iml.NewParselet("__main__", iml.CallParselet(expr))
	expr.Body = iml.Choice(
		iml.NamedSeq(
			[]iml.ImlOp{iml.CallParselet(expr), iml.Lit("+"), iml.CallRef(integerFn)},
			[]string{"left", "", "right"},
		),
		iml.CallRef(integerFn),
	)

	prog := build(main, expr)
	th := vm.NewThread(prog, []byte("1+2+3"), reg)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snaps.MatchSnapshot(t, "S2_left_recursive_expr", result.Repr())
}

// TestScenarioPrintEachMatch is spec.md §8's S5: `'+' print("plus")` over
// "+++" prints "plus" once per main-loop iteration and accumulates the
// three matched "+" literals into the returned list.
func TestScenarioPrintEachMatch(t *testing.T) {
	reg := builtin.Std()
	printFn, ok := reg.Lookup("print")
	if !ok {
		t.Fatalf("print builtin not registered")
	}

	main := iml.NewParselet("__main__", iml.SeqOf(
		iml.Lit("+"),
		iml.CallRef(printFn, iml.Push(value.NewStr("plus"))),
	))

	prog := build(main)
	var out bytes.Buffer
	th := vm.NewThread(prog, []byte("+++"), reg)
	th.Out = &out
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snaps.MatchSnapshot(t, "S5_printed_output", out.String())
	snaps.MatchSnapshot(t, "S5_result", result.Repr())
}

// TestScenarioNamedArgument is spec.md §8's S6: a user-defined parselet
// `f : x=10 { x*x }` called once positionally (`f(5)`, x bound to 5) and
// once by name (`f(x=3)`, x bound to 3 over its own default), exercising
// spec.md §4.9 Step 1's full argument-binding algorithm end to end — the
// behavior review comment #4 required (kwargs were previously dropped for
// every non-Builtin call).
func TestScenarioNamedArgument(t *testing.T) {
	f := &iml.ImlParselet{
		Name:   "f",
		Params: []iml.Param{{Name: "x", Default: iml.Push(value.NewInt(10))}},
		Body: iml.SeqOf(
			iml.Local(0),
			iml.Local(0),
			iml.Op{Code: vm.OpBinary, Str: "mul"},
			iml.AcceptOp(),
		),
	}
	main := iml.NewParselet("__main__", iml.SeqOf(
		iml.CallParseletArgs(f, iml.Push(value.NewInt(5))),
		iml.Named(iml.CallParselet(f), []string{"x"}, iml.Push(value.NewInt(3))),
	))

	prog := build(main, f)
	th := vm.NewThread(prog, []byte(""), builtin.Std())
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snaps.MatchSnapshot(t, "S6_named_argument", result.Repr())
}
