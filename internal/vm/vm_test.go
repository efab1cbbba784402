package vm_test

import (
	"strings"
	"testing"

	"github.com/tokay-lang/tokay/internal/iml"
	"github.com/tokay-lang/tokay/internal/lowering"
	"github.com/tokay-lang/tokay/internal/toyerr"
	"github.com/tokay-lang/tokay/internal/value"
	"github.com/tokay-lang/tokay/internal/vm"
)

// build runs Finalize + Program over a single-entry def list and returns
// the ready-to-run Program, mirroring what a (currently out-of-scope)
// surface-syntax compiler front end would hand to vm.NewThread.
func build(defs ...*iml.ImlParselet) *vm.Program {
	iml.Finalize(defs)
	return lowering.Program(defs)
}

// TestMainLoopAccumulatesMultipleMatches exercises spec.md §4.9 step 5's
// main-loop accumulator: __main__ matching "ab" is re-run until the input
// is exhausted, and every accepted iteration's result is folded into a
// list.
func TestMainLoopAccumulatesMultipleMatches(t *testing.T) {
	main := iml.NewParselet("__main__", iml.Lit("ab"))
	prog := build(main)

	th := vm.NewThread(prog, []byte("ababab"), nil)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	list, ok := result.Object().(*value.List)
	if !ok {
		t.Fatalf("want *value.List, got %T (%s)", result.Object(), result.Repr())
	}
	if list.Len() != 3 {
		t.Fatalf("want 3 matches, got %d (%s)", list.Len(), result.Repr())
	}
	for i := 0; i < list.Len(); i++ {
		if s, ok := list.Get(i).Object().(value.Str); !ok || string(s) != "ab" {
			t.Fatalf("item %d: want Str(ab), got %#v", i, list.Get(i).Object())
		}
	}
}

// TestMainLoopSingleMatchReturnsBareValue checks the "only one iteration
// ran" case returns the value directly, not wrapped in a one-element list.
func TestMainLoopSingleMatchReturnsBareValue(t *testing.T) {
	main := iml.NewParselet("__main__", iml.Lit("hello"))
	prog := build(main)

	th := vm.NewThread(prog, []byte("hello"), nil)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s, ok := result.Object().(value.Str)
	if !ok || string(s) != "hello" {
		t.Fatalf("want bare Str(hello), got %#v", result.Object())
	}
}

// TestMainLoopNoMatchErrors checks that failing on the very first
// iteration surfaces an error rather than an empty success, formatted per
// spec.md §7 as "Line R, column C: message" (internal/toyerr).
func TestMainLoopNoMatchErrors(t *testing.T) {
	main := iml.NewParselet("__main__", iml.Lit("x"))
	prog := build(main)

	th := vm.NewThread(prog, []byte("y"), nil)
	_, err := th.Run()
	if err == nil {
		t.Fatalf("want an error when the first iteration cannot match")
	}
	if got, want := err.Error(), "Line 1, column 1: no match"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

// TestRunErrorCarriesSourceForCaretDisplay checks that a Thread's Run error
// is a *toyerr.RuntimeError that can render a caret-pointing source
// excerpt, not just the bare one-line message.
func TestRunErrorCarriesSourceForCaretDisplay(t *testing.T) {
	main := iml.NewParselet("__main__", iml.Lit("x"))
	prog := build(main)

	th := vm.NewThread(prog, []byte("y"), nil)
	_, err := th.Run()
	rerr, ok := err.(*toyerr.RuntimeError)
	if !ok {
		t.Fatalf("err is %T, want *toyerr.RuntimeError", err)
	}
	formatted := rerr.Format(false)
	if !strings.Contains(formatted, "y") || !strings.Contains(formatted, "^") {
		t.Fatalf("Format() = %q, want it to quote the source line and a caret", formatted)
	}
}

// TestOrderedChoiceTriesNextBranchOnReject exercises the Frame/Fuse/Reset
// scheme compileAlt builds (spec.md §4.6/§4.8): the first branch rejects,
// so the second is tried and its result wins.
func TestOrderedChoiceTriesNextBranchOnReject(t *testing.T) {
	main := iml.NewParselet("__main__", iml.Choice(iml.Lit("foo"), iml.Lit("bar")))
	prog := build(main)

	th := vm.NewThread(prog, []byte("bar"), nil)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s, ok := result.Object().(value.Str); !ok || string(s) != "bar" {
		t.Fatalf("want Str(bar), got %#v", result.Object())
	}
}

// TestOrderedChoicePrefersFirstMatchingBranch checks that when more than
// one branch could match, the first one in source order wins (PEG ordered
// choice, not longest-match).
func TestOrderedChoicePrefersFirstMatchingBranch(t *testing.T) {
	main := iml.NewParselet("__main__", iml.Choice(iml.Lit("a"), iml.Lit("ab")))
	prog := build(main)

	th := vm.NewThread(prog, []byte("ab"), nil)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// first branch "a" matches and consumes one byte; the main loop then
	// re-runs against the remaining "b", which doesn't match either
	// alternative, so only the first iteration's result is kept.
	if s, ok := result.Object().(value.Str); !ok || string(s) != "a" {
		t.Fatalf("want Str(a) from the first matching branch, got %#v", result.Object())
	}
}

// TestPackratMemoReturnsCachedResult checks that calling the same
// non-left-recursive consuming parselet twice at the same offset (via two
// branches of a choice that both reference it) only needs the underlying
// match logic to succeed once; the second lookup is served from the memo
// table (spec.md §4.9 step 2, P3) and must agree with the first.
func TestPackratMemoReturnsCachedResult(t *testing.T) {
	word := iml.NewParselet("word", iml.Lit("go"))
	main := iml.NewParselet("__main__", iml.Choice(
		iml.SeqOf(iml.CallParselet(word), iml.Lit("!")), // fails: no "!" follows
		iml.CallParselet(word),                          // re-invokes word at the same offset
	))
	prog := build(main, word)

	th := vm.NewThread(prog, []byte("go"), nil)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s, ok := result.Object().(value.Str); !ok || string(s) != "go" {
		t.Fatalf("want Str(go), got %#v", result.Object())
	}
}

// TestDirectLeftRecursionGrowsTheSeed builds `expr := expr '+' num | num`
// over "1+1+1" and checks the seeded fixed-point loop in
// Thread.callLeftRecursive actually grows across all three terms instead
// of stopping after the first (spec.md §4.9, P4).
func TestDirectLeftRecursionGrowsTheSeed(t *testing.T) {
	num := iml.NewParselet("num", iml.Lit("1"))
	expr := iml.NewParselet("expr", nil)
	expr.Body = iml.Choice(
		iml.NamedSeq(
			[]iml.ImlOp{iml.CallParselet(expr), iml.Lit("+"), iml.CallParselet(num)},
			[]string{"left", "", "right"},
		),
		iml.CallParselet(num),
	)
	main := iml.NewParselet("__main__", iml.CallParselet(expr))
	prog := build(main, expr, num)

	th := vm.NewThread(prog, []byte("1+1+1"), nil)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The final accepted value is the outermost Seq's collect, a dict with
	// "left" and "right" keys; its presence at all confirms the recursive
	// grow-the-seed loop matched the full "1+1+1" rather than bailing out
	// after a single "1".
	d, ok := result.Object().(*value.Dict)
	if !ok {
		t.Fatalf("want *value.Dict from the collected named sequence, got %#v (%s)", result.Object(), result.Repr())
	}
	if d.Get("left") == nil || d.Get("right") == nil {
		t.Fatalf("want left/right keys present, got %s", result.Repr())
	}
}

// TestCollectFoldsUnaliasedCapturesIntoList checks spec.md §4.10: a
// sequence with no aliased items collects into a list.
func TestCollectFoldsUnaliasedCapturesIntoList(t *testing.T) {
	main := iml.NewParselet("__main__", iml.SeqOf(iml.Lit("a"), iml.Lit("b"), iml.Lit("c")))
	prog := build(main)

	th := vm.NewThread(prog, []byte("abc"), nil)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	list, ok := result.Object().(*value.List)
	if !ok {
		t.Fatalf("want *value.List, got %#v (%s)", result.Object(), result.Repr())
	}
	if list.Len() != 3 {
		t.Fatalf("want 3 items, got %d", list.Len())
	}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if s, ok := list.Get(i).Object().(value.Str); !ok || string(s) != w {
			t.Fatalf("item %d: want %s, got %#v", i, w, list.Get(i).Object())
		}
	}
}

// TestCollectFoldsAliasedCapturesIntoDict checks spec.md §4.10: a sequence
// where at least one item carries an alias collects into a dict, with
// unaliased items keyed by a synthesized index.
func TestCollectFoldsAliasedCapturesIntoDict(t *testing.T) {
	main := iml.NewParselet("__main__", iml.NamedSeq(
		[]iml.ImlOp{iml.Lit("("), iml.Lit("x"), iml.Lit(")")},
		[]string{"", "name", ""},
	))
	prog := build(main)

	th := vm.NewThread(prog, []byte("(x)"), nil)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	d, ok := result.Object().(*value.Dict)
	if !ok {
		t.Fatalf("want *value.Dict, got %#v (%s)", result.Object(), result.Repr())
	}
	if s, ok := d.Get("name").Object().(value.Str); !ok || string(s) != "x" {
		t.Fatalf(`want key "name" == x, got %#v`, d.Get("name"))
	}
}

// TestCollectNarrowsToMaxSeverity checks spec.md §8's severity invariant: when
// captures carry different severities, only those at the maximum survive,
// even though every capture here is already at or above the floor.
func TestCollectNarrowsToMaxSeverity(t *testing.T) {
	pushInt := func(n int64) *vm.Builtin {
		return &vm.Builtin{Name: "pushInt", Func: func(_ *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
			return vm.Accept{Kind: vm.AcceptPush, Value: value.NewInt(n), OverrideSeverity: true, Severity: value.SeverityDefault}, vm.Reject{}
		}}
	}
	pushStr := &vm.Builtin{Name: "pushStr", Func: func(_ *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
		return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr("hi")}, vm.Reject{}
	}}

	// pushInt results override their capture severity to the default (5)
	// rather than Int's floor (1); pushStr's carries Str's floor severity
	// (10) — both at or above __main__'s own default floor (5), so
	// floor-only filtering would have kept all three captures instead of
	// narrowing to the single highest-severity one.
	main := iml.NewParselet("__main__", iml.SeqOf(
		iml.CallRef(pushInt(1)),
		iml.CallRef(pushStr),
		iml.CallRef(pushInt(2)),
	))
	prog := build(main)

	th := vm.NewThread(prog, []byte(""), nil)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Both Int captures are dominated by the single Str capture's higher
	// severity, so only it should remain — a bare Str, not a list of one,
	// matching collect's single-remaining-capture special case.
	if s, ok := result.Object().(value.Str); !ok || string(s) != "hi" {
		t.Fatalf(`want lone Str("hi") surviving max-severity narrowing, got %#v (%s)`, result.Object(), result.Repr())
	}
}

// TestBuiltinRegistryDispatch checks that a call targeting a value.Object
// the thread itself never constructs (one supplied via a Registry-style
// lookup) still dispatches correctly through Thread.invoke.
func TestBuiltinRegistryDispatch(t *testing.T) {
	reg := vm.NewRegistry()
	seen := false
	reg.Register(&vm.Builtin{
		Name:      "touch",
		Consuming: false,
		Func: func(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
			seen = true
			// A Str (floor 10) is used rather than an Int (floor 1) so the
			// result survives __main__'s default collect severity (5)
			// instead of being folded away as below-floor.
			return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr("touched")}, vm.Reject{}
		},
	})
	b, ok := reg.Lookup("touch")
	if !ok {
		t.Fatalf("lookup failed")
	}

	main := iml.NewParselet("__main__", iml.CallRef(b))
	prog := build(main)

	th := vm.NewThread(prog, []byte(""), reg)
	result, err := th.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !seen {
		t.Fatalf("registry builtin was never invoked")
	}
	if s, ok := result.Object().(value.Str); !ok || string(s) != "touched" {
		t.Fatalf(`want Str("touched"), got %#v`, result.Object())
	}
}

// TestCallStackReflectsActiveParseletChain checks that Thread.CallStack,
// queried from inside a builtin, reports every parselet call still on the
// chain, oldest first (internal/toyerr.StackTrace).
func TestCallStackReflectsActiveParseletChain(t *testing.T) {
	reg := vm.NewRegistry()
	var stack toyerr.StackTrace
	reg.Register(&vm.Builtin{
		Name: "snapshot",
		Func: func(th *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
			stack = th.CallStack()
			return vm.Accept{Kind: vm.AcceptPush, Value: value.VoidValue}, vm.Reject{}
		},
	})
	b, _ := reg.Lookup("snapshot")

	inner := iml.NewParselet("inner", iml.CallRef(b))
	main := iml.NewParselet("__main__", iml.CallParselet(inner))
	prog := build(main, inner)

	th := vm.NewThread(prog, []byte(""), reg)
	if _, err := th.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stack.Depth() != 2 {
		t.Fatalf("CallStack() depth = %d, want 2 (__main__, inner); stack=%v", stack.Depth(), stack)
	}
	if stack[0].ParseletName != "__main__" || stack[1].ParseletName != "inner" {
		t.Fatalf("CallStack() = %v, want [__main__, inner]", stack)
	}
}
