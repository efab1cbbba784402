// Package builtin populates a vm.Registry with Tokay's native standard
// functions and hard-coded tokens, grounded on original_source/src/
// builtin/_std.rs and token.rs.
package builtin

import (
	"fmt"
	"strings"

	"github.com/tokay-lang/tokay/internal/value"
	"github.com/tokay-lang/tokay/internal/vm"
)

// Std returns a freshly populated registry holding every builtin this
// package defines, ready to hand to vm.NewThread.
func Std() *vm.Registry {
	r := vm.NewRegistry()
	registerStd(r)
	registerTokens(r)
	registerIter(r)
	return r
}

func registerStd(r *vm.Registry) {
	r.Register(&vm.Builtin{Name: "print", Signature: "", Func: biPrint})
	r.Register(&vm.Builtin{Name: "error", Signature: "msg collect", Func: biError})
	r.Register(&vm.Builtin{Name: "ord", Signature: "c", Func: biOrd})
	r.Register(&vm.Builtin{Name: "chr", Signature: "i", Func: biChr})
	r.Register(&vm.Builtin{Name: "ast", Signature: "emit value", Func: biAst})
	r.Register(&vm.Builtin{Name: "expect", Signature: "value msg", Func: biExpect})
}

// biPrint writes each argument space-separated to the thread's output.
// Called with no arguments it prints an empty line; it does not read the
// current capture.
func biPrint(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	if len(args) == 0 {
		fmt.Fprintln(t.Out)
		return vm.Accept{Kind: vm.AcceptPush, Value: value.VoidValue}, vm.Reject{}
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = vm.DisplayString(a)
	}
	fmt.Fprintln(t.Out, strings.Join(parts, " "))
	return vm.Accept{Kind: vm.AcceptPush, Value: value.VoidValue}, vm.Reject{}
}

// biError rejects the current attempt with a runtime error (spec.md §7).
// When its second argument is truthy it appends the fixed text
// ": (collected input)" to the message; the captured input itself is not
// included.
func biError(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	msg := vm.DisplayString(args[0])
	if len(args) > 1 && args[1].IsTrue() {
		msg += ": (collected input)"
	}
	return vm.Accept{}, vm.Reject{Kind: vm.RejectError, Err: fmt.Errorf("%s", msg)}
}

func biOrd(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	s := vm.DisplayString(args[0])
	runes := []rune(s)
	if len(runes) != 1 {
		return vm.Accept{}, vm.Reject{Kind: vm.RejectError, Err: fmt.Errorf(
			"ord() expected single character, but received string of length %d", len(runes))}
	}
	return vm.Accept{Kind: vm.AcceptPush, Value: value.NewInt(int64(runes[0]))}, vm.Reject{}
}

func biChr(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	n, ok := args[0].Object().(value.Numeric)
	if !ok {
		return vm.Accept{}, vm.Reject{Kind: vm.RejectError, Err: fmt.Errorf("chr() expected a number")}
	}
	return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(string(rune(n.AsInt().Int64())))}, vm.Reject{}
}

// biExpect rejects with an error carrying msg when value is falsy,
// otherwise passes value through unchanged — the common "require this or
// fail with a better message than a bare Reject" idiom other Tokay
// builtins are written against.
func biExpect(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	v := args[0]
	if !v.IsTrue() {
		msg := "expectation failed"
		if len(args) > 1 {
			msg = vm.DisplayString(args[1])
		}
		return vm.Accept{}, vm.Reject{Kind: vm.RejectError, Err: fmt.Errorf("%s", msg)}
	}
	return vm.Accept{Kind: vm.AcceptPush, Value: v}, vm.Reject{}
}

// biAst builds the default AST-node dict shape every `ast(emit)` call
// produces (spec.md's SUPPLEMENTED FEATURES), grounded on _std.rs's `ast`
// builtin: an "emit" tag plus either "value" (a scalar capture) or
// "children" (a list/dict capture), with no position fields since those
// require Context access this Thread-level signature doesn't expose.
func biAst(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	d := value.NewDict()
	dict := d.Object().(*value.Dict)
	dict.Set("emit", args[0])

	if len(args) > 1 {
		v := args[1]
		switch v.Object().(type) {
		case *value.List, *value.Dict:
			dict.Set("children", v)
		default:
			dict.Set("value", v)
		}
	}
	return vm.Accept{Kind: vm.AcceptPush, Value: d}, vm.Reject{}
}

// The hard-coded token builtins (Identifier/Integer/Float/Word/Whitespace)
// are registered by registerTokens in tokens.go, not here — this file only
// holds the identifier-shaped general-purpose standard functions.
