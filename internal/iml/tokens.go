package iml

import (
	"github.com/tokay-lang/tokay/internal/reader"
	"github.com/tokay-lang/tokay/internal/value"
	"github.com/tokay-lang/tokay/internal/vm"
)

// This file provides the primitive token-matcher variant set of spec.md
// §4.2: Empty, EOF, Char, BuiltinChar, Chars, BuiltinChars, Match and
// Touch. Each wraps a small vm.Builtin as a Call target, the same
// construction Lit (bootstrap.go) already uses for a plain string literal
// — these are the lower-level primitives Lit and the builtin.Std() token
// set (Identifier/Integer/Word/Whitespace) would themselves be expressed
// in terms of, were this module's (out-of-scope) surface grammar compiler
// driving IR construction instead of the Go test fixtures in this repo.

// Empty matches without consuming any input, the one nullable token
// matcher (spec.md §4.2).
func Empty() ImlOp {
	b := &vm.Builtin{Name: "Empty", Func: func(_ *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
		return vm.Accept{Kind: vm.AcceptNext}, vm.Reject{}
	}}
	return Call{Target: Value{V: value.NewRef(b)}}
}

// EOF matches only when the reader has no input left.
func EOF() ImlOp {
	b := &vm.Builtin{Name: "EOF", Func: func(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
		if !t.Reader.Eof() {
			return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
		}
		return vm.Accept{Kind: vm.AcceptNext}, vm.Reject{}
	}}
	return Call{Target: Value{V: value.NewRef(b)}}
}

// Char matches a single rune that is a member of ccl.
func Char(ccl *value.Ccl) ImlOp {
	return Call{Target: Value{V: value.NewRef(charBuiltin("Char", ccl.Test))}}
}

// BuiltinChar matches a single rune for which f returns true.
func BuiltinChar(f func(rune) bool) ImlOp {
	return Call{Target: Value{V: value.NewRef(charBuiltin("BuiltinChar", f))}}
}

// Chars matches one or more consecutive runes that are members of ccl.
func Chars(ccl *value.Ccl) ImlOp {
	return Call{Target: Value{V: value.NewRef(charsBuiltin("Chars", ccl.Test))}}
}

// BuiltinChars matches one or more consecutive runes for which f returns
// true.
func BuiltinChars(f func(rune) bool) ImlOp {
	return Call{Target: Value{V: value.NewRef(charsBuiltin("BuiltinChars", f))}}
}

// Match matches the exact literal s with spec.md §4.2's severity 5. Lit
// (bootstrap.go) implements the same match attempt but predates the
// severity-override mechanism Touch needed, so it still carries Str's own
// floor (10); Match is kept as its own builtin rather than changing Lit's
// severity out from under the fixtures already built on it.
func Match(s string) ImlOp {
	b := &vm.Builtin{Name: "match:" + s, Consuming: true, Func: func(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
		start := t.Reader.Tell()
		for _, want := range s {
			got, ok := t.Reader.Peek()
			if !ok || got != want {
				t.Reader.Reset(start)
				return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
			}
			t.Reader.Next()
		}
		return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(s), OverrideSeverity: true, Severity: value.SeverityDefault}, vm.Reject{}
	}}
	return Call{Target: Value{V: value.NewRef(b)}}
}

// Touch matches the exact literal s like Match, but its capture is silent
// (severity 0) rather than contributing to automatic AST construction —
// the form grammars use for punctuation that should never show up in the
// collected result (spec.md §4.2).
func Touch(s string) ImlOp {
	b := &vm.Builtin{Name: "touch:" + s, Consuming: true, Silent: true, Func: func(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
		start := t.Reader.Tell()
		for _, want := range s {
			got, ok := t.Reader.Peek()
			if !ok || got != want {
				t.Reader.Reset(start)
				return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
			}
			t.Reader.Next()
		}
		return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(s), OverrideSeverity: true, Severity: value.SeveritySilent}, vm.Reject{}
	}}
	return Call{Target: Value{V: value.NewRef(b)}}
}

func charBuiltin(name string, pred reader.Predicate) *vm.Builtin {
	return &vm.Builtin{Name: name, Consuming: true, Func: func(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
		ru, ok := t.Reader.Once(pred)
		if !ok {
			return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
		}
		return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(string(ru)), OverrideSeverity: true, Severity: value.SeverityDefault}, vm.Reject{}
	}}
}

func charsBuiltin(name string, pred reader.Predicate) *vm.Builtin {
	return &vm.Builtin{Name: name, Consuming: true, Func: func(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
		rng, ok := t.Reader.Span(pred)
		if !ok {
			return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
		}
		return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(t.Reader.Extract(rng)), OverrideSeverity: true, Severity: value.SeverityDefault}, vm.Reject{}
	}}
}
