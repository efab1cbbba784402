package builtin

import (
	"unicode"

	"github.com/tokay-lang/tokay/internal/value"
	"github.com/tokay-lang/tokay/internal/vm"
)

// registerTokens adds the hard-coded tokens every Tokay grammar can call by
// name without importing anything, grounded on original_source/src/builtin/
// token.rs. Each is a plain vm.Builtin rather than a dedicated value kind,
// since a token match is just a native parselet in this VM (spec.md §4.4
// treats BuiltinChar/BuiltinChars/Match uniformly as native calls).
func registerTokens(r *vm.Registry) {
	r.Register(&vm.Builtin{Name: "Identifier", Consuming: true, Func: biIdentifier})
	r.Register(&vm.Builtin{Name: "Integer", Consuming: true, Func: biInteger})
	r.Register(&vm.Builtin{Name: "Float", Consuming: true, Func: biFloat})
	r.Register(&vm.Builtin{Name: "Word", Signature: "min max", Consuming: true, Func: biWord})
	r.Register(&vm.Builtin{Name: "Whitespace", Consuming: true, Func: biWhitespace})
}

// biIdentifier matches a C-style identifier: a leading letter or underscore
// followed by any run of letters, digits or underscores.
func biIdentifier(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	start := t.Reader.Tell()
	ch, ok := t.Reader.Peek()
	if !ok || (!unicode.IsLetter(ch) && ch != '_') {
		return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
	}
	t.Reader.Next()

	for {
		ch, ok := t.Reader.Peek()
		if !ok || (!unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_') {
			break
		}
		t.Reader.Next()
	}

	text := t.Reader.Extract(t.Reader.CaptureFrom(start))
	return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(text)}, vm.Reject{}
}

// biInteger matches an optionally-signed run of decimal digits and
// evaluates it directly to an Int, matching token.rs's Integer builtin
// (which folds the sign and digits into the pushed value rather than
// leaving the sign character as part of the captured range).
func biInteger(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	start := t.Reader.Tell()
	neg := false
	if ch, ok := t.Reader.Peek(); ok && (ch == '-' || ch == '+') {
		neg = ch == '-'
		t.Reader.Next()
	}

	digitsStart := t.Reader.Tell()
	var n int64
	for {
		ch, ok := t.Reader.Peek()
		if !ok || ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int64(ch-'0')
		t.Reader.Next()
	}

	if t.Reader.Tell().ByteOffset == digitsStart.ByteOffset {
		t.Reader.Reset(start)
		return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
	}
	if neg {
		n = -n
	}
	return vm.Accept{Kind: vm.AcceptPush, Value: value.NewInt(n)}, vm.Reject{}
}

// biFloat matches digits, a decimal point, and more digits — at least one
// digit must appear on one side of the point — and pushes the raw matched
// text as a Str rather than evaluating it into a value.Float.
func biFloat(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	start := t.Reader.Tell()

	intPart, _ := t.Reader.Span(isDigit)
	sawInt := intPart.Len() > 0

	ch, ok := t.Reader.Peek()
	if !ok || ch != '.' {
		t.Reader.Reset(start)
		return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
	}
	t.Reader.Next()

	fracPart, _ := t.Reader.Span(isDigit)
	sawFrac := fracPart.Len() > 0

	if !sawInt && !sawFrac {
		t.Reader.Reset(start)
		return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
	}

	rng := t.Reader.CaptureFrom(start)
	return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(t.Reader.Extract(rng))}, vm.Reject{}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// biWord matches a maximal run of alphabetic runes, optionally bounded by
// a min/max length (either argument may be omitted, matching token.rs's
// `min max` signature where both parameters default to unset).
func biWord(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	rng, ok := t.Reader.Span(unicode.IsLetter)
	if !ok {
		return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
	}
	count := rng.Len()

	if len(args) > 0 && args[0] != nil {
		if min, ok := args[0].Object().(value.Numeric); ok && count < uint64(min.AsInt().Int64()) {
			t.Reader.Reset(rng.Start)
			return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
		}
	}
	if len(args) > 1 && args[1] != nil {
		if max, ok := args[1].Object().(value.Numeric); ok && count > uint64(max.AsInt().Int64()) {
			t.Reader.Reset(rng.Start)
			return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
		}
	}

	return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(t.Reader.Extract(rng))}, vm.Reject{}
}

// biWhitespace matches a maximal run of runes for which unicode.IsSpace
// holds (space, tab, newline, carriage return and the rest). Unlike the
// other tokens this one is typically called from a `_` auto-whitespace hook
// rather than directly in user grammars, but it is registered the same way.
func biWhitespace(t *vm.Thread, _ []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	rng, ok := t.Reader.Span(unicode.IsSpace)
	if !ok {
		return vm.Accept{}, vm.Reject{Kind: vm.RejectNext}
	}
	return vm.Accept{Kind: vm.AcceptPush, Value: value.NewStr(t.Reader.Extract(rng))}, vm.Reject{}
}
