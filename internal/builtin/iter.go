package builtin

import (
	"fmt"

	"github.com/tokay-lang/tokay/internal/value"
	"github.com/tokay-lang/tokay/internal/vm"
)

// iterable is implemented by every value kind that already knows how to
// produce a value.Iterator over itself (List, Dict); checked first by
// biIter so those kinds never pay for a generic dispatch.
type iterable interface {
	Iter() value.Iterator
}

func registerIter(r *vm.Registry) {
	r.Register(&vm.Builtin{Name: "iter", Signature: "value", Func: biIter})
	r.Register(&vm.Builtin{Name: "next", Signature: "iter", Func: biNext})
}

// biIter implements the `iter(value)` dispatch of spec.md §4.11:
// return value unchanged if it's already an Iterator, use its own Iter()
// if it has one (List, Dict), fall back to a rune-indexed method-iter for
// a Str, or else wrap it in a method-iter that calls value as a callable
// with a running integer index until it returns Void — mirroring how
// original_source's iterator protocol treats an arbitrary callable object
// as a "method-iter" source.
func biIter(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	v := args[0]
	obj := v.Object()

	if it, ok := obj.(value.Iterator); ok {
		return vm.Accept{Kind: vm.AcceptPush, Value: value.NewRef(it)}, vm.Reject{}
	}

	if it, ok := obj.(iterable); ok {
		return vm.Accept{Kind: vm.AcceptPush, Value: value.NewRef(it.Iter())}, vm.Reject{}
	}

	if s, ok := obj.(value.Str); ok {
		runes := []rune(string(s))
		it := value.NewMethodIter(func(i int64) (*value.RefValue, bool) {
			if i < 0 || int(i) >= len(runes) {
				return nil, false
			}
			return value.NewStr(string(runes[i])), true
		})
		return vm.Accept{Kind: vm.AcceptPush, Value: value.NewRef(it)}, vm.Reject{}
	}

	if !obj.IsCallable() {
		return vm.Accept{}, vm.Reject{Kind: vm.RejectError, Err: fmt.Errorf("iter() cannot iterate a %s", obj.TypeName())}
	}

	it := value.NewMethodIter(func(i int64) (*value.RefValue, bool) {
		accept, reject := t.Invoke(obj, []*value.RefValue{value.NewInt(i)}, nil)
		if reject.Kind != 0 || reject.Err != nil || accept.Value == nil {
			return nil, false
		}
		if _, isVoid := accept.Value.Object().(value.Void); isVoid {
			return nil, false
		}
		return accept.Value, true
	})
	return vm.Accept{Kind: vm.AcceptPush, Value: value.NewRef(it)}, vm.Reject{}
}

// biNext advances an Iterator produced by iter() and pushes its next value,
// or Void once exhausted.
func biNext(t *vm.Thread, args []*value.RefValue, _ *value.Dict) (vm.Accept, vm.Reject) {
	it, ok := args[0].Object().(value.Iterator)
	if !ok {
		return vm.Accept{}, vm.Reject{Kind: vm.RejectError, Err: fmt.Errorf("next() expected an iterator")}
	}
	v, ok := it.Next()
	if !ok {
		return vm.Accept{Kind: vm.AcceptPush, Value: value.VoidValue}, vm.Reject{}
	}
	return vm.Accept{Kind: vm.AcceptPush, Value: v}, vm.Reject{}
}
