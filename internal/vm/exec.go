package vm

import (
	"fmt"

	"github.com/tokay-lang/tokay/internal/reader"
	"github.com/tokay-lang/tokay/internal/value"
)

// frameMark is a local choice point opened by OpFrame and discarded by
// OpClose, used to implement ordered-choice alternation: a Reject inside
// an open frame jumps to the frame's fuse target instead of propagating,
// after restoring the stack, captures, and reader to where the frame was
// opened.
type frameMark struct {
	stackLen    int
	capturesLen int
	readerAt    reader.Offset
	target      int
}

// exec runs one flat op sequence (a parselet's Begin, Body, or End) to
// completion, returning the Accept/Reject it resolves to. Forward/Backward
// jumps are relative to the instruction following the jump (ip is advanced
// before a jump's delta is applied, so a delta of 0 falls straight through).
//
// A Reject raised while one or more OpFrame choice points are open does
// not propagate: it restores the stack, captures, and reader to where the
// innermost open frame was opened and resumes execution at that frame's
// fuse target, implementing ordered-choice alternation. Only a Reject
// with no open frame left actually returns.
func (t *Thread) exec(ctx *Context, ops []Op) (Accept, Reject) {
	var frames []frameMark
	ip := 0

	// onReject adjusts ip/frames in place and reports whether the caller
	// should keep looping (true) or return the reject outright (false).
	onReject := func(r Reject) (Reject, bool) {
		if len(frames) == 0 {
			return r, false
		}
		f := frames[len(frames)-1]
		frames = frames[:len(frames)-1]
		t.Stack = t.Stack[:f.stackLen]
		t.Captures = t.Captures[:f.capturesLen]
		t.Reader.Reset(f.readerAt)
		ip = f.target
		return Reject{}, true
	}

	for ip < len(ops) {
		op := ops[ip]
		ip++

		switch op.Code {
		case OpLoadStatic:
			ctx.push(t.Program.Statics[op.A])
		case OpPushVoid:
			ctx.push(value.VoidValue)
		case OpPushNull:
			ctx.push(value.NullValue)
		case OpPushTrue:
			ctx.push(value.TrueValue)
		case OpPushFalse:
			ctx.push(value.FalseValue)
		case OpPush0:
			ctx.push(value.NewInt(0))
		case OpPush1:
			ctx.push(value.NewInt(1))
		case OpLoadFast:
			ctx.push(ctx.locals[op.A])
		case OpStoreFast:
			ctx.locals[op.A] = ctx.pop()
		case OpStoreFastHold:
			ctx.locals[op.A] = ctx.top()
		case OpLoadGlobal:
			ctx.push(t.Globals[op.A])
		case OpStoreGlobal:
			t.Globals[op.A] = ctx.pop()
		case OpCopy:
			n := len(t.Stack)
			idx := n - 1 - op.A
			if idx >= ctx.stackStart {
				ctx.push(t.Stack[idx])
			} else {
				ctx.push(value.VoidValue)
			}
		case OpDrop:
			ctx.pop()
		case OpRot2:
			n := len(t.Stack)
			if n-2 >= ctx.stackStart {
				t.Stack[n-1], t.Stack[n-2] = t.Stack[n-2], t.Stack[n-1]
			}
		case OpDup:
			ctx.push(ctx.top())

		case OpLoadFastCapture:
			ctx.push(captureValueAt(ctx, op.A))
		case OpLoadCapture:
			idx := int(mustInt(ctx.pop()))
			ctx.push(captureValueAt(ctx, idx))
		case OpStoreFastCapture:
			storeCaptureAt(ctx, op.A, ctx.pop(), false)
		case OpStoreCapture:
			v := ctx.pop()
			idx := int(mustInt(ctx.pop()))
			storeCaptureAt(ctx, idx, v, false)
		case OpStoreFastCaptureHold:
			storeCaptureAt(ctx, op.A, ctx.top(), false)
		case OpStoreCaptureHold:
			v := ctx.top()
			idx := int(mustInt(ctx.pop()))
			storeCaptureAt(ctx, idx, v, false)
		case OpMakeAlias:
			name := string(asStr(ctx.pop()))
			if caps := ctx.captures(); len(caps) > 0 {
				caps[len(caps)-1].SetAlias(name)
			}

		case OpBinary:
			b, a := ctx.pop(), ctx.pop()
			res, err := binaryOp(op.Str, a, b)
			if err != nil {
				if rr, cont := onReject(Reject{Kind: RejectError, Err: err}); cont {
				continue
			} else {
				return Accept{}, rr
			}
			}
			ctx.push(res)
		case OpUnary:
			a := ctx.pop()
			res, err := unaryOp(op.Str, a)
			if err != nil {
				if rr, cont := onReject(Reject{Kind: RejectError, Err: err}); cont {
				continue
			} else {
				return Accept{}, rr
			}
			}
			ctx.push(res)

		case OpForward:
			ip += op.A
		case OpBackward:
			ip -= op.A
		case OpForwardIfTrue:
			if ctx.pop().IsTrue() {
				ip += op.A
			}
		case OpForwardIfFalse:
			if !ctx.pop().IsTrue() {
				ip += op.A
			}
		case OpForwardIfConsumed:
			base := ctx.readerStart
			if len(frames) > 0 {
				base = frames[len(frames)-1].readerAt
			}
			if t.Reader.Tell().ByteOffset > base.ByteOffset {
				ip += op.A
			}
		case OpForwardIfNotVoid:
			if _, isVoid := ctx.top().Object().(value.Void); !isVoid {
				ip += op.A
			}

		case OpFrame:
			frames = append(frames, frameMark{
				stackLen:    len(t.Stack),
				capturesLen: len(t.Captures),
				readerAt:    t.Reader.Tell(),
				target:      ip + op.A,
			})
		case OpFuse:
			if len(frames) > 0 {
				frames[len(frames)-1].target = ip + op.A
			}
		case OpReset:
			if len(frames) > 0 {
				f := frames[len(frames)-1]
				t.Stack = t.Stack[:f.stackLen]
			}
		case OpResetCapture:
			if len(frames) > 0 {
				f := frames[len(frames)-1]
				t.Captures = t.Captures[:f.capturesLen]
			}
		case OpCollect:
			v := collectFlags(ctx, op.A, value.Severity(op.B))
			ctx.push(v)
		case OpClose:
			if len(frames) > 0 {
				frames = frames[:len(frames)-1]
			}

		case OpCall, OpCallArg, OpCallArgNamed:
			nargs, named := callArgs(op)
			args, kwargs := ctx.popArgs(nargs, named)
			callee := ctx.pop()
			a, r := t.invoke(callee.Object(), args, kwargs)
			if r.Kind != 0 || r.Err != nil {
				if rr, cont := onReject(r); cont {
				continue
			} else {
				return Accept{}, rr
			}
			}
			v := acceptToValue(a)
			ctx.push(v)
			ctx.pushCapture(acceptCapture(a, v))
		case OpCallStatic, OpCallStaticArg, OpCallStaticArgNamed:
			idx, nargs, named := callStaticArgs(op)
			args, kwargs := ctx.popArgs(nargs, named)
			callee := t.Program.Statics[idx]
			a, r := t.invoke(callee.Object(), args, kwargs)
			if r.Kind != 0 || r.Err != nil {
				if rr, cont := onReject(r); cont {
				continue
			} else {
				return Accept{}, rr
			}
			}
			v := acceptToValue(a)
			ctx.push(v)
			ctx.pushCapture(acceptCapture(a, v))

		case OpAccept:
			return Accept{Kind: AcceptReturn, Value: ctx.pop()}, Reject{}
		case OpPush:
			return Accept{Kind: AcceptPush, Value: ctx.pop()}, Reject{}
		case OpRepeat:
			return Accept{Kind: AcceptRepeat}, Reject{}
		case OpBreak:
			return Accept{Kind: AcceptHold}, Reject{}
		case OpContinue:
			return Accept{Kind: AcceptNext}, Reject{}
		case OpExit:
			return Accept{Kind: AcceptReturn, Value: ctx.pop()}, Reject{}
		case OpReject:
			if rr, cont := onReject(Reject{Kind: RejectNext}); cont {
				continue
			} else {
				return Accept{}, rr
			}
		case OpNext:
			if rr, cont := onReject(Reject{Kind: RejectSkip}); cont {
				continue
			} else {
				return Accept{}, rr
			}
		case OpLoadAccept:
			ctx.push(value.NewStr("accept"))
		case OpLoadBreak:
			ctx.push(value.NewStr("break"))
		case OpLoadExit:
			ctx.push(value.NewStr("exit"))
		case OpLoadPush:
			ctx.push(value.NewStr("push"))
		case OpLoadRepeat:
			ctx.push(value.NewStr("repeat"))
		case OpError:
			msg := op.Str
			if msg == "" {
				msg = displayString(ctx.pop())
			}
			if rr, cont := onReject(Reject{Kind: RejectError, Err: fmt.Errorf("%s", msg)}); cont {
				continue
			} else {
				return Accept{}, rr
			}
		case OpOffset:
			o := t.Program.Offsets[op.A]
			ctx.sourceOffset = o

		case OpMakeList:
			items := make([]*value.RefValue, op.A)
			for i := op.A - 1; i >= 0; i-- {
				items[i] = ctx.pop()
			}
			ctx.push(value.NewList(items))
		case OpMakeDict:
			d := value.NewDict()
			dict := d.Object().(*value.Dict)
			pairs := make([][2]*value.RefValue, op.A)
			for i := op.A - 1; i >= 0; i-- {
				v := ctx.pop()
				k := ctx.pop()
				pairs[i] = [2]*value.RefValue{k, v}
			}
			for _, kv := range pairs {
				dict.Set(string(asStr(kv[0])), kv[1])
			}
			ctx.push(d)
		case OpLoadAttr:
			name := string(asStr(ctx.pop()))
			obj := ctx.pop()
			if d, ok := obj.Object().(*value.Dict); ok {
				if v := d.Get(name); v != nil {
					ctx.push(v)
					break
				}
			}
			ctx.push(value.VoidValue)
		case OpLoadIndex:
			idx := ctx.pop()
			obj := ctx.pop()
			ctx.push(indexGet(obj, idx))
		case OpStoreIndex:
			v := ctx.pop()
			idx := ctx.pop()
			obj := ctx.pop()
			indexSet(obj, idx, v)
		case OpStoreIndexHold:
			v := ctx.top()
			idx := ctx.pop()
			obj := ctx.pop()
			indexSet(obj, idx, v)

		default:
			if rr, cont := onReject(Reject{Kind: RejectError, Err: fmt.Errorf("unimplemented op %s", op.Code)}); cont {
				continue
			} else {
				return Accept{}, rr
			}
		}
	}
	return Accept{Kind: AcceptNext}, Reject{}
}

func callArgs(op Op) (nargs int, named bool) {
	switch op.Code {
	case OpCallArg:
		return op.A, false
	case OpCallArgNamed:
		return op.A, true
	default:
		return 0, false
	}
}

func callStaticArgs(op Op) (idx, nargs int, named bool) {
	switch op.Code {
	case OpCallStatic:
		return op.A, 0, false
	case OpCallStaticArg:
		return op.A, op.B, false
	case OpCallStaticArgNamed:
		return op.A, op.B, true
	default:
		return op.A, 0, false
	}
}

func (c *Context) popArgs(n int, named bool) ([]*value.RefValue, *value.Dict) {
	var kwargs *value.Dict
	if named {
		top := c.pop()
		if d, ok := top.Object().(*value.Dict); ok {
			kwargs = d
		}
	}
	args := make([]*value.RefValue, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = c.pop()
	}
	return args, kwargs
}

func acceptToValue(a Accept) *value.RefValue {
	if a.Value != nil {
		return a.Value
	}
	return value.VoidValue
}

// acceptCapture builds the capture a successful call pushes, honoring an
// Accept's severity override (Touch(s)'s silent match, spec.md §4.2) over
// v's own type-floor severity.
func acceptCapture(a Accept, v *value.RefValue) *Capture {
	cap := ValueCapture(v)
	if a.OverrideSeverity {
		cap.SetSeverity(a.Severity)
	}
	return cap
}

func captureValueAt(ctx *Context, i int) *value.RefValue {
	caps := ctx.captures()
	idx := i - 1 // $1 is index 0
	if idx < 0 || idx >= len(caps) {
		return value.VoidValue
	}
	return caps[idx].Value(ctx.extract)
}

func storeCaptureAt(ctx *Context, i int, v *value.RefValue, _ bool) {
	caps := ctx.thread.Captures
	idx := ctx.captureStart + i - 1
	for idx >= len(caps) {
		caps = append(caps, EmptyCapture())
	}
	caps[idx] = ValueCapture(v)
	ctx.thread.Captures = caps
}

func mustInt(v *value.RefValue) int64 {
	if n, ok := v.Object().(value.Numeric); ok {
		return n.AsInt().Int64()
	}
	return 0
}

// DisplayString renders v for human-facing output (print, error messages):
// a Str shows its raw content, everything else falls back to Repr.
func DisplayString(v *value.RefValue) string {
	if s, ok := v.Object().(value.Str); ok {
		return string(s)
	}
	return v.Repr()
}

func displayString(v *value.RefValue) string { return DisplayString(v) }

func asStr(v *value.RefValue) value.Str {
	if s, ok := v.Object().(value.Str); ok {
		return s
	}
	return value.Str(v.Repr())
}

func indexGet(obj, idx *value.RefValue) *value.RefValue {
	switch o := obj.Object().(type) {
	case *value.List:
		if n, ok := idx.Object().(value.Numeric); ok {
			if v := o.Get(int(n.AsInt().Int64())); v != nil {
				return v
			}
		}
	case *value.Dict:
		if v := o.Get(string(asStr(idx))); v != nil {
			return v
		}
	}
	return value.VoidValue
}

func indexSet(obj, idx, v *value.RefValue) {
	switch o := obj.Object().(type) {
	case *value.List:
		if n, ok := idx.Object().(value.Numeric); ok {
			o.Set(int(n.AsInt().Int64()), v)
		}
	case *value.Dict:
		o.Set(string(asStr(idx)), v)
	}
}
