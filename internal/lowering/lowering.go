// Package lowering implements spec.md §4.6: translating a finalized IR
// tree (package iml) into the flat vm.Op bytecode a vm.Program runs,
// grounded on the emission rules original_source/src/compiler/iml/op.rs's
// `compile` method follows for each node kind.
package lowering

import (
	"github.com/tokay-lang/tokay/internal/iml"
	"github.com/tokay-lang/tokay/internal/value"
	"github.com/tokay-lang/tokay/internal/vm"
)

// emitter accumulates one parselet section's (begin/body/end) bytecode,
// tracking the owning vm.Program so Load/Call can register statics.
type emitter struct {
	prog *vm.Program
	ops  []vm.Op
}

func (e *emitter) emit(op vm.Op) int {
	e.ops = append(e.ops, op)
	return len(e.ops) - 1
}

// patchForward rewrites the A operand of the jump at idx to land exactly
// on the current end of e.ops (a forward branch over everything emitted
// since idx).
func (e *emitter) patchForward(idx int) {
	e.ops[idx].A = len(e.ops) - idx - 1
}

// Program lowers every parselet in defs into a vm.Program, with defs[0]
// becoming __main__ (spec.md §3). Finalize (package iml) must already
// have run over defs.
func Program(defs []*iml.ImlParselet) *vm.Program {
	prog := vm.NewProgram()

	// Pre-register every parselet as a static so forward/mutually
	// recursive Call targets resolve to a CallStatic before their bodies
	// are lowered.
	placeholders := map[*iml.ImlParselet]int{}
	for i, def := range defs {
		pl := &vm.Parselet{Name: def.Name}
		idx := prog.AddStatic(value.NewRef(pl))
		placeholders[def] = idx
		if i == 0 {
			prog.Statics[0] = prog.Statics[idx]
			prog.Statics[idx] = nil
		}
	}
	if len(defs) > 0 {
		placeholders[defs[0]] = 0
	}

	for _, def := range defs {
		idx := placeholders[def]
		pl := prog.Statics[idx].Object().(*vm.Parselet)
		lowerInto(prog, pl, def, placeholders)
	}

	return prog
}

func lowerInto(prog *vm.Program, pl *vm.Parselet, def *iml.ImlParselet, placeholders map[*iml.ImlParselet]int) {
	pl.Consuming = vm.Consuming{Set: def.Consuming, LeftRecursive: def.LeftRec}
	pl.Sev = def.Severity
	// Parameters occupy the first len(def.Params) local slots (bindArgs,
	// internal/vm/thread.go, writes ctx.locals[i] for signature index i);
	// any plain `def.Locals` names follow after them.
	pl.Locals = len(def.Params) + len(def.Locals)
	for _, p := range def.Params {
		defIdx := -1
		if p.Default != nil {
			e := &emitter{prog: prog}
			compile(e, p.Default, prog, placeholders)
			// A default's value is expected to be a single LoadStatic;
			// register its source value directly rather than re-running
			// bytecode for something that is, by construction, constant.
			if len(e.ops) == 1 && e.ops[0].Code == vm.OpLoadStatic {
				defIdx = e.ops[0].A
			}
		}
		pl.Signature = append(pl.Signature, vm.Param{Name: p.Name, DefaultIdx: defIdx})
	}

	if def.Begin != nil {
		e := &emitter{prog: prog}
		compile(e, def.Begin, prog, placeholders)
		pl.Begin = e.ops
	}
	{
		e := &emitter{prog: prog}
		compile(e, def.Body, prog, placeholders)
		pl.Body = e.ops
	}
	if def.End != nil {
		e := &emitter{prog: prog}
		compile(e, def.End, prog, placeholders)
		pl.End = e.ops
	}
}

// compile appends op's lowered instructions to e, consulting prog for
// static registration and placeholders for known-parselet Call targets.
func compile(e *emitter, op iml.ImlOp, prog *vm.Program, placeholders map[*iml.ImlParselet]int) {
	switch n := op.(type) {
	case nil, iml.Nop:
		// nothing to emit

	case iml.Op:
		e.emit(vm.Op{Code: n.Code, Str: n.Str})

	case iml.Load:
		compileLoad(e, n.Value, prog)

	case iml.Call:
		compileCall(e, n, prog, placeholders)

	case iml.Alt:
		compileAlt(e, n, prog, placeholders)

	case iml.Seq:
		compileSeq(e, n, prog, placeholders)

	case iml.If:
		compileIf(e, n, prog, placeholders)

	case iml.Loop:
		compileLoop(e, n, prog, placeholders)
	}
}

func compileLoad(e *emitter, v iml.ImlValue, prog *vm.Program) {
	switch val := v.(type) {
	case iml.ImlVoid:
		e.emit(vm.PushVoid())
	case iml.Value:
		switch val.V.Object().(type) {
		case value.Void:
			e.emit(vm.PushVoid())
		case value.Null:
			e.emit(vm.PushNull())
		case value.Bool:
			if val.V.IsTrue() {
				e.emit(vm.PushTrue())
			} else {
				e.emit(vm.PushFalse())
			}
		case value.Int:
			if n := val.V.Object().(value.Int); n.AsInt64() == 0 {
				e.emit(vm.Push0())
			} else if n.AsInt64() == 1 {
				e.emit(vm.Push1())
			} else {
				e.emit(vm.LoadStatic(prog.AddStatic(val.V)))
			}
		default:
			e.emit(vm.LoadStatic(prog.AddStatic(val.V)))
		}
	case iml.Variable:
		if val.Global {
			e.emit(vm.LoadGlobal(val.Slot))
		} else {
			e.emit(vm.LoadFast(val.Slot))
		}
	default:
		e.emit(vm.PushVoid())
	}
}

// compileCall emits the callee first when the target is not a known static
// parselet (popArgs pops it last, below the args), then positional args in
// order, then — if c carries any named
// args — builds their key/value pairs and folds them into a trailing Dict
// via OpMakeDict, leaving it on top of the stack for CallArgNamed/
// CallStaticArgNamed's popArgs to pick up (spec.md §4.9 Step 1). n always
// counts positional args only; the named-args dict is a separate, implicit
// extra operand the *Named opcode variants know to pop first.
func compileCall(e *emitter, c iml.Call, prog *vm.Program, placeholders map[*iml.ImlParselet]int) {
	idx, known := 0, false
	if pr, ok := c.Target.(*iml.Parselet); ok {
		idx, known = placeholders[pr.Def]
	}
	if !known {
		compileLoadTarget(e, c.Target, prog)
	}

	for _, a := range c.Args {
		compile(e, a, prog, placeholders)
	}
	n := len(c.Args)
	named := len(c.KwNames) > 0

	if named {
		for i, name := range c.KwNames {
			e.emit(vm.LoadStatic(prog.AddStatic(value.NewStr(name))))
			compile(e, c.KwArgs[i], prog, placeholders)
		}
		e.emit(vm.MakeDict(len(c.KwNames)))
	}

	if known {
		switch {
		case named:
			e.emit(vm.CallStaticArgNamed(idx, n))
		case n == 0:
			e.emit(vm.CallStatic(idx))
		default:
			e.emit(vm.CallStaticArg(idx, n))
		}
		return
	}

	switch {
	case named:
		e.emit(vm.CallArgNamed(n))
	case n == 0:
		e.emit(vm.Call())
	default:
		e.emit(vm.CallArg(n))
	}
}

func compileLoadTarget(e *emitter, v iml.ImlValue, prog *vm.Program) {
	compileLoad(e, v, prog)
}

// compileAlt follows spec.md §4.6's Frame/fuse scheme: every branch but the
// last opens its own Frame so a Reject inside it is caught right there and
// resumes at the next branch, instead of propagating further. The last
// branch opens no frame of its own: if it rejects, nothing else is left to
// try, so the Reject must propagate exactly as if this Alt were not here,
// making the whole construct fail only when every branch has.
//
// A Reject's onReject handler (package vm) already pops the frame it
// unwinds to before jumping to that frame's target; the target must
// therefore land one past this branch's own Close, not on it, or the
// branch that runs next would hit a Close meant for an already-popped
// frame and pop the wrong (enclosing) one instead. Each Frame's operand is
// patched after its Close is emitted, not before, so the reject path skips
// over it while the ordinary (no-reject) fallthrough still executes it
// exactly once.
//
// Falling off the end of a non-last branch's Close (the no-reject path)
// means that branch matched, so a Forward jump past every remaining
// branch follows it — otherwise execution would carry on straight into
// the next branch's code and run it too. The Frame's own target is
// patched to land just past that Forward (the next branch's first
// instruction), since the reject path must skip it rather than trigger
// the very jump that the success path relies on.
func compileAlt(e *emitter, n iml.Alt, prog *vm.Program, placeholders map[*iml.ImlParselet]int) {
	var skips []int

	for i, branch := range n.Branches {
		last := i == len(n.Branches)-1
		if last {
			compile(e, branch, prog, placeholders)
			break
		}

		frameIdx := e.emit(vm.Frame(0))
		compile(e, branch, prog, placeholders)

		consuming := true // conservative: always check consumed-progress
		if consuming {
			nopIdx := e.emit(vm.ForwardIfConsumed(0))
			e.emit(vm.Reset())
			e.patchForward(nopIdx)
		} else {
			e.emit(vm.ResetCapture())
		}

		e.emit(vm.Close())
		skips = append(skips, e.emit(vm.Forward(0)))
		e.ops[frameIdx].A = len(e.ops) - frameIdx - 1
	}

	for _, idx := range skips {
		e.patchForward(idx)
	}
}

// compileSeq concatenates its children in place, with no choice-point Frame
// of its own: a Reject raised by any item must propagate to whichever
// enclosing Alt already has a frame open (or out of the parselet entirely),
// not be absorbed here. When Collect is requested (an alias is present
// anywhere in the sequence) a Collect op runs immediately after the last
// item, folding every capture pushed since this parselet call began into
// one composite value (spec.md §4.10).
func compileSeq(e *emitter, n iml.Seq, prog *vm.Program, placeholders map[*iml.ImlParselet]int) {
	collect := false
	for _, a := range n.Aliases {
		if a != "" {
			collect = true
			break
		}
	}

	for i, item := range n.Items {
		compile(e, item, prog, placeholders)
		if i < len(n.Aliases) && n.Aliases[i] != "" {
			e.emit(vm.LoadStatic(prog.AddStatic(value.NewStr(n.Aliases[i]))))
			e.emit(vm.MakeAlias())
		}
	}

	if collect {
		e.emit(vm.Collect(vm.CollectCopy, int(value.SeverityDefault)))
	}
}

// compileIf emits Cond, a placeholder conditional jump, Then, an optional
// Forward over Else, and Else; the placeholder is back-patched once both
// branch lengths are known.
func compileIf(e *emitter, n iml.If, prog *vm.Program, placeholders map[*iml.ImlParselet]int) {
	compile(e, n.Cond, prog, placeholders)
	jumpIdx := e.emit(vm.ForwardIfFalse(0))

	compile(e, n.Then, prog, placeholders)

	if n.Else != nil {
		skipIdx := e.emit(vm.Forward(0))
		e.patchForward(jumpIdx)
		compile(e, n.Else, prog, placeholders)
		e.patchForward(skipIdx)
	} else {
		e.patchForward(jumpIdx)
	}
}

// compileLoop emits Body repeatedly; the VM's own Forward/Backward
// instructions implement the actual repetition by jumping back to the top
// of Body on AcceptNext and falling through to Continue on reject, rather
// than a dedicated Loop bytecode op (spec.md's Op list has no such op;
// Forward/Backward/Continue compose it).
func compileLoop(e *emitter, n iml.Loop, prog *vm.Program, placeholders map[*iml.ImlParselet]int) {
	top := len(e.ops)
	compile(e, n.Body, prog, placeholders)
	e.emit(vm.Backward(len(e.ops) - top + 1))
	e.emit(vm.Continue())
}
