package vm

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tokay-lang/tokay/internal/reader"
	"github.com/tokay-lang/tokay/internal/toyerr"
	"github.com/tokay-lang/tokay/internal/value"
)

// Debug verbosity levels, threaded in from --debug/TOKAY_DEBUG
// (SPEC_FULL.md §1.1). debugf below is a small leveled stdlib-log wrapper
// for them rather than a structured logging dependency; no VM code path
// calls it, so DebugLevel produces no trace output.
const (
	DebugOff = iota
	DebugTrace
	DebugVerbose
)

// Thread is a single run of a Program over one input (spec.md §3): the
// shared value stack, capture stack, globals, and packrat memo table that
// every Context (call frame) on the call chain reads and writes.
type Thread struct {
	Program    *Program
	Reader     *reader.Reader
	Stack      []*value.RefValue
	Captures   []*Capture
	Globals    []*value.RefValue
	Builtins   *Registry
	DebugLevel int
	Inspect    string
	Out        io.Writer
	Log        *log.Logger

	memo   map[memoKey]*memoEntry
	depth  int
	frames []toyerr.Frame
}

// NewThread prepares a Thread to run prog over src. Builtins may be nil:
// the call opcodes dispatch on the callee value itself and never consult
// the registry.
func NewThread(prog *Program, src []byte, builtins *Registry) *Thread {
	return &Thread{
		Program:  prog,
		Reader:   reader.New(src),
		Globals:  make([]*value.RefValue, prog.Globals),
		Builtins: builtins,
		Out:      os.Stdout,
		Log:      log.New(os.Stderr, "tokay: ", 0),
		memo:     make(map[memoKey]*memoEntry),
	}
}

func (t *Thread) debugf(level int, format string, args ...interface{}) {
	if t.DebugLevel < level {
		return
	}
	t.Log.Printf(format, args...)
}

// Run executes the program's main parselet (static index 0) against the
// whole input, implementing the main-loop multi-iteration accumulator of
// spec.md §4.9 step 5: __main__ is re-run from wherever the previous
// iteration left the reader until either the input is exhausted or an
// iteration makes no progress, collecting every accepted result into a
// list (or returning the sole result directly when only one iteration
// ran).
func (t *Thread) Run() (*value.RefValue, error) {
	main := t.Program.Main()
	if main == nil {
		return value.VoidValue, fmt.Errorf("tokay: program has no __main__ parselet")
	}

	var results []*value.RefValue
	for {
		before := t.Reader.Tell()
		accept, reject := t.call(main, nil, nil)
		if reject.Kind != 0 || reject.Err != nil {
			if len(results) == 0 {
				if reject.Err != nil {
					return value.VoidValue, toyerr.New(before, reject.Err, t.Reader.Source(), "")
				}
				return value.VoidValue, toyerr.New(before, fmt.Errorf("no match"), t.Reader.Source(), "")
			}
			break
		}

		if accept.Value != nil {
			results = append(results, accept.Value)
		}

		after := t.Reader.Tell()
		if t.Reader.Eof() || after.ByteOffset <= before.ByteOffset {
			break
		}
	}

	switch len(results) {
	case 0:
		return value.VoidValue, nil
	case 1:
		return results[0], nil
	default:
		return value.NewList(results), nil
	}
}

// CallStack returns a snapshot of the currently active parselet call chain,
// oldest call first. Meant to be read from inside a Builtin or right after
// Run returns an error, to attach to a toyerr.RuntimeError for display.
func (t *Thread) CallStack() toyerr.StackTrace {
	st := make(toyerr.StackTrace, len(t.frames))
	copy(st, t.frames)
	return st
}

// call runs pl as a nested parselet invocation: binds args, consults and
// updates the memo table, and — for a left-recursive consuming parselet —
// drives the grow-the-seed fixed-point loop of spec.md §4.9.
func (t *Thread) call(pl *Parselet, args []*value.RefValue, kwargs *value.Dict) (Accept, Reject) {
	t.depth++
	start := t.Reader.Tell()
	t.frames = append(t.frames, toyerr.Frame{ParseletName: pl.Name, At: start})
	defer func() {
		t.depth--
		t.frames = t.frames[:len(t.frames)-1]
	}()

	key := memoKey{byteOffset: int(start.ByteOffset), parselet: t.staticIndex(pl)}

	if pl.Consuming.Set {
		if e, ok := t.memo[key]; ok {
			t.Reader.Reset(reader.Offset{ByteOffset: uint64(e.endOffset)})
			if e.isReject {
				return Accept{}, e.reject
			}
			return e.accept, Reject{}
		}
	}

	if pl.Consuming.Set && pl.Consuming.LeftRecursive {
		return t.callLeftRecursive(pl, args, kwargs, key, start)
	}

	accept, reject := t.runOnce(pl, args, kwargs)
	if pl.Consuming.Set {
		t.memoize(key, accept, reject)
	}
	return accept, reject
}

// callLeftRecursive implements the seeded fixed-point loop: seed the memo
// with an immediate reject so a recursive call to pl at the same offset
// fails fast, run the body, and if it grew the match past the previous
// best, re-seed with that result and run again. Repeat until a run fails
// to consume further input, then return the best result found.
func (t *Thread) callLeftRecursive(pl *Parselet, args []*value.RefValue, kwargs *value.Dict, key memoKey, start reader.Offset) (Accept, Reject) {
	t.memoize(key, Accept{}, Reject{Kind: RejectNext})

	var best Accept
	var bestReject Reject
	bestEnd := start
	matched := false

	for {
		t.Reader.Reset(start)
		accept, reject := t.runOnce(pl, args, kwargs)
		if reject.Kind != 0 || reject.Err != nil {
			if !matched {
				bestReject = reject
			}
			break
		}
		end := t.Reader.Tell()
		if matched && end.ByteOffset <= bestEnd.ByteOffset {
			break
		}
		matched = true
		best, bestEnd = accept, end
		t.memoize(key, best, Reject{})
	}

	t.Reader.Reset(bestEnd)
	if !matched {
		t.memoize(key, Accept{}, bestReject)
		return Accept{}, bestReject
	}
	return best, Reject{}
}

func (t *Thread) memoize(key memoKey, a Accept, r Reject) {
	t.memo[key] = &memoEntry{
		accept:    a,
		reject:    r,
		isReject:  r.Kind != 0 || r.Err != nil,
		endOffset: int(t.Reader.Tell().ByteOffset),
	}
}

// runOnce executes Begin, Body, and (on accept) End once, with no
// left-recursion handling of its own.
func (t *Thread) runOnce(pl *Parselet, args []*value.RefValue, kwargs *value.Dict) (Accept, Reject) {
	ctx := newContext(t, pl, t.depth)
	if err := bindArgs(ctx, t, pl, args, kwargs); err != nil {
		return Accept{}, Reject{Kind: RejectError, Err: err}
	}

	if len(pl.Begin) > 0 {
		if _, reject := t.exec(ctx, pl.Begin); reject.Kind != 0 || reject.Err != nil {
			ctx.resetStack()
			ctx.resetCaptures()
			return Accept{}, reject
		}
	}

	accept, reject := t.exec(ctx, pl.Body)
	if reject.Kind != 0 || reject.Err != nil {
		ctx.resetStack()
		ctx.resetCaptures()
		return Accept{}, reject
	}

	if len(pl.End) > 0 {
		if a, r := t.exec(ctx, pl.End); r.Kind != 0 || r.Err != nil {
			ctx.resetStack()
			ctx.resetCaptures()
			return Accept{}, r
		} else if a.Kind != AcceptNext {
			accept = a
		}
	}

	if accept.Value == nil {
		accept.Value = collect(ctx, pl)
	}

	ctx.resetCaptures()
	return accept, Reject{}
}

// bindArgs implements spec.md §4.9 Step 1: positional args fill the first
// len(args) parameter slots in order, named args (kwargs) fill any slot
// still empty by parameter name, a parameter's default (a static index)
// fills a slot neither reached, and any slot still empty after all of that
// is a required-parameter error. The non-main too-many-positional-args
// check and the unconsumed-named-args check are both spec-mandated hard
// errors rather than silent truncation.
func bindArgs(ctx *Context, t *Thread, pl *Parselet, args []*value.RefValue, kwargs *value.Dict) error {
	for i := range ctx.locals {
		ctx.locals[i] = value.VoidValue
	}

	isMain := pl == t.Program.Main()
	if !isMain && len(args) > len(pl.Signature) {
		return fmt.Errorf("Too many parameters")
	}

	filled := make([]bool, len(ctx.locals))
	for i, a := range args {
		if i >= len(ctx.locals) {
			break
		}
		if a != nil {
			ctx.locals[i] = a
			filled[i] = true
		}
	}

	var used map[string]bool
	if kwargs != nil {
		used = make(map[string]bool, kwargs.Len())
	}
	for i, p := range pl.Signature {
		if i >= len(ctx.locals) || filled[i] {
			continue
		}
		if kwargs != nil && p.Name != "" {
			if v := kwargs.Get(p.Name); v != nil {
				ctx.locals[i] = v
				filled[i] = true
				used[p.Name] = true
				continue
			}
		}
		if p.DefaultIdx >= 0 && p.DefaultIdx < len(t.Program.Statics) {
			ctx.locals[i] = t.Program.Statics[p.DefaultIdx]
			filled[i] = true
			continue
		}
		return fmt.Errorf("Parameter '%s' required", p.Name)
	}

	if kwargs != nil {
		for _, k := range kwargs.Keys() {
			if !used[k] {
				return fmt.Errorf("Named argument '%s' not used", k)
			}
		}
	}

	return nil
}

func (t *Thread) staticIndex(pl *Parselet) int {
	for i, s := range t.Program.Statics {
		if s != nil {
			if p, ok := s.Object().(*Parselet); ok && p == pl {
				return i
			}
		}
	}
	return -1
}
