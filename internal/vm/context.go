package vm

import (
	"github.com/tokay-lang/tokay/internal/reader"
	"github.com/tokay-lang/tokay/internal/value"
)

// Context is one activation record on the call stack (spec.md §3): the
// window a running parselet sees onto the shared Thread-wide value stack
// and capture stack, plus the reader position it started from.
type Context struct {
	thread       *Thread
	parselet     *Parselet
	stackStart   int
	captureStart int
	readerStart  reader.Offset
	sourceOffset reader.Offset
	hold         bool
	locals       []*value.RefValue
	depth        int
}

func newContext(t *Thread, pl *Parselet, depth int) *Context {
	return &Context{
		thread:       t,
		parselet:     pl,
		stackStart:   len(t.Stack),
		captureStart: len(t.Captures),
		readerStart:  t.Reader.Tell(),
		sourceOffset: t.Reader.Tell(),
		locals:       make([]*value.RefValue, pl.Locals),
		depth:        depth,
	}
}

// push/pop operate Thread's shared value stack; keeping them as Context
// methods means op handlers never touch Thread.Stack directly and so
// can't reach below this frame's stackStart.
func (c *Context) push(v *value.RefValue) {
	c.thread.Stack = append(c.thread.Stack, v)
}

func (c *Context) pop() *value.RefValue {
	n := len(c.thread.Stack)
	if n <= c.stackStart {
		return value.VoidValue
	}
	v := c.thread.Stack[n-1]
	c.thread.Stack = c.thread.Stack[:n-1]
	return v
}

func (c *Context) top() *value.RefValue {
	n := len(c.thread.Stack)
	if n <= c.stackStart {
		return value.VoidValue
	}
	return c.thread.Stack[n-1]
}

func (c *Context) pushCapture(cap *Capture) {
	c.thread.Captures = append(c.thread.Captures, cap)
}

// resetCaptures truncates this frame's capture window back to empty,
// as ResetCapture does when an alternative is abandoned (spec.md §4.3).
func (c *Context) resetCaptures() {
	c.thread.Captures = c.thread.Captures[:c.captureStart]
}

// resetStack discards any values pushed since the frame started, as Reset
// does on a failed alternative.
func (c *Context) resetStack() {
	c.thread.Stack = c.thread.Stack[:c.stackStart]
}

// captures returns this frame's own capture window (index 0 == $1).
func (c *Context) captures() []*Capture {
	return c.thread.Captures[c.captureStart:]
}

func (c *Context) extract(r reader.Range) string {
	return c.thread.Reader.Extract(r)
}
