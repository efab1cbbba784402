package toyerr

import (
	"fmt"
	"strings"

	"github.com/tokay-lang/tokay/internal/reader"
)

// Frame is one entry in a parselet call chain, recording which parselet
// was running and where its call started.
type Frame struct {
	ParseletName string
	At           reader.Offset
}

// String renders one frame as "name [line: R, column: C]".
func (f Frame) String() string {
	return fmt.Sprintf("%s [line: %d, column: %d]", f.ParseletName, f.At.Row, f.At.Col)
}

// StackTrace is a parselet call chain, oldest call first — the order
// Thread.CallStack (internal/vm) builds it in as it walks outward from
// __main__.
type StackTrace []Frame

// String prints the trace most-recent-call-first, one frame per line.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Depth returns the number of frames in the stack.
func (st StackTrace) Depth() int {
	return len(st)
}
