// Package toyerr formats a Tokay runtime error with source context, a
// line/column header and a caret pointing at the offending byte, built
// against reader.Offset as the position source (spec.md §2) rather than a
// separately re-lexed position.
package toyerr

import (
	"fmt"
	"strings"

	"github.com/tokay-lang/tokay/internal/reader"
)

// RuntimeError is a single runtime failure (spec.md §7: a RejectError
// reaching Thread.Run with no enclosing Alt left to catch it) carrying
// enough context — source text plus the offset the reader had reached — to
// render a human-facing message.
type RuntimeError struct {
	Message string
	Source  string
	File    string
	At      reader.Offset
	Stack   StackTrace
}

// New wraps err at offset, capturing source and file for later formatting.
// Stack is left empty; callers that track a call chain set it directly.
func New(at reader.Offset, err error, source, file string) *RuntimeError {
	return &RuntimeError{Message: err.Error(), Source: source, File: file, At: at}
}

// Error implements the error interface as spec.md §7's one-line form:
// "Line R, column C: message".
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("Line %d, column %d: %s", e.At.Row, e.At.Col, e.Message)
}

// Format renders the full caret display: a header line, the offending
// source line, a caret under the column, the message, and (if present) the
// parselet call chain that led here.
func (e *RuntimeError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.At.Row, e.At.Col)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.At.Row, e.At.Col)
	}

	if line := e.sourceLine(int(e.At.Row)); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.At.Row)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+int(e.At.Col)-1))
		writeCaret(&sb, color)
	}

	writeMessage(&sb, e.Message, color)

	if len(e.Stack) > 0 {
		sb.WriteString("\n")
		sb.WriteString(e.Stack.String())
	}

	return sb.String()
}

// FormatWithContext is Format plus contextLines of surrounding source on
// either side of the offending line. The CLI does not call it; `tokay run`
// prints the one-line Error() form.
func (e *RuntimeError) FormatWithContext(contextLines int, color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.At.Row, e.At.Col)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.At.Row, e.At.Col)
	}

	lineNum := int(e.At.Row)
	lines := e.sourceContext(lineNum, contextLines, contextLines)
	if len(lines) == 0 {
		return e.Format(color)
	}

	start := lineNum - contextLines
	if start < 1 {
		start = 1
	}

	for i, line := range lines {
		current := start + i
		lineNumStr := fmt.Sprintf("%4d | ", current)

		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")

		if current == lineNum {
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+int(e.At.Col)-1))
			writeCaret(&sb, color)
		}
	}

	sb.WriteString("\n")
	writeMessage(&sb, e.Message, color)

	if len(e.Stack) > 0 {
		sb.WriteString("\n")
		sb.WriteString(e.Stack.String())
	}

	return sb.String()
}

func (e *RuntimeError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

func (e *RuntimeError) sourceContext(lineNum, before, after int) []string {
	if e.Source == "" {
		return nil
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return nil
	}
	start := lineNum - before
	if start < 1 {
		start = 1
	}
	end := lineNum + after
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start-1 : end]
}

func writeCaret(sb *strings.Builder, color bool) {
	if color {
		sb.WriteString("\033[1;31m")
	}
	sb.WriteString("^")
	if color {
		sb.WriteString("\033[0m")
	}
	sb.WriteString("\n")
}

func writeMessage(sb *strings.Builder, msg string, color bool) {
	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(msg)
	if color {
		sb.WriteString("\033[0m")
	}
}
