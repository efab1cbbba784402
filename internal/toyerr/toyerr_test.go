package toyerr_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tokay-lang/tokay/internal/reader"
	"github.com/tokay-lang/tokay/internal/toyerr"
)

func TestRuntimeErrorOneLine(t *testing.T) {
	at := reader.Offset{Row: 3, Col: 7}
	err := toyerr.New(at, errors.New("unexpected end of input"), "a\nb\nc", "")

	want := "Line 3, column 7: unexpected end of input"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestRuntimeErrorFormatPointsCaretAtColumn(t *testing.T) {
	src := "x := 1 +\n"
	at := reader.Offset{Row: 1, Col: 9}
	err := toyerr.New(at, errors.New("expected expression"), src, "sample.tok")

	out := err.Format(false)
	lines := strings.Split(out, "\n")

	var sourceIdx, caretIdx int
	for i, l := range lines {
		if strings.Contains(l, "x := 1 +") {
			sourceIdx = i
		}
		if strings.TrimSpace(l) == "^" {
			caretIdx = i
		}
	}
	if caretIdx != sourceIdx+1 {
		t.Fatalf("caret line (%d) should directly follow the source line (%d):\n%s", caretIdx, sourceIdx, out)
	}
	if !strings.Contains(out, "sample.tok") {
		t.Fatalf("Format() should mention the file name, got:\n%s", out)
	}
}

func TestRuntimeErrorFormatWithContextShowsSurroundingLines(t *testing.T) {
	src := "one\ntwo\nthree\nfour\nfive"
	at := reader.Offset{Row: 3, Col: 1}
	err := toyerr.New(at, errors.New("bad line"), src, "")

	out := err.FormatWithContext(1, false)
	for _, want := range []string{"two", "three", "four"} {
		if !strings.Contains(out, want) {
			t.Fatalf("FormatWithContext(1, false) missing context line %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "one") || strings.Contains(out, "five") {
		t.Fatalf("FormatWithContext(1, false) should not reach two lines out:\n%s", out)
	}
}

func TestStackTraceStringOrdersMostRecentFirst(t *testing.T) {
	st := toyerr.StackTrace{
		{ParseletName: "__main__", At: reader.Offset{Row: 1, Col: 1}},
		{ParseletName: "expr", At: reader.Offset{Row: 1, Col: 3}},
	}

	lines := strings.Split(st.String(), "\n")
	if len(lines) != 2 {
		t.Fatalf("String() = %q, want 2 lines", st.String())
	}
	if !strings.HasPrefix(lines[0], "expr ") {
		t.Fatalf("most recent frame (expr) should print first, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "__main__ ") {
		t.Fatalf("oldest frame (__main__) should print last, got %q", lines[1])
	}
}

func TestStackTraceDepth(t *testing.T) {
	var st toyerr.StackTrace
	if st.Depth() != 0 {
		t.Fatalf("Depth() of nil stack = %d, want 0", st.Depth())
	}
	st = append(st, toyerr.Frame{ParseletName: "f"})
	if st.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", st.Depth())
	}
}
