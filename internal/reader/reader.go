// Package reader implements the input-stream cursor the VM parses against.
//
// A Reader owns the full source buffer and tracks byte offset, row and
// column as it advances. Positions are captured as Offset values that can
// later be used to reset the cursor (for backtracking between alternatives)
// or to extract a Range of the consumed input. Column tracking is
// rune-based, except double-width and combining runes are folded in via
// golang.org/x/text/width so that error carets the CLI prints line up with
// what a terminal actually renders.
package reader

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Offset is a point in the reader. It is restorable via Reset and is only
// ever produced by a Reader for itself; callers must not construct one by
// hand except for the None sentinel.
type Offset struct {
	ByteOffset uint64
	Row        uint32
	Col        uint32
}

// None is never produced by a live Reader, so it can mean "no offset"
// without a separate Option wrapper type. The VM does not use it: its memo
// table is a map, and a missing entry is found by lookup.
var None = Offset{ByteOffset: ^uint64(0)}

// IsNone reports whether this offset is the None sentinel.
func (o Offset) IsNone() bool {
	return o.ByteOffset == None.ByteOffset
}

// Range is a half-open byte span [Start, End) within one Reader.
type Range struct {
	Start Offset
	End   Offset
}

// Len returns the number of bytes in the range.
func (r Range) Len() uint64 {
	if r.End.ByteOffset < r.Start.ByteOffset {
		return 0
	}
	return r.End.ByteOffset - r.Start.ByteOffset
}

// Predicate tests a single rune, used by Once/Span.
type Predicate func(rune) bool

// Reader advances over a UTF-8 input stream, exposing byte-accurate
// offsets that are stable across any reset that has not yet been
// committed away.
type Reader struct {
	buf    []byte
	pos    int // byte offset of next unread byte
	row    uint32
	col    uint32
	commit uint64 // watermark: offsets below this must never be reset to
}

// New creates a Reader over the given source bytes.
func New(src []byte) *Reader {
	return &Reader{buf: src, row: 1, col: 1}
}

// NewFromString is a convenience constructor for in-memory string sources.
func NewFromString(src string) *Reader {
	return New([]byte(src))
}

// Tell returns the current Offset.
func (r *Reader) Tell() Offset {
	return Offset{ByteOffset: uint64(r.pos), Row: r.row, Col: r.col}
}

// Eof reports whether the reader is at the end of input.
func (r *Reader) Eof() bool {
	return r.pos >= len(r.buf)
}

// Source returns the full input buffer this Reader was built over, for
// error reporting that needs to render the offending line in context
// (internal/toyerr).
func (r *Reader) Source() string {
	return string(r.buf)
}

// Peek returns the next rune without consuming it.
func (r *Reader) Peek() (rune, bool) {
	if r.Eof() {
		return 0, false
	}
	ru, _ := utf8.DecodeRune(r.buf[r.pos:])
	return ru, true
}

// Next consumes and returns the next rune, advancing row/column. A
// newline resets the column to 1 and increments the row; any other rune
// advances the column by its display width (1 for narrow/neutral runes,
// 2 for wide/fullwidth runes, 0 for combining marks), matching how a
// terminal would actually redraw the caret under an error.
func (r *Reader) Next() (rune, bool) {
	if r.Eof() {
		return 0, false
	}
	ru, size := utf8.DecodeRune(r.buf[r.pos:])
	r.pos += size
	if ru == '\n' {
		r.row++
		r.col = 1
		return ru, true
	}
	r.col += runeColumnWidth(ru)
	return ru, true
}

func runeColumnWidth(ru rune) uint32 {
	if unicode.In(ru, unicode.Mn, unicode.Me) {
		return 0
	}
	switch width.LookupRune(ru).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	case width.Neutral:
		if !utf8.ValidRune(ru) {
			return 0
		}
		return 1
	default:
		return 1
	}
}

// Reset restores the reader to a previously produced Offset. Resetting to
// an offset at or below the commit watermark is a fatal program error,
// since the backing bytes below the watermark may have been discarded.
func (r *Reader) Reset(o Offset) {
	if o.ByteOffset < r.commit {
		panic("reader: reset to a committed offset")
	}
	r.pos = int(o.ByteOffset)
	r.row = o.Row
	r.col = o.Col
}

// Once consumes one rune if predicate holds, returning it and true;
// otherwise the reader is left untouched and false is returned.
func (r *Reader) Once(pred Predicate) (rune, bool) {
	ru, ok := r.Peek()
	if !ok || !pred(ru) {
		return 0, false
	}
	r.Next()
	return ru, true
}

// Span consumes the maximal run of runes matching predicate, returning
// the matched Range. If zero runes matched, ok is false and start==end.
func (r *Reader) Span(pred Predicate) (rng Range, ok bool) {
	start := r.Tell()
	for {
		ru, peeked := r.Peek()
		if !peeked || !pred(ru) {
			break
		}
		r.Next()
	}
	end := r.Tell()
	if end.ByteOffset == start.ByteOffset {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// CaptureFrom returns the Range from the given Offset to the current
// position.
func (r *Reader) CaptureFrom(start Offset) Range {
	return Range{Start: start, End: r.Tell()}
}

// CaptureLast returns the Range of the last n bytes consumed.
func (r *Reader) CaptureLast(nBytes uint64) Range {
	end := r.Tell()
	startOff := end.ByteOffset
	if nBytes > startOff {
		startOff = 0
	} else {
		startOff -= nBytes
	}
	return Range{Start: Offset{ByteOffset: startOff}, End: end}
}

// Extract returns the owned string covered by a Range.
func (r *Reader) Extract(rng Range) string {
	if rng.End.ByteOffset > uint64(len(r.buf)) {
		rng.End.ByteOffset = uint64(len(r.buf))
	}
	if rng.Start.ByteOffset > rng.End.ByteOffset {
		return ""
	}
	return string(r.buf[rng.Start.ByteOffset:rng.End.ByteOffset])
}

// Commit declares everything up to the current offset as no longer
// reset-able. This lets memo entries keyed below the watermark be
// dropped by the VM; the backing buffer itself is never truncated here
// since Tokay programs typically run over an in-memory buffer already
// held by the caller (the CLI's file or stdin read), so there is no
// separate allocation to shrink.
func (r *Reader) Commit() {
	r.commit = uint64(r.pos)
}

// CommitWatermark returns the byte offset below which no Offset may be
// reset to. The VM does not call it; its memo table never evicts entries.
func (r *Reader) CommitWatermark() uint64 {
	return r.commit
}
