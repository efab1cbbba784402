package vm

import (
	"github.com/tokay-lang/tokay/internal/reader"
	"github.com/tokay-lang/tokay/internal/value"
)

// Capture is one entry on a Context's capture stack (spec.md §3, C2). Every
// consuming operation pushes one: either empty (nothing matched yet), a
// source Range not yet turned into a value, or a materialized Value. An
// alias (set by MakeAlias/named capture syntax) turns the capture into a
// dict entry instead of a list item when Collect runs (spec.md §4.10).
type Capture struct {
	kind    captureKind
	rng     reader.Range
	val     *value.RefValue
	alias   string
	hasAlias bool
	severity value.Severity
	hasSeverity bool
}

type captureKind int

const (
	captureEmpty captureKind = iota
	captureRange
	captureValue
)

// EmptyCapture creates a not-yet-matched capture slot.
func EmptyCapture() *Capture {
	return &Capture{kind: captureEmpty}
}

// RangeCapture wraps a matched source range that has not been lexed into a
// value yet (the common case for raw token matches).
func RangeCapture(r reader.Range) *Capture {
	return &Capture{kind: captureRange, rng: r}
}

// ValueCapture wraps an already-materialized value, as produced by a
// nested parselet call or a constant push.
func ValueCapture(v *value.RefValue) *Capture {
	return &Capture{kind: captureValue, val: v}
}

// IsEmpty reports whether nothing has been captured yet.
func (c *Capture) IsEmpty() bool { return c.kind == captureEmpty }

// SetAlias attaches a name to the capture (MakeAlias, spec.md §4.3).
func (c *Capture) SetAlias(name string) {
	c.alias = name
	c.hasAlias = true
}

// Alias returns the capture's alias and whether one is set.
func (c *Capture) Alias() (string, bool) { return c.alias, c.hasAlias }

// Severity returns the capture's severity, defaulting to the wrapped
// value's own severity when none has been explicitly set on the capture.
func (c *Capture) Severity() value.Severity {
	if c.hasSeverity {
		return c.severity
	}
	if c.kind == captureValue && c.val != nil {
		return c.val.Severity()
	}
	return value.SeverityDefault
}

// SetSeverity overrides the capture's severity, including an override to
// 0 (silent); acceptCapture applies it for an Accept with OverrideSeverity.
func (c *Capture) SetSeverity(s value.Severity) {
	c.severity = s
	c.hasSeverity = true
}

// Value materializes the capture as a *value.RefValue, lexing a pending
// Range against extract if one hasn't been turned into a value yet.
func (c *Capture) Value(extract func(reader.Range) string) *value.RefValue {
	switch c.kind {
	case captureValue:
		return c.val
	case captureRange:
		return value.NewStr(extract(c.rng))
	default:
		return value.VoidValue
	}
}

// Range returns the capture's source range, or a zero Range if the
// capture wraps a materialized value with no range of its own.
func (c *Capture) Range() (reader.Range, bool) {
	if c.kind == captureRange {
		return c.rng, true
	}
	return reader.Range{}, false
}
