package vm

import "github.com/tokay-lang/tokay/internal/value"

// AcceptKind and RejectKind are the two escape-signal families every
// bytecode sequence resolves to (spec.md §4.4): Accept carries a result
// upward on success, Reject unwinds a failed attempt.
type AcceptKind int

const (
	AcceptNext AcceptKind = iota
	AcceptHold
	AcceptPush
	AcceptReturn
	AcceptRepeat
)

type RejectKind int

const (
	// rejectNone is the zero RejectKind: the Reject{} a successful step
	// returns beside its Accept. Every caller tests Kind != 0 (or a non-nil
	// Err) to tell a real reject from success.
	rejectNone RejectKind = iota
	RejectNext
	RejectSkip
	RejectMain
	RejectError
)

// Accept is the signal produced when a parselet's body sequence completes
// without rejecting. Value is only meaningful for AcceptPush/AcceptReturn.
// When OverrideSeverity is set, Severity replaces the capture severity
// collect() sees for this result instead of deferring to Value's own type
// floor — needed by token matchers like Touch(s) (spec.md §4.2), whose
// success value is a Str (floor 10) but whose capture must read as silent
// (severity 0), a value indistinguishable from the zero Severity a plain
// Accept{} leaves unset.
type Accept struct {
	Kind             AcceptKind
	Value            *value.RefValue
	OverrideSeverity bool
	Severity         value.Severity
}

// Reject is the signal produced when a match attempt fails. Err is only
// set for RejectError.
type Reject struct {
	Kind RejectKind
	Err  error
}

func (r Reject) Error() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return "reject"
}
