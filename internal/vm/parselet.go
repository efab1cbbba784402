package vm

import "github.com/tokay-lang/tokay/internal/value"

// Consuming encodes the tri-state flag the finalizer computes per parselet
// (spec.md §4.5): Set == false is the "None" case (a pure, non-consuming
// function); Set == true then splits into the two "Some" cases, with
// LeftRecursive distinguishing a left-recursive consumer from a plain one.
type Consuming struct {
	Set           bool
	LeftRecursive bool
}

// Param is one entry in a Parselet's call signature: a parameter name and,
// for optional parameters, the static index of its default value (-1 when
// the parameter is required).
type Param struct {
	Name       string
	DefaultIdx int
}

// Parselet is Tokay's fundamental callable unit (spec.md §3): a named,
// possibly-consuming grammar rule or function compiled to three bytecode
// sequences. Begin runs before Body, Body is the main match sequence, and
// End runs after Body accepts; all three run on every execution of the
// body, so the left-recursion fixed-point loop (spec.md §4.9) re-runs
// Begin and End with each iteration, and a memo hit runs none of them.
type Parselet struct {
	Name      string
	Consuming Consuming
	Sev       value.Severity
	Signature []Param
	Locals    int
	Begin     []Op
	Body      []Op
	End       []Op
}

func (p *Parselet) paramNames() []string {
	out := make([]string, len(p.Signature))
	for i, s := range p.Signature {
		out[i] = s.Name
	}
	return out
}

func (p *Parselet) TypeName() string { return "parselet" }

func (p *Parselet) Repr() string {
	if p.Name != "" {
		return "<parselet " + p.Name + ">"
	}
	return "<parselet>"
}

func (*Parselet) IsTrue() bool { return true }

func (p *Parselet) Severity() value.Severity {
	if p.Sev != 0 {
		return p.Sev
	}
	return value.SeverityDefault
}

func (*Parselet) IsCallable() bool { return true }

// IsConsuming reports whether the parselet reads from the input (spec.md
// §4.5). An un-finalized parselet (Consuming.Set == false and no body
// analysis run yet) reports false, matching "None == pure function" until
// the finalizer has actually classified it.
func (p *Parselet) IsConsuming() bool { return p.Consuming.Set }

// IsLeftRecursive reports whether this parselet was found to call itself
// (directly) without first consuming input.
func (p *Parselet) IsLeftRecursive() bool { return p.Consuming.Set && p.Consuming.LeftRecursive }

// IsNullable reports the Consuming-derived value: true exactly when the
// parselet is not consuming. Lowering does not carry the finalizer's own
// Nullable flag over to the Parselet.
func (p *Parselet) IsNullable() bool { return !p.Consuming.Set }
