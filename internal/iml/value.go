package iml

import "github.com/tokay-lang/tokay/internal/value"

// ImlValue is the IR's reference-to-something interface: either something
// already concrete (Void, a constant Value, a compiled Parselet) or
// something that still needs scope resolution (a bare Name, a Variable
// slot once resolved, or a Generic placeholder inside a still-unspecialized
// parselet). Grounded on original_source's compiler/iml/value.rs.
type ImlValue interface {
	imlValue()
}

// ImlVoid is the "nothing produced here" placeholder value.
type ImlVoid struct{}

// Unknown marks a value the finalizer hasn't classified yet (used while
// the nullable/leftrec fixed point is still converging, spec.md §4.5).
type Unknown struct{}

// Value wraps an already-known constant.
type Value struct {
	V *value.RefValue
}

// ImlParselet wraps a not-yet-lowered parselet definition: its begin/body/
// end IR trees plus the consuming/leftrec/nullable flags the finalizer
// computes over them.
type ImlParselet struct {
	Name      string
	Params    []Param
	Locals    []string
	Severity  value.Severity
	Begin     ImlOp
	Body      ImlOp
	End       ImlOp
	Consuming bool
	LeftRec   bool
	Nullable  bool
}

// Param is one formal parameter of an unlowered parselet; Default is nil
// for a required parameter.
type Param struct {
	Name    string
	Default ImlOp
}

// Parselet wraps a reference to an already-compiled ImlParselet, used
// once a definition is known and only needs to be called.
type Parselet struct {
	Def *ImlParselet
}

// Variable refers to a resolved local or global slot.
type Variable struct {
	Name   string
	Global bool
	Slot   int
}

// Generic is an unresolved reference inside a parselet template, kept
// distinct from Name so the finalizer can tell "not yet looked up" apart
// from "deliberately generic" placeholders.
type Generic struct {
	Name string
}

// Name is a bare identifier awaiting scope-chain resolution (spec.md §5 —
// "scope-chain name resolution").
type Name struct {
	Ident string
}

func (ImlVoid) imlValue()   {}
func (Unknown) imlValue()   {}
func (Value) imlValue()     {}
func (*Parselet) imlValue() {}
func (Variable) imlValue()  {}
func (Generic) imlValue()   {}
func (Name) imlValue()      {}

// Scope is a single link in the name-resolution chain (spec.md §5):
// parselet-local scopes nest inside the global scope, and Resolve walks
// outward until a name is found or the chain is exhausted.
type Scope struct {
	parent *Scope
	names  map[string]ImlValue
}

// NewScope creates a scope chained to parent (nil for the outermost/global
// scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, names: map[string]ImlValue{}}
}

// Declare binds name to v in this scope, shadowing any outer binding.
func (s *Scope) Declare(name string, v ImlValue) {
	s.names[name] = v
}

// Resolve looks up name starting in this scope and walking outward,
// returning a Generic placeholder if no scope in the chain declares it.
func (s *Scope) Resolve(name string) ImlValue {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.names[name]; ok {
			return v
		}
	}
	return Generic{Name: name}
}
