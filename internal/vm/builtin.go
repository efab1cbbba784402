package vm

import "github.com/tokay-lang/tokay/internal/value"

// BuiltinFunc is the signature every native builtin implements, mirroring
// spec.md §6.3: it receives the calling Thread (for reader/output access),
// the positional args as the call site passed them, and the named args as a
// Dict (nil when there are none). The Builtin's Signature is not consulted
// to bind them.
type BuiltinFunc func(t *Thread, args []*value.RefValue, nargs *value.Dict) (Accept, Reject)

// Builtin is a native function value, the non-bytecode counterpart to
// Parselet. Signature uses the same "name name=default" notation as a
// parselet's declared parameters (spec.md §6.3).
type Builtin struct {
	Name      string
	Signature string
	Consuming bool
	// Silent marks a builtin whose match contributes no value of its own
	// to automatic AST construction (spec.md §4.2's Touch(s), severity 0),
	// as opposed to every other token matcher's default severity 5.
	Silent bool
	Func   BuiltinFunc
}

func (b *Builtin) TypeName() string { return "builtin" }
func (b *Builtin) Repr() string     { return "<builtin " + b.Name + ">" }
func (*Builtin) IsTrue() bool       { return true }
func (b *Builtin) Severity() value.Severity {
	if b.Silent {
		return value.SeveritySilent
	}
	return value.SeverityDefault
}
func (*Builtin) IsCallable() bool        { return true }
func (b *Builtin) IsConsuming() bool     { return b.Consuming }
func (*Builtin) IsNullable() bool        { return false }

// Registry is the builtin lookup table (spec.md §4.11): a flat name-to-value
// map populated once at program construction time and shared read-only by
// every Thread running that Program.
type Registry struct {
	entries map[string]*Builtin
}

// NewRegistry creates an empty builtin registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*Builtin{}}
}

// Register adds b under its own Name, overwriting any previous entry.
func (r *Registry) Register(b *Builtin) {
	r.entries[b.Name] = b
}

// Lookup returns the builtin named name, if any.
func (r *Registry) Lookup(name string) (*Builtin, bool) {
	b, ok := r.entries[name]
	return b, ok
}

// IsConsumable reports whether name resolves to a builtin that reads from
// the input. The finalizer does not consult it: it treats every call to a
// non-parselet target as consuming.
func (r *Registry) IsConsumable(name string) bool {
	b, ok := r.entries[name]
	return ok && b.Consuming
}

// invoke dispatches a Call/CallStatic family op against whatever value
// sits in callee position: a Parselet recurses through Thread.call, a
// Builtin runs directly, and anything else (a plain value used as a
// parameter-less "constant parselet") is returned as an immediate accept.
func (t *Thread) invoke(callee value.Object, args []*value.RefValue, kwargs *value.Dict) (Accept, Reject) {
	switch c := callee.(type) {
	case *Parselet:
		return t.call(c, args, kwargs)
	case *Builtin:
		return c.Func(t, args, kwargs)
	default:
		return Accept{Kind: AcceptReturn, Value: value.NewRef(callee)}, Reject{}
	}
}

// Invoke is invoke's exported form, used by out-of-package builtins (the
// `iter`/`next` dispatch of spec.md §4.11) that need to drive a
// method-iter by calling back into a user-supplied Parselet or Builtin.
func (t *Thread) Invoke(callee value.Object, args []*value.RefValue, kwargs *value.Dict) (Accept, Reject) {
	return t.invoke(callee, args, kwargs)
}
