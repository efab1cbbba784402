package vm

import "github.com/tokay-lang/tokay/internal/value"

// collect implements spec.md §4.10's default AST-construction rule, run
// automatically at the end of runOnce when a parselet's Body/End sequence
// didn't already push an explicit return value: walk the frame's captures
// above the configured severity floor and fold them into a List (no
// capture carries an alias) or a Dict (at least one does), following the
// same ambiguity rule the explicit Collect op uses.
func collect(ctx *Context, pl *Parselet) *value.RefValue {
	return collectFlags(ctx, 0, pl.Severity())
}

// collectFlags backs both the implicit end-of-parselet collect and the
// explicit Collect bytecode op; flags carries the CollectCopy/Single/
// Inherit bits packed into Op.A by lowering. It follows spec.md §4.10's
// five steps in order: gather non-empty captures, special-case a single
// inherited capture, compute the maximum severity seen (the floor is a
// lower bound on that maximum, not itself the cutoff), narrow to only the
// captures at that maximum ("all leaf captures have severity equal to the
// maximum severity that was present"), then resolve
// the list/dict ambiguity.
func collectFlags(ctx *Context, flags int, floor value.Severity) *value.RefValue {
	caps := ctx.captures()

	type entry struct {
		alias    string
		hasAlias bool
		val      *value.RefValue
		severity value.Severity
	}
	var gathered []entry
	for _, c := range caps {
		if c.IsEmpty() {
			continue
		}
		alias, hasAlias := c.Alias()
		gathered = append(gathered, entry{alias: alias, hasAlias: hasAlias, val: c.Value(ctx.extract), severity: c.Severity()})
	}

	if len(gathered) == 0 {
		return value.VoidValue
	}

	if flags&CollectInherit != 0 && len(gathered) == 1 {
		return gathered[0].val
	}

	maxSeverity := floor
	for _, e := range gathered {
		if e.severity > maxSeverity {
			maxSeverity = e.severity
		}
	}

	type collected struct {
		alias string
		val   *value.RefValue
	}
	var kept []collected
	for _, e := range gathered {
		if e.severity < maxSeverity {
			continue
		}
		if flags&CollectInherit != 0 && !e.hasAlias {
			if d, ok := e.val.Object().(*value.Dict); ok {
				for _, k := range d.Keys() {
					kept = append(kept, collected{alias: k, val: d.Get(k)})
				}
				continue
			}
		}
		alias := ""
		if e.hasAlias {
			alias = e.alias
		}
		kept = append(kept, collected{alias: alias, val: e.val})
	}

	if len(kept) == 0 {
		return value.VoidValue
	}

	if flags&CollectSingle != 0 && len(kept) == 1 {
		return kept[0].val
	}

	hasAnyAlias := false
	for _, e := range kept {
		if e.alias != "" {
			hasAnyAlias = true
			break
		}
	}

	if !hasAnyAlias {
		if len(kept) == 1 && flags&CollectSingle == 0 && flags&CollectCopy == 0 {
			return kept[0].val
		}
		items := make([]*value.RefValue, len(kept))
		for i, e := range kept {
			items[i] = e.val
		}
		return value.NewList(items)
	}

	d := value.NewDict()
	dict := d.Object().(*value.Dict)
	for _, e := range kept {
		key := e.alias
		if key == "" {
			key = dict.NextSyntheticKey()
		}
		dict.Set(key, e.val)
	}
	return d
}
