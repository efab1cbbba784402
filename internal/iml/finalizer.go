package iml

// consumeResult is walk's return value: nil means "does not consume here"
// (spec.md §4.5's `None`); a non-nil pointer carries the leftrec/nullable
// pair for an op that does consume.
type consumeResult struct {
	leftrec  bool
	nullable bool
}

func or(a, b *consumeResult) *consumeResult {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &consumeResult{leftrec: a.leftrec || b.leftrec, nullable: a.nullable || b.nullable}
}

// Finalize runs the fixed-point closure of spec.md §4.5 over every
// parselet in parselets, mutating each's Consuming/LeftRec/Nullable in
// place. The lattice {false,true}² per parselet is finite and every walk
// is monotone (only ever turns a flag on, never off), so the outer
// repeat-until-no-change loop is guaranteed to terminate.
func Finalize(parselets []*ImlParselet) {
	for {
		changed := false
		for _, p := range parselets {
			res := walk(p.Body, map[*ImlParselet]bool{p: true})
			if res == nil {
				continue
			}
			if res.leftrec != p.LeftRec || res.nullable != p.Nullable || !p.Consuming {
				p.Consuming = true
				p.LeftRec = res.leftrec
				p.Nullable = res.nullable
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func walk(op ImlOp, visited map[*ImlParselet]bool) *consumeResult {
	switch n := op.(type) {
	case nil, Nop:
		return nil

	case Op:
		if n.Code.String() == "NEXT" {
			return &consumeResult{leftrec: false, nullable: false}
		}
		return nil

	case Load:
		return nil

	case Call:
		target, ok := n.Target.(*Parselet)
		if !ok || target.Def == nil {
			// Unresolved/native target: conservatively treat as a
			// consuming, non-nullable, non-leftrec call — a builtin token
			// call reads input but can't recurse into this analysis.
			return &consumeResult{leftrec: false, nullable: false}
		}
		if visited[target.Def] {
			return &consumeResult{leftrec: true, nullable: false}
		}
		if !target.Def.Consuming {
			return nil
		}
		next := make(map[*ImlParselet]bool, len(visited)+1)
		for k := range visited {
			next[k] = true
		}
		next[target.Def] = true
		return walk(target.Def.Body, next)

	case Alt:
		var acc *consumeResult
		for _, b := range n.Branches {
			acc = or(acc, walk(b, visited))
		}
		return acc

	case Seq:
		var acc *consumeResult
		nullableSoFar := true
		for _, it := range n.Items {
			r := walk(it, visited)
			if r == nil {
				continue
			}
			if acc == nil {
				acc = &consumeResult{leftrec: r.leftrec}
			} else {
				acc.leftrec = acc.leftrec || r.leftrec
			}
			if nullableSoFar {
				acc.nullable = r.nullable
			}
			if !r.nullable {
				nullableSoFar = false
			}
		}
		return acc

	case If:
		return or(walk(n.Then, visited), walk(n.Else, visited))

	case Loop:
		return or(walk(n.Body, visited), nil)

	default:
		return nil
	}
}
