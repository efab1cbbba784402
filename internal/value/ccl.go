package value

import "sort"

// cclRange is an inclusive rune range, mirroring ccl.rs's
// std::ops::RangeInclusive<char>.
type cclRange struct {
	lo, hi rune
}

// Ccl is a character class: an unordered set of runes expressed as a list
// of inclusive ranges, grounded on original_source/src/ccl.rs. It backs
// the Char/Chars token matchers (spec.md §4.2), which test membership
// against one rather than a single literal rune or predicate function.
type Ccl struct {
	ranges []cclRange
}

// NewCcl returns an empty Ccl; add runes and ranges with AddRune/AddRange.
func NewCcl() *Ccl {
	return &Ccl{}
}

// AddRune adds a single rune to the class.
func (c *Ccl) AddRune(r rune) *Ccl {
	return c.AddRange(r, r)
}

// AddRange adds the inclusive range [lo, hi] to the class.
func (c *Ccl) AddRange(lo, hi rune) *Ccl {
	if hi < lo {
		lo, hi = hi, lo
	}
	c.ranges = append(c.ranges, cclRange{lo: lo, hi: hi})
	c.normalize()
	return c
}

// Len returns the total number of distinct runes covered by the class.
func (c *Ccl) Len() int {
	n := 0
	for _, r := range c.ranges {
		n += int(r.hi-r.lo) + 1
	}
	return n
}

// Test reports whether r is a member of the class.
func (c *Ccl) Test(r rune) bool {
	for _, rg := range c.ranges {
		if r >= rg.lo && r <= rg.hi {
			return true
		}
	}
	return false
}

// normalize removes intersecting and directly-adjacent ranges, as
// ccl.rs's normalize() does, so Len/Repr never double-count a rune.
func (c *Ccl) normalize() {
	for {
		before := len(c.ranges)
		sort.Slice(c.ranges, func(i, j int) bool { return c.ranges[i].lo < c.ranges[j].lo })

		merged := false
		for i := 0; i < len(c.ranges)-1; i++ {
			a, b := c.ranges[i], c.ranges[i+1]
			if b.lo <= a.hi+1 {
				if b.hi > a.hi {
					a.hi = b.hi
				}
				c.ranges[i] = a
				c.ranges = append(c.ranges[:i+1], c.ranges[i+2:]...)
				merged = true
				break
			}
		}
		if !merged && len(c.ranges) == before {
			return
		}
	}
}

// Negate replaces the class with its complement over the full rune range.
func (c *Ccl) Negate() *Ccl {
	c.normalize()
	out := &Ccl{}
	start := rune(0)
	for _, r := range c.ranges {
		if r.lo > start {
			out.ranges = append(out.ranges, cclRange{lo: start, hi: r.lo - 1})
		}
		if r.hi+1 > start {
			start = r.hi + 1
		}
	}
	if start <= 0x10FFFF {
		out.ranges = append(out.ranges, cclRange{lo: start, hi: 0x10FFFF})
	}
	c.ranges = out.ranges
	return c
}
