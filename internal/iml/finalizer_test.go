package iml

import "testing"

// TestFinalizeDirectLeftRecursion exercises the classic `expr := expr '+' num | num`
// shape and checks that Finalize marks expr left-recursive without ever
// marking it nullable, matching spec.md §4.5/§4.9.
func TestFinalizeDirectLeftRecursion(t *testing.T) {
	num := NewParselet("num", Lit("5"))
	expr := NewParselet("expr", nil)
	expr.Body = Choice(
		SeqOf(CallParselet(expr), Lit("+"), CallParselet(num)),
		CallParselet(num),
	)

	Finalize([]*ImlParselet{expr, num})

	if !num.Consuming || num.LeftRec || num.Nullable {
		t.Fatalf("num: got Consuming=%v LeftRec=%v Nullable=%v, want true/false/false",
			num.Consuming, num.LeftRec, num.Nullable)
	}
	if !expr.Consuming {
		t.Fatalf("expr: want Consuming=true")
	}
	if !expr.LeftRec {
		t.Fatalf("expr: want LeftRec=true (self-call occurs before any input is consumed)")
	}
	if expr.Nullable {
		t.Fatalf("expr: want Nullable=false, every branch consumes at least one literal")
	}
}

// TestFinalizeNativeLiteralConsumes checks the base case: a parselet whose
// body is a single native (builtin) call is consuming and non-nullable.
func TestFinalizeNativeLiteralConsumes(t *testing.T) {
	p := NewParselet("lit_a", Lit("a"))
	Finalize([]*ImlParselet{p})

	if !p.Consuming {
		t.Fatalf("want Consuming=true for a parselet whose body is a native literal match")
	}
	if p.LeftRec {
		t.Fatalf("want LeftRec=false, there is no self-call")
	}
	if p.Nullable {
		t.Fatalf("want Nullable=false, the literal always consumes at least one byte")
	}
}

// TestFinalizePropagatesThroughNonRecursiveCall checks that Consuming
// propagates across an ordinary (non-recursive) call chain: a := b, b := "x".
func TestFinalizePropagatesThroughNonRecursiveCall(t *testing.T) {
	b := NewParselet("b", Lit("x"))
	a := NewParselet("a", nil)
	a.Body = CallParselet(b)

	Finalize([]*ImlParselet{a, b})

	if !b.Consuming {
		t.Fatalf("b: want Consuming=true")
	}
	if !a.Consuming {
		t.Fatalf("a: want Consuming=true, propagated from calling b")
	}
	if a.LeftRec {
		t.Fatalf("a: want LeftRec=false, this is a plain (non-recursive) call chain")
	}
}

// TestFinalizeIndirectRecursionMarksLeftRec checks mutual (indirect) left
// recursion a := b, b := a | "x" is still caught by the visited-set guard
// in walk's Call case, even though neither parselet calls itself directly.
// The two-parselet case falls out of the same visited-map mechanism that
// handles direct recursion; longer cycles are caught the same way, since
// the visited set accumulates along the whole call chain of one walk.
func TestFinalizeIndirectRecursionMarksLeftRec(t *testing.T) {
	a := NewParselet("a", nil)
	b := NewParselet("b", nil)
	a.Body = CallParselet(b)
	b.Body = Choice(CallParselet(a), Lit("x"))

	Finalize([]*ImlParselet{a, b})

	if !a.Consuming || !b.Consuming {
		t.Fatalf("want both a and b Consuming=true, got a=%v b=%v", a.Consuming, b.Consuming)
	}
	if !b.LeftRec {
		t.Fatalf("b: want LeftRec=true, its first alternative calls back into a which calls b")
	}
}

// TestFinalizeTerminates is a shape with several mutually-calling parselets;
// Finalize must return (the {false,true}² lattice per parselet is finite and
// every walk only ever turns flags on, so the outer loop is guaranteed to
// halt per finalizer.go's doc comment). A hang here would block the test
// runner, so simply completing is the assertion.
func TestFinalizeTerminates(t *testing.T) {
	p1 := NewParselet("p1", nil)
	p2 := NewParselet("p2", nil)
	p3 := NewParselet("p3", nil)
	p1.Body = Choice(CallParselet(p2), Lit("1"))
	p2.Body = Choice(CallParselet(p3), Lit("2"))
	p3.Body = Choice(CallParselet(p1), Lit("3"))

	Finalize([]*ImlParselet{p1, p2, p3})

	for _, p := range []*ImlParselet{p1, p2, p3} {
		if !p.Consuming {
			t.Fatalf("%s: want Consuming=true", p.Name)
		}
	}
}
