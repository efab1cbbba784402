package reader

import "testing"

func TestNextAdvancesMonotonically(t *testing.T) {
	r := NewFromString("abc")

	var last Offset
	for i := 0; i < 3; i++ {
		o1 := r.Tell()
		if _, ok := r.Next(); !ok {
			t.Fatalf("unexpected eof at %d", i)
		}
		o2 := r.Tell()
		if o2.ByteOffset <= o1.ByteOffset {
			t.Fatalf("offset did not advance: %v -> %v", o1, o2)
		}
		last = o2
	}
	if last.ByteOffset != 3 {
		t.Fatalf("expected final offset 3, got %d", last.ByteOffset)
	}
}

func TestNewlineResetsColumn(t *testing.T) {
	r := NewFromString("ab\ncd")
	for i := 0; i < 3; i++ {
		r.Next() // a, b, \n
	}
	tell := r.Tell()
	if tell.Row != 2 || tell.Col != 1 {
		t.Fatalf("expected row=2 col=1 after newline, got row=%d col=%d", tell.Row, tell.Col)
	}
}

func TestResetRestoresPosition(t *testing.T) {
	r := NewFromString("hello")
	mark := r.Tell()
	r.Next()
	r.Next()
	r.Reset(mark)
	if r.Tell() != mark {
		t.Fatalf("reset did not restore offset")
	}
	ru, ok := r.Peek()
	if !ok || ru != 'h' {
		t.Fatalf("expected to be back at 'h', got %q ok=%v", ru, ok)
	}
}

func TestResetBelowCommitPanics(t *testing.T) {
	r := NewFromString("hello")
	mark := r.Tell()
	r.Next()
	r.Commit()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic resetting below commit watermark")
		}
	}()
	r.Reset(mark)
}

func TestSpanMatchesMaximalRun(t *testing.T) {
	r := NewFromString("123abc")
	rng, ok := r.Span(func(ru rune) bool { return ru >= '0' && ru <= '9' })
	if !ok {
		t.Fatalf("expected span to match")
	}
	if got := r.Extract(rng); got != "123" {
		t.Fatalf("expected %q, got %q", "123", got)
	}
	ru, _ := r.Peek()
	if ru != 'a' {
		t.Fatalf("expected reader positioned at 'a', got %q", ru)
	}
}

func TestSpanEmptyIsNotOk(t *testing.T) {
	r := NewFromString("abc")
	_, ok := r.Span(func(ru rune) bool { return ru >= '0' && ru <= '9' })
	if ok {
		t.Fatalf("expected no match")
	}
}

func TestOnceConsumesSingleRune(t *testing.T) {
	r := NewFromString("a1")
	ru, ok := r.Once(func(ru rune) bool { return ru == 'a' })
	if !ok || ru != 'a' {
		t.Fatalf("expected to consume 'a'")
	}
	_, ok = r.Once(func(ru rune) bool { return ru == 'a' })
	if ok {
		t.Fatalf("expected no match on '1'")
	}
}

func TestCaptureFromAndExtract(t *testing.T) {
	r := NewFromString("hello world")
	start := r.Tell()
	for i := 0; i < 5; i++ {
		r.Next()
	}
	rng := r.CaptureFrom(start)
	if got := r.Extract(rng); got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
}

func TestEof(t *testing.T) {
	r := NewFromString("x")
	if r.Eof() {
		t.Fatalf("should not be eof yet")
	}
	r.Next()
	if !r.Eof() {
		t.Fatalf("should be eof")
	}
	if _, ok := r.Next(); ok {
		t.Fatalf("next at eof should fail")
	}
}
