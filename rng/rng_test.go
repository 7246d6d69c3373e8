package rng

import "testing"

func TestDeterministicSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 100; i++ {
		va := a.Uniform()
		vb := b.Uniform()
		if va != vb {
			t.Fatalf("draw %d diverged: %v != %v", i, va, vb)
		}
	}
}

func TestDeterministicDifferentSeedDiverges(t *testing.T) {
	a := New(1)
	b := New(2)

	same := true
	for i := 0; i < 20; i++ {
		if a.Uniform() != b.Uniform() {
			same = false
		}
	}
	if same {
		t.Fatal("expected different seeds to diverge within 20 draws")
	}
}

func TestRangeBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := r.Range(2.5, 4.0)
		if v < 2.5 || v >= 4.0 {
			t.Fatalf("Range(2.5, 4.0) produced out-of-bounds value %v", v)
		}
	}
}

func TestIntRangeBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := r.IntRange(3, 9)
		if v < 3 || v >= 9 {
			t.Fatalf("IntRange(3, 9) produced out-of-bounds value %v", v)
		}
	}
}

func TestRangeDegenerate(t *testing.T) {
	r := New(7)
	if v := r.Range(5, 5); v != 5 {
		t.Fatalf("expected degenerate range to return a, got %v", v)
	}
}
