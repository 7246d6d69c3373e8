package track

import (
	"math"
	"testing"

	"github.com/aspen-motorsports/racestrategy/raceerr"
)

func ovalBuilder() *Builder {
	b := NewBuilder("Test Oval", ClassIntermediate)
	b.AddTurn(500, 180, 10, 20, BankingLinear)
	b.AddStraight(1000, 0, 0, BankingLinear)
	b.AddTurn(500, 180, 10, 20, BankingLinear)
	b.AddStraight(1000, 0, 0, BankingLinear)
	return b
}

func TestBuildValidOval(t *testing.T) {
	b := ovalBuilder()
	tr, err := b.Build(tr2len(500, 1000) / feetPerMile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.SectionCount() != 4 {
		t.Fatalf("expected 4 sections, got %d", tr.SectionCount())
	}
}

func tr2len(radius, straight float64) float64 {
	return 2*radius*math.Pi + 2*straight
}

func TestTrackClosureWithinOnePercent(t *testing.T) {
	for name, fn := range Catalog {
		tr, err := fn()
		if err != nil {
			t.Fatalf("%s: unexpected build error: %v", name, err)
		}
		if tr.Length() <= 0 {
			t.Fatalf("%s: expected positive length", name)
		}
	}
}

func TestBankingOutOfRangeRejected(t *testing.T) {
	b := NewBuilder("Bad", ClassShort)
	b.AddTurn(500, 180, 10, 40, BankingLinear)
	b.AddStraight(1000, 0, 0, BankingLinear)
	b.AddTurn(500, 180, 10, 40, BankingLinear)
	b.AddStraight(1000, 0, 0, BankingLinear)

	_, err := b.Build(1)
	assertConfigError(t, err)
}

func TestBankingInvertedRejected(t *testing.T) {
	b := NewBuilder("Bad", ClassShort)
	b.AddTurn(500, 180, 20, 10, BankingLinear) // outer < inner
	b.AddStraight(1000, 0, 0, BankingLinear)
	b.AddTurn(500, 180, 20, 10, BankingLinear)
	b.AddStraight(1000, 0, 0, BankingLinear)

	_, err := b.Build(1)
	assertConfigError(t, err)
}

func TestOpenLoopRejected(t *testing.T) {
	b := NewBuilder("Bad", ClassShort)
	b.AddTurn(500, 90, 10, 10, BankingLinear) // arcs sum to 90, not 360
	b.AddStraight(1000, 0, 0, BankingLinear)

	_, err := b.Build(1)
	assertConfigError(t, err)
}

func TestZeroRadiusRejected(t *testing.T) {
	b := NewBuilder("Bad", ClassShort)
	b.AddTurn(0, 180, 10, 10, BankingLinear)
	b.AddStraight(1000, 0, 0, BankingLinear)
	b.AddTurn(0, 180, 10, 10, BankingLinear)
	b.AddStraight(1000, 0, 0, BankingLinear)

	_, err := b.Build(1)
	assertConfigError(t, err)
}

func TestLengthMismatchRejected(t *testing.T) {
	b := ovalBuilder()
	_, err := b.Build(100) // wildly wrong declared length
	assertConfigError(t, err)
}

func assertConfigError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var re *raceerr.RaceError
	if ok := asRaceError(err, &re); !ok {
		t.Fatalf("expected a *raceerr.RaceError, got %T", err)
	}
	if re.Kind != raceerr.KindConfiguration {
		t.Fatalf("expected KindConfiguration, got %v", re.Kind)
	}
}

func asRaceError(err error, target **raceerr.RaceError) bool {
	re, ok := err.(*raceerr.RaceError)
	if ok {
		*target = re
	}
	return ok
}

func TestSectionAtMonotonic(t *testing.T) {
	tr, err := Bristol()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prevIdx := -1
	prevLocal := -1.0
	for i := 0; i < 1000; i++ {
		p := float64(i) / 1000
		ref := tr.SectionAt(p)
		if ref.LocalProgress < 0 || ref.LocalProgress >= 1 {
			t.Fatalf("local progress out of [0,1) at p=%v: %v", p, ref.LocalProgress)
		}
		if ref.Index < prevIdx {
			t.Fatalf("section index went backwards at p=%v", p)
		}
		if ref.Index == prevIdx && ref.LocalProgress < prevLocal {
			t.Fatalf("local progress went backwards within section at p=%v", p)
		}
		prevIdx, prevLocal = ref.Index, ref.LocalProgress
	}
}

func TestBankingAtInterpolatesBetweenInnerAndOuter(t *testing.T) {
	tr, err := Bristol()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner := tr.BankingAt(0, 0)
	outer := tr.BankingAt(0, 1)
	mid := tr.BankingAt(0, 0.5)

	if inner > mid || mid > outer {
		t.Fatalf("expected banking to increase from inner to outer: inner=%v mid=%v outer=%v", inner, mid, outer)
	}
}

func TestEffectiveGripBounded(t *testing.T) {
	tr, err := Daytona()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		g := tr.EffectiveGrip(float64(i) / 100)
		if g < 0 || g > 1 {
			t.Fatalf("grip out of [0,1]: %v", g)
		}
	}
}
