package progression

import "testing"

func TestValueFromXPNeverExceeds100(t *testing.T) {
	for _, xp := range []float64{0, 50, 100, 5000, 50000, 1e9} {
		v := ValueFromXP(xp)
		if v < 0 || v > 100 {
			t.Fatalf("ValueFromXP(%v) = %v out of [0,100]", xp, v)
		}
	}
}

func TestValueFromXPMonotonic(t *testing.T) {
	prev := 0.0
	for xp := 0.0; xp <= 20000; xp += 37 {
		v := ValueFromXP(xp)
		if v < prev {
			t.Fatalf("ValueFromXP regressed at xp=%v: %v < %v", xp, v, prev)
		}
		prev = v
	}
}

func TestXPGatingBeyond100HasNoEffect(t *testing.T) {
	at100 := ValueFromXP(CumulativeXPForLevel(100))
	beyond := ValueFromXP(CumulativeXPForLevel(100) + 1_000_000)
	if at100 != 100 || beyond != 100 {
		t.Fatalf("expected both to saturate at 100, got %v and %v", at100, beyond)
	}
}

func TestXPRequiredForValueRoundTrips(t *testing.T) {
	for _, v := range []float64{0, 10, 39.5, 40, 55.25, 70, 99.9} {
		xp := XPRequiredForValue(v)
		got := ValueFromXP(xp)
		diff := got - v
		if diff < -1e-6 || diff > 1e-6 {
			t.Fatalf("round trip for value %v produced %v (xp=%v)", v, got, xp)
		}
	}
}
