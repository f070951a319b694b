package entropy

import "testing"

func TestNewRandDeterministic(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 20; i++ {
		if x, y := a.Int63(), b.Int63(); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestNewSeedNonZero(t *testing.T) {
	for i := 0; i < 50; i++ {
		if NewSeed() <= 0 {
			t.Fatal("seed must be positive")
		}
	}
}

func TestRollD6Range(t *testing.T) {
	rng := NewRand(3)
	seen := make(map[int]bool)
	for i := 0; i < 600; i++ {
		n := RollD6(rng)
		if n < 1 || n > 6 {
			t.Fatalf("die rolled %d", n)
		}
		seen[n] = true
	}
	if len(seen) != 6 {
		t.Errorf("only %d faces seen", len(seen))
	}
}
