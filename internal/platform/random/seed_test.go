package random

import "testing"

func TestNewRandIsDeterministicForSeed(t *testing.T) {
	first, seed, err := NewRand(99)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	if seed != 99 {
		t.Fatalf("seed = %d, want 99", seed)
	}
	second, _, err := NewRand(99)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	for i := 0; i < 5; i++ {
		if a, b := first.Intn(1000), second.Intn(1000); a != b {
			t.Fatalf("draw %d = %d and %d, want equal", i, a, b)
		}
	}
}

func TestNewRandDrawsSeedWhenZero(t *testing.T) {
	rng, seed, err := NewRand(0)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	if rng == nil {
		t.Fatal("expected generator")
	}
	if seed == 0 {
		t.Fatal("expected non-zero drawn seed")
	}
}
