package random

import "testing"

func TestNewSeedProducesDistinctValues(t *testing.T) {
	seen := map[uint64]bool{}
	for i := 0; i < 8; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("new seed: %v", err)
		}
		seen[seed] = true
	}
	// Eight collisions from crypto/rand would mean the source is broken.
	if len(seen) < 2 {
		t.Fatalf("expected distinct seeds, got %d unique of 8", len(seen))
	}
}
