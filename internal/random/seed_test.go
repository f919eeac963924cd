package random

import (
	"errors"
	"testing"
)

func TestNewSeedVaries(t *testing.T) {
	seen := make(map[int64]bool)
	for range 8 {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("NewSeed returned error: %v", err)
		}
		seen[seed] = true
	}
	if len(seen) < 2 {
		t.Fatalf("NewSeed returned the same value 8 times")
	}
}

func TestResolveSeedPrefersConfigured(t *testing.T) {
	seed, source, err := ResolveSeed(42, func() (int64, error) {
		t.Fatal("generator must not be called when a seed is configured")
		return 0, nil
	})
	if err != nil {
		t.Fatalf("ResolveSeed returned error: %v", err)
	}
	if seed != 42 || source != SeedSourceConfig {
		t.Fatalf("ResolveSeed = %d, %q; want 42, config", seed, source)
	}
}

func TestResolveSeedGeneratesWhenUnset(t *testing.T) {
	seed, source, err := ResolveSeed(0, func() (int64, error) { return 7, nil })
	if err != nil {
		t.Fatalf("ResolveSeed returned error: %v", err)
	}
	if seed != 7 || source != SeedSourceCrypto {
		t.Fatalf("ResolveSeed = %d, %q; want 7, crypto", seed, source)
	}
}

func TestResolveSeedPropagatesError(t *testing.T) {
	boom := errors.New("entropy exhausted")
	_, _, err := ResolveSeed(0, func() (int64, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestResolveSeedDefaultGenerator(t *testing.T) {
	if _, source, err := ResolveSeed(0, nil); err != nil || source != SeedSourceCrypto {
		t.Fatalf("ResolveSeed(0, nil) = %q, %v", source, err)
	}
}
