package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Rand is the randomness a Match needs. *rand.Rand satisfies it.
type Rand interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a pseudo-random source for seed.
// The same seed always yields the same shuffles.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// shuffleInPlace is Fisher–Yates: for i from len-1 down to 1 pick j in
// [0, i] and swap. Slices of length <= 1 are left alone.
func shuffleInPlace[T any](items []T, rng Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
