// Package entropy provides the random sources injected into board generation
// and dice rolls. Games draw from one seeded generator so that a seed
// reproduces the whole game; fresh seeds come from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
)

// NewRand returns a generator seeded with seed. A zero seed is replaced by a
// crypto-random one.
func NewRand(seed int64) *mrand.Rand {
	if seed == 0 {
		seed = NewSeed()
	}
	return mrand.New(mrand.NewSource(seed))
}

// NewSeed returns a non-zero seed from crypto/rand.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to the runtime-seeded global source.
		slog.Warn("crypto/rand unavailable, using math/rand seed", "error", err)
		return mrand.Int63() | 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// RollD6 rolls one six-sided die.
func RollD6(rng *mrand.Rand) int {
	return rng.Intn(6) + 1
}
