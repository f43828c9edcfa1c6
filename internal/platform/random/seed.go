// Package random provides seed generation for deterministic simulations.
//
// Turn resolution draws damage rolls from a seeded math/rand source so a
// session can be replayed; NewSeed supplies a high-entropy seed when the
// caller did not pin one.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a generator for seed, drawing a fresh seed when seed is zero.
// The seed actually used is returned so it can be logged for replay.
func NewRand(seed int64) (*rand.Rand, int64, error) {
	if seed == 0 {
		fresh, err := NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = fresh
	}
	return rand.New(rand.NewSource(seed)), seed, nil
}
