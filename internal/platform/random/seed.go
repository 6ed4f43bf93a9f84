// Package random provides cryptographically seeded pseudo-random sources.
//
// Gameplay randomness (derangements, swap delays, column sampling) runs on
// math/rand generators so tests can pin a seed; production seeds come from
// crypto/rand.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a generator seeded from crypto/rand. The result is not safe
// for concurrent use; wrap it with Locked when it is shared across goroutines.
func NewRand() (*rand.Rand, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Source is the subset of *rand.Rand used by gameplay code.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Locked serializes access to a generator shared by several goroutines.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocked wraps rng. A nil rng is replaced by a crypto-seeded one.
func NewLocked(rng *rand.Rand) (*Locked, error) {
	if rng == nil {
		var err error
		rng, err = NewRand()
		if err != nil {
			return nil, err
		}
	}
	return &Locked{rng: rng}, nil
}

// Intn returns a value in [0, n).
func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

// Float64 returns a value in [0, 1).
func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}
