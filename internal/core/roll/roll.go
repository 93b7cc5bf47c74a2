// Package roll provides seedable random sources and percent-chance rolls.
package roll

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source yields uniformly distributed floats in [0, 1).
//
// *rand.Rand satisfies Source, so callers can share one seeded generator
// across every roll of an encounter.
type Source interface {
	Float64() float64
}

// New returns a deterministic source for seed.
//
// Two sources created with the same seed produce the same sequence, which is
// what makes encounter resolution reproducible.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewSeed draws a high-entropy seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns seed unchanged when it is non-zero and a fresh seed
// otherwise. Zero is the "unset" value for seed flags and config fields.
func ResolveSeed(seed int64) (int64, error) {
	if seed != 0 {
		return seed, nil
	}
	return NewSeed()
}

// Chance reports whether a roll succeeds for a percentage in [0, 100].
//
// The roll succeeds when src.Float64()*100 < percent, so 0 never succeeds and
// 100 or more always succeeds. A source is consumed only when the outcome is
// not already decided by the percentage.
func Chance(src Source, percent float64) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return src.Float64()*100 < percent
}

// Count rolls Chance n times and returns the number of successes.
func Count(src Source, percent float64, n int) int {
	hits := 0
	for i := 0; i < n; i++ {
		if Chance(src, percent) {
			hits++
		}
	}
	return hits
}

// Sequence replays fixed values in order and wraps around.
// It is meant for tests that need to force a particular roll.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence returns a Sequence over values. An empty Sequence always yields 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

// Float64 returns the next value of the sequence.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}
