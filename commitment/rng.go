/*
rng.go - Seeded, index-addressable deterministic random source

PURPOSE:
  The reward stream must be reproducible: the same (seed, index) pair
  always yields the same value, forever. That is what makes every bonus
  and penalty auditable after the fact and testable without mocking.

HOW:
  Each primitive draw is a pure function of (seed, index): a PCG
  generator keyed by exactly that pair produces the value. The Sequencer
  is an explicit value threaded through every call - there is no hidden
  global cursor. Consuming a draw advances Index by exactly one; the
  caller persists the advanced index back into Settings.

RULES:
  - The cursor only moves forward
  - Never reseed mid-commitment; a new seed changes the entire future
    reward stream
*/
package commitment

import "math/rand/v2"

// Sequencer is an explicit position in the deterministic reward stream.
// Zero-cost to copy; callers persist Index after consuming draws.
type Sequencer struct {
	Seed  uint64
	Index uint64
}

// NewSequencer resumes the stream identified by seed at the given cursor.
func NewSequencer(seed, index uint64) Sequencer {
	return Sequencer{Seed: seed, Index: index}
}

// NewSeed generates a fresh commitment seed. Called exactly once per
// commitment, at activation.
func NewSeed() uint64 {
	return rand.Uint64()
}

// valueAt is the pure (seed, index) -> [0,1) mapping underlying every
// draw. Keying a PCG by the pair (rather than advancing one generator)
// is what makes the stream index-addressable.
func valueAt(seed, index uint64) float64 {
	return rand.New(rand.NewPCG(seed, index)).Float64()
}

// Float64 consumes one draw: returns a value in [0,1) and the sequencer
// advanced by exactly one.
func (s Sequencer) Float64() (float64, Sequencer) {
	v := valueAt(s.Seed, s.Index)
	s.Index++
	return v, s
}

// IntBetween consumes one draw and maps it to an integer in [min, max]
// inclusive. Degenerate ranges still consume a draw so the cursor
// arithmetic stays uniform.
func (s Sequencer) IntBetween(min, max int) (int, Sequencer) {
	v, next := s.Float64()
	if max <= min {
		return min, next
	}
	return min + int(v*float64(max-min+1)), next
}

// Chance consumes one draw and reports whether it fell under probability.
func (s Sequencer) Chance(probability float64) (bool, Sequencer) {
	v, next := s.Float64()
	return v < probability, next
}
