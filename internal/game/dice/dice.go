// Package dice provides the randomness abstraction every simulation component
// draws from. Injecting a Source keeps spawn selection, boss barrages and
// teleports reproducible under test.
package dice

import (
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"
)

// Source is the randomness provider for the simulation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// seededSource is a deterministic PCG-backed Source.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source. Two sources built from the
// same seed produce identical sequences.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Sequence is a scripted Source that replays fixed values, reducing each
// modulo n. It wraps around when the values are exhausted.
type Sequence struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequence returns a Source replaying values in order.
//
// Precondition: values must be non-empty and non-negative.
func NewSequence(values ...int) *Sequence {
	if len(values) == 0 {
		panic("dice: NewSequence requires at least one value")
	}
	return &Sequence{values: append([]int(nil), values...)}
}

// Intn returns the next scripted value modulo n.
//
// Precondition: n > 0.
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

// Draws returns how many values have been consumed.
func (s *Sequence) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// loggedSource logs every draw at debug level.
type loggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource wraps src so that each draw is logged with its bound and
// result.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) Source {
	return &loggedSource{src: src, logger: logger}
}

func (l *loggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("random draw", zap.Int("n", n), zap.Int("value", v))
	return v
}

// Chance reports true with probability percent/100.
//
// Precondition: 0 <= percent <= 100.
func Chance(src Source, percent int) bool {
	return src.Intn(100) < percent
}

// IntRange returns a value in [lo, hi], inclusive.
//
// Precondition: lo <= hi.
func IntRange(src Source, lo, hi int) int {
	if hi < lo {
		panic("dice: IntRange called with hi < lo")
	}
	return lo + src.Intn(hi-lo+1)
}

// FloatRange returns a value in [lo, hi] quantized to thousandths of the span.
//
// Precondition: lo <= hi.
func FloatRange(src Source, lo, hi float64) float64 {
	if hi < lo {
		panic("dice: FloatRange called with hi < lo")
	}
	return lo + (hi-lo)*float64(src.Intn(1001))/1000
}
