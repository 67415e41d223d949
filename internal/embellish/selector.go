// Package embellish is the single source of randomness for persona
// pipelines. Personas never call math/rand directly; they draw through a
// Selector so tests can inject fixed or recorded decisions.
package embellish

import (
	"math/rand/v2"
	"sync"
)

// Selector makes the two kinds of random decision a persona needs.
type Selector interface {
	// IntN returns a value in [0, n). n is always > 0.
	IntN(n int) int
	// Chance returns true with probability p.
	Chance(p float64) bool
}

// Choose picks one option. It returns the zero value for an empty slice.
func Choose[T any](sel Selector, options []T) T {
	var zero T
	if len(options) == 0 {
		return zero
	}
	return options[clamp(sel.IntN(len(options)), len(options))]
}

// Weighted is an option with a relative weight.
type Weighted[T any] struct {
	Value  T
	Weight int
}

// ChooseWeighted picks an option with probability proportional to its
// weight. Non-positive weights are never picked.
func ChooseWeighted[T any](sel Selector, options []Weighted[T]) T {
	var (
		zero  T
		total int
	)
	for _, o := range options {
		if o.Weight > 0 {
			total += o.Weight
		}
	}
	if total == 0 {
		return zero
	}
	n := clamp(sel.IntN(total), total)
	for _, o := range options {
		if o.Weight <= 0 {
			continue
		}
		if n < o.Weight {
			return o.Value
		}
		n -= o.Weight
	}
	return zero
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

type globalSelector struct{}

// Global returns a Selector backed by the math/rand/v2 top-level source,
// which is safe for concurrent use and seeded per process.
func Global() Selector { return globalSelector{} }

func (globalSelector) IntN(n int) int { return rand.IntN(n) }

func (globalSelector) Chance(p float64) bool { return rand.Float64() < p }

// Seeded is a reproducible Selector. It is safe for concurrent use, though
// concurrent callers interleave draws from one stream.
type Seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded returns a Selector whose draws are fully determined by seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Seeded) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func (s *Seeded) Chance(p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}

// Fixed always picks option Index (clamped to the slice) and always answers
// Outcome. The zero value picks the first option and never embellishes.
type Fixed struct {
	Index   int
	Outcome bool
}

func (f Fixed) IntN(n int) int { return clamp(f.Index, n) }

func (f Fixed) Chance(float64) bool { return f.Outcome }

// Scripted replays recorded draws in order. Once a queue runs dry it falls
// back to Fixed{}.
type Scripted struct {
	mu      sync.Mutex
	picks   []int
	chances []bool
}

// NewScripted returns a Scripted selector. picks feed IntN, chances feed
// Chance.
func NewScripted(picks []int, chances []bool) *Scripted {
	return &Scripted{
		picks:   append([]int(nil), picks...),
		chances: append([]bool(nil), chances...),
	}
}

func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.picks) == 0 {
		return 0
	}
	v := s.picks[0]
	s.picks = s.picks[1:]
	return clamp(v, n)
}

func (s *Scripted) Chance(float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.chances) == 0 {
		return false
	}
	v := s.chances[0]
	s.chances = s.chances[1:]
	return v
}

// Remaining reports how many recorded draws are still queued.
func (s *Scripted) Remaining() (picks, chances int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.picks), len(s.chances)
}

// Recorder wraps a Selector and logs every draw so a run can be replayed
// with NewScripted.
type Recorder struct {
	inner Selector

	mu      sync.Mutex
	picks   []int
	chances []bool
}

// NewRecorder wraps inner.
func NewRecorder(inner Selector) *Recorder {
	return &Recorder{inner: inner}
}

func (r *Recorder) IntN(n int) int {
	v := r.inner.IntN(n)
	r.mu.Lock()
	r.picks = append(r.picks, v)
	r.mu.Unlock()
	return v
}

func (r *Recorder) Chance(p float64) bool {
	v := r.inner.Chance(p)
	r.mu.Lock()
	r.chances = append(r.chances, v)
	r.mu.Unlock()
	return v
}

// Replay returns a Scripted selector that reproduces the recorded draws.
func (r *Recorder) Replay() *Scripted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return NewScripted(r.picks, r.chances)
}
