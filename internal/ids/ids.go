// Package ids provides the order/trade identifier source: nine characters
// drawn uniformly from [0-9A-Z]. The source is an interface so tests can
// substitute a deterministic sequence.
package ids

import "math/rand"

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Source yields order identifiers.
type Source interface {
	NextID() string
}

type randomSource struct {
	rng *rand.Rand
}

// NewRandom returns a Source backed by the given seed.
func NewRandom(seed int64) Source {
	return &randomSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *randomSource) NextID() string {
	buf := make([]byte, 9)
	for i := range buf {
		buf[i] = alphabet[s.rng.Intn(len(alphabet))]
	}
	return string(buf)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() string

func (f SourceFunc) NextID() string { return f() }
