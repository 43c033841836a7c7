package layout

import "math/rand"

// Random is the deterministic source used for seeding and jitter.
type Random interface {
	// NextDouble returns a value in [0, 1).
	NextDouble() float64
}

type seededRandom struct {
	r *rand.Rand
}

// NewRandom returns a reproducible source for seed.
func NewRandom(seed int64) Random {
	return &seededRandom{r: rand.New(rand.NewSource(seed))}
}

func (s *seededRandom) NextDouble() float64 { return s.r.Float64() }
