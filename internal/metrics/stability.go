package metrics

import (
	"math"

	"github.com/san-kum/forcelayout/internal/particle"
)

// Stability is the fraction of steps whose movement stayed below threshold.
type Stability struct {
	name      string
	threshold float64
	stable    int
	samples   int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(movement float64, _ []particle.Snapshot) {
	s.samples++
	if movement < s.threshold {
		s.stable++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.stable) / float64(s.samples)
}

func (s *Stability) Reset() {
	s.stable = 0
	s.samples = 0
}

// Spread is the diagonal of the bounding box of the most recent step.
type Spread struct {
	name     string
	diagonal float64
}

func NewSpread() *Spread {
	return &Spread{name: "spread"}
}

func (s *Spread) Name() string { return s.name }

func (s *Spread) Observe(_ float64, snaps []particle.Snapshot) {
	if len(snaps) == 0 {
		return
	}
	s.diagonal = Diagonal(snaps)
}

func (s *Spread) Value() float64 { return s.diagonal }
func (s *Spread) Reset()         { s.diagonal = 0 }

// Diagonal returns the bounding-box diagonal of the given positions.
func Diagonal(snaps []particle.Snapshot) float64 {
	if len(snaps) == 0 {
		return 0
	}
	dim := snaps[0].Pos.Dim()
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	for k := range lo {
		lo[k] = math.Inf(1)
		hi[k] = math.Inf(-1)
	}
	for _, s := range snaps {
		for k, x := range s.Pos {
			lo[k] = math.Min(lo[k], x)
			hi[k] = math.Max(hi[k], x)
		}
	}
	sum := 0.0
	for k := range lo {
		d := hi[k] - lo[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}
