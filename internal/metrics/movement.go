package metrics

import (
	"github.com/san-kum/forcelayout/internal/particle"
	"github.com/san-kum/forcelayout/internal/sim"
)

// Movement averages the per-step movement reported by the engine.
type Movement struct {
	name    string
	sum     float64
	samples int
}

func NewMovement() *Movement {
	return &Movement{name: "movement"}
}

func (m *Movement) Name() string { return m.name }

func (m *Movement) Observe(movement float64, _ []particle.Snapshot) {
	m.sum += movement
	m.samples++
}

func (m *Movement) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Movement) Reset() {
	m.sum = 0
	m.samples = 0
}

// Default returns a fresh set of every layout metric.
func Default(threshold float64) []sim.Metric {
	return []sim.Metric{
		NewMovement(),
		NewKineticEnergy(),
		NewMaxSpeed(),
		NewSpread(),
		NewStability(threshold),
	}
}
