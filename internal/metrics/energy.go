package metrics

import "github.com/san-kum/forcelayout/internal/particle"

// KineticEnergy averages the total kinetic energy sum(m*v^2/2) over steps.
type KineticEnergy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(_ float64, snaps []particle.Snapshot) {
	if snaps == nil {
		return
	}
	e.totalEnergy += Energy(snaps)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// Energy is the kinetic energy of one snapshot set.
func Energy(snaps []particle.Snapshot) float64 {
	total := 0.0
	for _, s := range snaps {
		v := s.Velocity.Length()
		total += 0.5 * s.Mass * v * v
	}
	return total
}

// MaxSpeed tracks the largest body speed seen in any step.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(_ float64, snaps []particle.Snapshot) {
	for _, s := range snaps {
		if v := s.Velocity.Length(); v > m.max {
			m.max = v
		}
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }
