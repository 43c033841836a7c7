package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/forcelayout/internal/particle"
)

var ErrInvalidConfig = errors.New("sim: invalid config")

// Stepper advances a layout by one iteration and reports its movement.
type Stepper interface {
	Step() float64
}

// Snapshotter is implemented by steppers that can expose their bodies.
// Metrics receive nil snapshots when the stepper is not one.
type Snapshotter interface {
	Snapshots() []particle.Snapshot
}

type Metric interface {
	Name() string
	Observe(movement float64, snaps []particle.Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, movement float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, movement float64)

func (f ObserverFunc) OnStep(step int, movement float64) { f(step, movement) }

type Config struct {
	// MaxSteps bounds the run. Zero means no bound, which requires a
	// positive StableThreshold.
	MaxSteps int
	// StableThreshold stops the run once movement falls below it.
	StableThreshold float64
}

func DefaultConfig() Config {
	return Config{
		MaxSteps:        1000,
		StableThreshold: 0.009,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MaxSteps < 0:
		return fmt.Errorf("%w: max steps must be non-negative, got %d", ErrInvalidConfig, c.MaxSteps)
	case !(c.StableThreshold >= 0):
		return fmt.Errorf("%w: stable threshold must be non-negative, got %v", ErrInvalidConfig, c.StableThreshold)
	case c.MaxSteps == 0 && c.StableThreshold == 0:
		return fmt.Errorf("%w: run needs max steps or a stable threshold", ErrInvalidConfig)
	}
	return nil
}

type Result struct {
	Movements []float64
	Steps     int
	Converged bool
	Metrics   map[string]float64
	Elapsed   time.Duration
}

// FinalMovement is the movement of the last step, or 0 before any step.
func (r *Result) FinalMovement() float64 {
	if len(r.Movements) == 0 {
		return 0
	}
	return r.Movements[len(r.Movements)-1]
}
