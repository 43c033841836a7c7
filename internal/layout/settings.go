package layout

import (
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/forcelayout/internal/particle"
)

// MaxDimensions bounds Settings.Dimensions; tree orthant indices are bit
// masks over the axes.
const MaxDimensions = 16

const (
	DefaultStableThreshold = 0.009
	DefaultGravity         = -1.2
	DefaultTheta           = 0.8
	DefaultDragCoeff       = 0.02
	DefaultSpringCoeff     = 0.0008
	DefaultSpringLength    = 30.0
	DefaultTimeStep        = 20.0
	DefaultDimensions      = 2
	DefaultSeed            = 42
)

// Settings configure a layout run. They are copied at construction and
// never change afterwards.
type Settings struct {
	// Gravity is the signed repulsion strength; negative values repel.
	Gravity float64
	// Theta is the Barnes-Hut opening angle. Zero gives exact pairwise sums.
	Theta        float64
	DragCoeff    float64
	SpringCoeff  float64
	SpringLength float64
	TimeStep     float64
	// StableThreshold is reported to drivers; the engine never stops itself.
	StableThreshold float64

	Dimensions int
	Seed       int64
	// Workers caps goroutines per pass. Zero means runtime.NumCPU().
	// Results are reproducible for a fixed worker count.
	Workers int
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:         DefaultGravity,
		Theta:           DefaultTheta,
		DragCoeff:       DefaultDragCoeff,
		SpringCoeff:     DefaultSpringCoeff,
		SpringLength:    DefaultSpringLength,
		TimeStep:        DefaultTimeStep,
		StableThreshold: DefaultStableThreshold,
		Dimensions:      DefaultDimensions,
		Seed:            DefaultSeed,
	}
}

// Validate reports the first out-of-range setting.
func (s Settings) Validate() error {
	switch {
	case s.Dimensions < 1 || s.Dimensions > MaxDimensions:
		return fmt.Errorf("%w: dimensions must be in [1, %d], got %d", particle.ErrInvalidSettings, MaxDimensions, s.Dimensions)
	case !finite(s.Gravity):
		return fmt.Errorf("%w: gravity must be finite", particle.ErrInvalidSettings)
	case !(s.Theta >= 0):
		return fmt.Errorf("%w: theta must be non-negative, got %v", particle.ErrInvalidSettings, s.Theta)
	case !finite(s.DragCoeff) || s.DragCoeff < 0:
		return fmt.Errorf("%w: drag coefficient must be non-negative, got %v", particle.ErrInvalidSettings, s.DragCoeff)
	case !finite(s.SpringCoeff) || s.SpringCoeff < 0:
		return fmt.Errorf("%w: spring coefficient must be non-negative, got %v", particle.ErrInvalidSettings, s.SpringCoeff)
	case !finite(s.SpringLength) || s.SpringLength <= 0:
		return fmt.Errorf("%w: spring length must be positive, got %v", particle.ErrInvalidSettings, s.SpringLength)
	case !finite(s.TimeStep) || s.TimeStep <= 0:
		return fmt.Errorf("%w: time step must be positive, got %v", particle.ErrInvalidSettings, s.TimeStep)
	case !(s.StableThreshold >= 0):
		return fmt.Errorf("%w: stable threshold must be non-negative, got %v", particle.ErrInvalidSettings, s.StableThreshold)
	case s.Workers < 0:
		return fmt.Errorf("%w: workers must be non-negative, got %d", particle.ErrInvalidSettings, s.Workers)
	}
	return nil
}

func (s Settings) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.NumCPU()
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
