package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/forcelayout/internal/logging"
	"github.com/san-kum/forcelayout/internal/particle"
)

// Simulator drives a Stepper until it settles or runs out of steps.
// Cancellation is checked between steps; a step in progress always
// completes.
type Simulator struct {
	stepper   Stepper
	metrics   []Metric
	observers []Observer
	log       *slog.Logger
}

func New(stepper Stepper, log *slog.Logger) *Simulator {
	if log == nil {
		log = logging.Discard()
	}
	return &Simulator{
		stepper: stepper,
		log:     log,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Metrics: make(map[string]float64)}
	if cfg.MaxSteps > 0 {
		result.Movements = make([]float64, 0, cfg.MaxSteps)
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Now()
	err := s.loop(ctx, cfg, func(step int, movement float64) bool {
		result.Movements = append(result.Movements, movement)
		result.Steps = step + 1
		return true
	})
	result.Elapsed = time.Since(start)
	result.Converged = len(result.Movements) > 0 && result.FinalMovement() < cfg.StableThreshold

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if err != nil {
		s.log.Warn("run interrupted", "steps", result.Steps, "err", err)
		return result, err
	}
	if result.Converged {
		s.log.Info("layout converged",
			"steps", result.Steps,
			"movement", result.FinalMovement(),
			"elapsed", result.Elapsed,
		)
	} else {
		s.log.Info("step limit reached",
			"steps", result.Steps,
			"movement", result.FinalMovement(),
			"threshold", cfg.StableThreshold,
		)
	}
	return result, nil
}

// RunWithCallback steps like Run without collecting a Result. The callback
// sees every step and stops the run by returning false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(step int, movement float64) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.loop(ctx, cfg, callback)
}

func (s *Simulator) loop(ctx context.Context, cfg Config, callback func(int, float64) bool) error {
	snapper, _ := s.stepper.(Snapshotter)

	for step := 0; cfg.MaxSteps == 0 || step < cfg.MaxSteps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		movement := s.stepper.Step()
		logging.Trace(s.log, "step", "n", step, "movement", movement)

		if len(s.metrics) > 0 {
			var snaps []particle.Snapshot
			if snapper != nil {
				snaps = snapper.Snapshots()
			}
			for _, m := range s.metrics {
				m.Observe(movement, snaps)
			}
		}
		for _, obs := range s.observers {
			obs.OnStep(step, movement)
		}

		if !callback(step, movement) {
			return nil
		}
		if movement < cfg.StableThreshold {
			return nil
		}
	}
	return nil
}
