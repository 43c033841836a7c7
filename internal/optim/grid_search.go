package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/sim"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// setters are the tunable layout settings, keyed by flag-style name.
var setters = map[string]func(*layout.Settings, float64){
	"gravity":       func(s *layout.Settings, v float64) { s.Gravity = v },
	"theta":         func(s *layout.Settings, v float64) { s.Theta = v },
	"drag":          func(s *layout.Settings, v float64) { s.DragCoeff = v },
	"spring-coeff":  func(s *layout.Settings, v float64) { s.SpringCoeff = v },
	"spring-length": func(s *layout.Settings, v float64) { s.SpringLength = v },
	"time-step":     func(s *layout.Settings, v float64) { s.TimeStep = v },
}

func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets the named parameter on s.
func Apply(s *layout.Settings, name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, name, Params())
	}
	set(s, v)
	return nil
}

// ParseRange parses "name=v1,v2,..." into a parameter name and its values.
func ParseRange(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || list == "" {
		return "", nil, fmt.Errorf("bad range %q: want name=v1,v2", spec)
	}
	if _, ok := setters[name]; !ok {
		return "", nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, name, Params())
	}
	parts := strings.Split(list, ",")
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad value in %q: %w", spec, err)
		}
		values[i] = v
	}
	return name, values, nil
}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Score  float64
	Result *sim.Result
	Err    error
}

// Builder creates a stepper for one parameter combination.
type Builder func(params map[string]float64) (sim.Stepper, error)

// Scorer ranks a finished run; lower is better.
type Scorer func(*sim.Result) float64

// ScoreSteps prefers runs that converge in few steps. Runs that hit the
// step limit rank after every converged run, ordered by final movement.
func ScoreSteps(r *sim.Result) float64 {
	if r.Converged {
		return float64(r.Steps)
	}
	return float64(r.Steps) + 1 + r.FinalMovement()*1e6
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := setters[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParam, name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of combinations Search evaluates.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every combination in order and returns the best trial along
// with all trials. Combinations whose build fails are recorded with their
// error and an infinite score.
func (g *GridSearch) Search(ctx context.Context, build Builder, cfg sim.Config, score Scorer) (Trial, []Trial, error) {
	if score == nil {
		score = ScoreSteps
	}
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		t := Trial{Params: params, Score: math.Inf(1)}
		stepper, err := build(params)
		if err != nil {
			t.Err = err
			trials = append(trials, t)
			return nil
		}
		t.Result, t.Err = sim.New(stepper, nil).Run(ctx, cfg)
		if t.Err != nil {
			return t.Err
		}
		t.Score = score(t.Result)
		trials = append(trials, t)
		return nil
	})
	if err != nil {
		return Trial{}, trials, err
	}

	best := Trial{Score: math.Inf(1)}
	for _, t := range trials {
		if t.Err == nil && (best.Params == nil || t.Score < best.Score) {
			best = t
		}
	}
	if best.Params == nil {
		return best, trials, fmt.Errorf("optim: every combination failed")
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		return visit(params)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, visit); err != nil {
			return err
		}
	}
	return nil
}
