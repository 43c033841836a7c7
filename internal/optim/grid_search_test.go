package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/particle"
	"github.com/san-kum/forcelayout/internal/sim"
)

// geometric settles after a number of steps set by its ratio.
type geometric struct {
	m, ratio float64
}

func (g *geometric) Step() float64 {
	g.m *= g.ratio
	return g.m
}

func TestApply(t *testing.T) {
	s := layout.DefaultSettings()
	for _, name := range Params() {
		if err := Apply(&s, name, 0.25); err != nil {
			t.Errorf("Apply(%s): %v", name, err)
		}
	}
	if s.Theta != 0.25 || s.SpringLength != 0.25 || s.DragCoeff != 0.25 {
		t.Errorf("settings not applied: %+v", s)
	}
	if err := Apply(&s, "mass", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestParseRange(t *testing.T) {
	name, values, err := ParseRange("theta=0.4, 0.8,1.2")
	if err != nil {
		t.Fatal(err)
	}
	if name != "theta" || len(values) != 3 || values[1] != 0.8 {
		t.Errorf("got %s %v", name, values)
	}

	for _, bad := range []string{"theta", "theta=", "theta=a,b", "bogus=1"} {
		if _, _, err := ParseRange(bad); err == nil {
			t.Errorf("ParseRange(%q) should fail", bad)
		}
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	if _, err := NewGridSearch([]string{"theta"}, nil); err == nil {
		t.Error("mismatched lengths should fail")
	}
	if _, err := NewGridSearch([]string{"mass"}, [][]float64{{1}}); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := NewGridSearch([]string{"theta"}, [][]float64{{}}); err == nil {
		t.Error("empty range should fail")
	}
}

func TestSearchPicksFastestConvergence(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"theta", "drag"},
		[][]float64{{0.9, 0.5, 0.1}, {1, 2}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 6 {
		t.Fatalf("expected 6 combinations, got %d", g.Size())
	}

	build := func(p map[string]float64) (sim.Stepper, error) {
		// theta doubles as the decay ratio; drag is ignored
		return &geometric{m: 1, ratio: p["theta"]}, nil
	}
	best, trials, err := g.Search(context.Background(), build, sim.Config{MaxSteps: 100, StableThreshold: 0.02}, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(trials) != 6 {
		t.Errorf("expected 6 trials, got %d", len(trials))
	}
	if best.Params["theta"] != 0.1 {
		t.Errorf("best theta = %v, want 0.1", best.Params["theta"])
	}
	if best.Result.Steps != 2 {
		t.Errorf("best run took %d steps, want 2", best.Result.Steps)
	}
	if trials[0].Params["theta"] != 0.9 || trials[0].Params["drag"] != 1 || trials[1].Params["drag"] != 2 {
		t.Errorf("trials out of grid order: %v, %v", trials[0].Params, trials[1].Params)
	}
}

func TestSearchRecordsBuildErrors(t *testing.T) {
	g, _ := NewGridSearch([]string{"theta"}, [][]float64{{-1, 0.5}})
	build := func(p map[string]float64) (sim.Stepper, error) {
		s := layout.DefaultSettings()
		if err := Apply(&s, "theta", p["theta"]); err != nil {
			return nil, err
		}
		gr := graph.Ring(5)
		return layout.New(gr, s)
	}

	best, trials, err := g.Search(context.Background(), build, sim.Config{MaxSteps: 5}, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !errors.Is(trials[0].Err, particle.ErrInvalidSettings) || !math.IsInf(trials[0].Score, 1) {
		t.Errorf("first trial should fail validation: %+v", trials[0])
	}
	if best.Params["theta"] != 0.5 {
		t.Errorf("best = %v", best.Params)
	}
}

func TestSearchAllFail(t *testing.T) {
	g, _ := NewGridSearch([]string{"theta"}, [][]float64{{1}})
	_, _, err := g.Search(context.Background(), func(map[string]float64) (sim.Stepper, error) {
		return nil, errors.New("boom")
	}, sim.Config{MaxSteps: 1}, nil)
	if err == nil {
		t.Error("expected an error when nothing ran")
	}
}

func TestSearchCancelled(t *testing.T) {
	g, _ := NewGridSearch([]string{"theta"}, [][]float64{{0.5, 0.6}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := g.Search(ctx, func(map[string]float64) (sim.Stepper, error) {
		return &geometric{m: 1, ratio: 0.5}, nil
	}, sim.Config{MaxSteps: 10}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScoreSteps(t *testing.T) {
	converged := &sim.Result{Steps: 500, Converged: true, Movements: []float64{0.001}}
	limited := &sim.Result{Steps: 100, Movements: []float64{0.5}}
	if ScoreSteps(converged) >= ScoreSteps(limited) {
		t.Error("a converged run should beat one that hit the limit")
	}
}
