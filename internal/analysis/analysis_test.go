package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/particle"
)

func bodies(points ...particle.Vector) []particle.Snapshot {
	snaps := make([]particle.Snapshot, len(points))
	for i, p := range points {
		snaps[i] = particle.Snapshot{ID: uint64(i + 1), Mass: 1, Pos: p}
	}
	return snaps
}

func TestEdges(t *testing.T) {
	snaps := bodies(
		particle.Vector{0, 0},
		particle.Vector{3, 4},
		particle.Vector{3, 14},
	)
	links := []graph.Link{{From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 3}, {From: 1, To: 7}}

	s := Edges(snaps, links, 10)
	if s.Count != 2 {
		t.Fatalf("expected 2 measured edges, got %d", s.Count)
	}
	if math.Abs(s.Mean-7.5) > 1e-12 {
		t.Errorf("mean = %v, want 7.5", s.Mean)
	}
	if s.Min != 5 || s.Max != 10 {
		t.Errorf("min/max = %v/%v, want 5/10", s.Min, s.Max)
	}
	// sample standard deviation of {5, 10}
	if math.Abs(s.StdDev-math.Sqrt(12.5)) > 1e-12 {
		t.Errorf("stddev = %v", s.StdDev)
	}
	if math.Abs(s.Deviation-0.25) > 1e-12 {
		t.Errorf("deviation = %v, want 0.25", s.Deviation)
	}
}

func TestEdgesDegenerate(t *testing.T) {
	if s := Edges(nil, nil, 30); s.Count != 0 || s.Mean != 0 {
		t.Errorf("expected zero stats, got %+v", s)
	}

	snaps := bodies(particle.Vector{0}, particle.Vector{2})
	s := Edges(snaps, []graph.Link{{From: 1, To: 2}}, 2)
	if s.StdDev != 0 || s.Deviation != 0 || s.Mean != 2 {
		t.Errorf("single edge stats = %+v", s)
	}
}

func TestNearestNeighbor(t *testing.T) {
	snaps := bodies(particle.Vector{0, 0}, particle.Vector{1, 0}, particle.Vector{5, 0})
	// nearest distances 1, 1, 4
	if got := NearestNeighbor(snaps); math.Abs(got-2) > 1e-12 {
		t.Errorf("NearestNeighbor = %v, want 2", got)
	}
	if NearestNeighbor(snaps[:1]) != 0 {
		t.Error("a single body has no neighbour")
	}
}

func TestConvergenceRate(t *testing.T) {
	movements := make([]float64, 20)
	for i := range movements {
		movements[i] = 2 * math.Exp(-0.3*float64(i))
	}
	if got := ConvergenceRate(movements); math.Abs(got+0.3) > 1e-9 {
		t.Errorf("rate = %v, want -0.3", got)
	}

	if ConvergenceRate([]float64{1}) != 0 {
		t.Error("one sample has no rate")
	}
	if ConvergenceRate([]float64{0, 0, 0}) != 0 {
		t.Error("zero movement has no rate")
	}
}

func TestStepsToThreshold(t *testing.T) {
	movements := make([]float64, 10)
	for i := range movements {
		movements[i] = math.Exp(-0.5 * float64(i))
	}
	// exp(-0.5*s) drops below exp(-9.8) after s = 19.6, at step 20
	if got := StepsToThreshold(movements, math.Exp(-9.8)); got != 11 {
		t.Errorf("StepsToThreshold = %d, want 11", got)
	}

	if got := StepsToThreshold(movements, 1); got != 0 {
		t.Errorf("already settled: got %d, want 0", got)
	}
	if got := StepsToThreshold([]float64{1, 2, 4}, 0.1); got != -1 {
		t.Errorf("growing movement: got %d, want -1", got)
	}
}

func TestProject(t *testing.T) {
	snaps := bodies(particle.Vector{1, 2, 3}, particle.Vector{4, 5, 6})

	p, err := Project(snaps, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Points[1].X != 6 || p.Points[1].Y != 4 || p.Points[1].ID != 2 {
		t.Errorf("unexpected point %+v", p.Points[1])
	}

	if _, err := Project(snaps, 0, 3); !errors.Is(err, particle.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestProjectionToASCII(t *testing.T) {
	snaps := bodies(particle.Vector{-5, -5}, particle.Vector{5, 5}, particle.Vector{5, -5})
	p, err := Project(snaps, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	out := ProjectionToASCII(p, 21, 11)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(lines))
	}
	if got := strings.Count(out, "•"); got != 3 {
		t.Errorf("expected 3 bodies, got %d", got)
	}
	if !strings.Contains(out, "┼") {
		t.Error("expected the axes to cross")
	}

	if ProjectionToASCII(nil, 10, 10) != "" {
		t.Error("nil projection should render nothing")
	}
}
