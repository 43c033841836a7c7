package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/particle"
)

// EdgeStats summarises spring lengths in a layout.
type EdgeStats struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	// Deviation is the mean of |length - rest| / rest.
	Deviation float64
}

// Edges measures every link whose endpoints are both present in snaps.
// Self-loops are skipped.
func Edges(snaps []particle.Snapshot, links []graph.Link, rest float64) EdgeStats {
	at := make(map[uint64]int, len(snaps))
	for i, s := range snaps {
		at[s.ID] = i
	}

	lengths := make([]float64, 0, len(links))
	for _, l := range links {
		i, ok1 := at[uint64(l.From)]
		j, ok2 := at[uint64(l.To)]
		if !ok1 || !ok2 || i == j {
			continue
		}
		lengths = append(lengths, snaps[i].Pos.Distance(snaps[j].Pos))
	}

	stats := EdgeStats{Count: len(lengths)}
	if len(lengths) == 0 {
		return stats
	}

	stats.Mean, stats.StdDev = stat.MeanStdDev(lengths, nil)
	if len(lengths) == 1 {
		stats.StdDev = 0
	}
	stats.Min, stats.Max = math.Inf(1), math.Inf(-1)
	dev := 0.0
	for _, l := range lengths {
		stats.Min = math.Min(stats.Min, l)
		stats.Max = math.Max(stats.Max, l)
		if rest > 0 {
			dev += math.Abs(l-rest) / rest
		}
	}
	stats.Deviation = dev / float64(len(lengths))
	return stats
}

// NearestNeighbor returns the mean distance from each body to its closest
// other body. It is quadratic in the number of bodies.
func NearestNeighbor(snaps []particle.Snapshot) float64 {
	if len(snaps) < 2 {
		return 0
	}
	nearest := make([]float64, len(snaps))
	for i := range snaps {
		best := math.Inf(1)
		for j := range snaps {
			if i != j {
				best = math.Min(best, snaps[i].Pos.Distance(snaps[j].Pos))
			}
		}
		nearest[i] = best
	}
	return stat.Mean(nearest, nil)
}
