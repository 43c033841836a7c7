// Package layout computes force-directed embeddings of graphs.
//
// A ForceLayout owns one Body per graph node, stored in a contiguous arena
// and addressed by integer handles. Every Step rebuilds a Barnes-Hut tree,
// accumulates repulsion, drag and spring forces, integrates motion and
// returns the mean body speed. Callers decide when to stop, typically once
// the returned movement drops below Settings.StableThreshold.
//
// A ForceLayout is single-writer: Step, SetPosition and the accessors must
// not be called concurrently. Step itself fans work out across goroutines.
package layout

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/particle"
	"github.com/san-kum/forcelayout/internal/spatial"
)

// minChunk is the smallest per-goroutine slice of bodies; smaller passes
// run inline.
const minChunk = 64

// springSalt separates spring jitter from tree jitter within a step.
const springSalt = 0x5bd1e995

// ForceLayout is the simulation engine.
type ForceLayout struct {
	settings Settings
	random   Random
	log      *slog.Logger
	workers  int

	ids     []graph.NodeID
	index   map[graph.NodeID]int
	bodies  []particle.Body
	springs int

	tree *spatial.Tree

	// partials[w] holds worker w's spring forces, flattened body by body.
	partials [][]float64
	speeds   []float64
	steps    int
}

// New builds one body per node of g, links springs along its edges and
// seeds initial positions.
func New(g graph.Reader, s Settings, opts ...Option) (*ForceLayout, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	l := &ForceLayout{
		settings: s,
		log:      slog.New(slog.DiscardHandler),
		workers:  s.workers(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.random == nil {
		l.random = NewRandom(s.Seed)
	}

	dim := s.Dimensions
	nodes := g.Nodes()
	l.ids = nodes
	l.index = make(map[graph.NodeID]int, len(nodes))
	l.bodies = make([]particle.Body, len(nodes))
	for i, id := range nodes {
		if _, dup := l.index[id]; dup {
			return nil, fmt.Errorf("node %d: %w", id, particle.ErrDuplicateNode)
		}
		l.index[id] = i
		l.bodies[i] = particle.NewBody(dim, g.Degree(id))
	}

	for _, link := range g.Links() {
		from, ok := l.index[link.From]
		if !ok {
			return nil, fmt.Errorf("link %d->%d: node %d: %w", link.From, link.To, link.From, particle.ErrUnknownNode)
		}
		to, ok := l.index[link.To]
		if !ok {
			return nil, fmt.Errorf("link %d->%d: node %d: %w", link.From, link.To, link.To, particle.ErrUnknownNode)
		}
		l.bodies[from].Springs = append(l.bodies[from].Springs, to)
		l.springs++
	}

	l.tree = spatial.New(dim, s.Theta, s.Gravity)
	l.partials = make([][]float64, l.workers)
	for w := range l.partials {
		l.partials[w] = make([]float64, len(nodes)*dim)
	}
	l.speeds = make([]float64, l.workers)

	l.seedPositions()

	l.log.Debug("layout initialized",
		"bodies", len(l.bodies),
		"springs", l.springs,
		"dimensions", dim,
		"workers", l.workers,
	)
	return l, nil
}

// Step performs one iteration and returns the mean body speed, measured
// before the velocity clamp. An empty layout returns 0.
func (l *ForceLayout) Step() float64 {
	if len(l.bodies) == 0 {
		return 0
	}
	l.accumulate()
	movement := l.integrate()
	l.steps++
	return movement
}

func (l *ForceLayout) accumulate() {
	salt := l.nextSalt()

	// the tree must be complete before any query starts
	l.tree.InsertBodies(l.bodies, salt)

	drag := -l.settings.DragCoeff
	particle.ParallelFor(len(l.bodies), l.workers, minChunk, func(_, start, end int) {
		for i := start; i < end; i++ {
			b := &l.bodies[i]
			b.Force.Reset()
			l.tree.UpdateBodyForce(i)
			b.Force.AddScaled(b.Velocity, drag)
		}
	})

	l.updateSpringForces(salt ^ springSalt)
}

// updateSpringForces pulls every spring source toward its target and the
// target back by the same amount. A target can belong to another worker's
// chunk, so each worker writes into its own partial buffer and the buffers
// are merged in worker order afterwards.
func (l *ForceLayout) updateSpringForces(salt uint64) {
	if l.springs == 0 {
		return
	}

	dim := l.settings.Dimensions
	k := l.settings.SpringCoeff
	rest := l.settings.SpringLength

	particle.ParallelFor(len(l.bodies), l.workers, minChunk, func(w, start, end int) {
		acc := l.partials[w]
		dist := particle.NewVector(dim)
		for i := start; i < end; i++ {
			src := &l.bodies[i]
			for s, j := range src.Springs {
				dist.Set(l.bodies[j].Pos)
				dist.Sub(src.Pos)
				r := dist.Length()
				if r == 0 {
					particle.Jitter(dist, salt, i, s)
					r = dist.Length()
				}

				coeff := k * (r - rest) / r
				particle.Vector(acc[i*dim:(i+1)*dim]).AddScaled(dist, coeff)
				particle.Vector(acc[j*dim:(j+1)*dim]).AddScaled(dist, -coeff)
			}
		}
	})

	particle.ParallelFor(len(l.bodies), l.workers, minChunk, func(_, start, end int) {
		for i := start; i < end; i++ {
			f := l.bodies[i].Force
			for w := range l.partials {
				p := particle.Vector(l.partials[w][i*dim : (i+1)*dim])
				f.Add(p)
				p.Reset()
			}
		}
	})
}

func (l *ForceLayout) integrate() float64 {
	dt := l.settings.TimeStep

	particle.ParallelFor(len(l.bodies), l.workers, minChunk, func(w, start, end int) {
		total := 0.0
		for i := start; i < end; i++ {
			b := &l.bodies[i]
			b.Velocity.AddScaled(b.Force, dt/b.Mass)

			v := b.Velocity.Length()
			total += v
			if v > 1 {
				b.Velocity.Scale(1 / v)
			}

			b.Pos.AddScaled(b.Velocity, dt)
		}
		l.speeds[w] = total
	})

	total := 0.0
	for w := range l.speeds {
		total += l.speeds[w]
		l.speeds[w] = 0
	}
	return total / float64(len(l.bodies))
}

// nextSalt draws the per-step jitter seed from the layout's random source.
func (l *ForceLayout) nextSalt() uint64 {
	return uint64(l.random.NextDouble() * (1 << 53))
}

// SetPosition moves the body of id, leaving velocity and force untouched.
func (l *ForceLayout) SetPosition(id graph.NodeID, pos particle.Vector) error {
	i, ok := l.index[id]
	if !ok {
		return fmt.Errorf("node %d: %w", id, particle.ErrNotFound)
	}
	if pos.Dim() != l.settings.Dimensions {
		return fmt.Errorf("node %d: want %d coordinates, got %d: %w", id, l.settings.Dimensions, pos.Dim(), particle.ErrDimensionMismatch)
	}
	l.bodies[i].Pos.Set(pos)
	return nil
}

// Body returns a copy of the body of id. The boolean is false when id has
// no body.
func (l *ForceLayout) Body(id graph.NodeID) (particle.Snapshot, bool) {
	i, ok := l.index[id]
	if !ok {
		return particle.Snapshot{}, false
	}
	return l.bodies[i].Snapshot(uint64(id)), true
}

// Snapshots copies every body in node enumeration order.
func (l *ForceLayout) Snapshots() []particle.Snapshot {
	out := make([]particle.Snapshot, len(l.bodies))
	for i := range l.bodies {
		out[i] = l.bodies[i].Snapshot(uint64(l.ids[i]))
	}
	return out
}

// Springs lists every spring as a link between node ids.
func (l *ForceLayout) Springs() []graph.Link {
	out := make([]graph.Link, 0, l.springs)
	for i := range l.bodies {
		for _, j := range l.bodies[i].Springs {
			out = append(out, graph.Link{From: l.ids[i], To: l.ids[j]})
		}
	}
	return out
}

// Bounds returns the componentwise minimum and maximum body positions.
func (l *ForceLayout) Bounds() (min, max particle.Vector) {
	dim := l.settings.Dimensions
	if len(l.bodies) == 0 {
		return particle.NewVector(dim), particle.NewVector(dim)
	}
	min = l.bodies[0].Pos.Clone()
	max = l.bodies[0].Pos.Clone()
	for i := 1; i < len(l.bodies); i++ {
		for k, x := range l.bodies[i].Pos {
			if x < min[k] {
				min[k] = x
			}
			if x > max[k] {
				max[k] = x
			}
		}
	}
	return min, max
}

// Tree exposes the tree built by the most recent Step for inspection.
func (l *ForceLayout) Tree() *spatial.Tree { return l.tree }

func (l *ForceLayout) Settings() Settings { return l.settings }
func (l *ForceLayout) Len() int           { return len(l.bodies) }
func (l *ForceLayout) SpringCount() int   { return l.springs }
func (l *ForceLayout) Steps() int         { return l.steps }
