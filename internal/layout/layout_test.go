package layout_test

import (
	"bytes"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/particle"
)

// rawGraph lets specs feed the engine inputs an in-memory Graph would never
// produce.
type rawGraph struct {
	nodes []graph.NodeID
	links []graph.Link
}

func (r rawGraph) Nodes() []graph.NodeID   { return r.nodes }
func (r rawGraph) Links() []graph.Link     { return r.links }
func (r rawGraph) Degree(graph.NodeID) int { return 0 }

func settings(dim int) layout.Settings {
	s := layout.DefaultSettings()
	s.Dimensions = dim
	s.Workers = 1
	return s
}

func mustLayout(g graph.Reader, s layout.Settings) *layout.ForceLayout {
	l, err := layout.New(g, s)
	Expect(err).NotTo(HaveOccurred())
	return l
}

func allNonZero(v particle.Vector) bool {
	for _, x := range v {
		if x == 0 {
			return false
		}
	}
	return true
}

func linkedPair() *graph.Graph {
	g := graph.New()
	g.AddLink(1, 2)
	return g
}

func isolatedPair() *graph.Graph {
	g := graph.New()
	g.AddNode(1)
	g.AddNode(2)
	return g
}

var _ = Describe("ForceLayout", func() {
	Describe("construction", func() {
		DescribeTable("rejects invalid settings",
			func(mutate func(*layout.Settings)) {
				s := layout.DefaultSettings()
				mutate(&s)
				_, err := layout.New(linkedPair(), s)
				Expect(err).To(MatchError(particle.ErrInvalidSettings))
			},
			Entry("zero dimensions", func(s *layout.Settings) { s.Dimensions = 0 }),
			Entry("too many dimensions", func(s *layout.Settings) { s.Dimensions = layout.MaxDimensions + 1 }),
			Entry("negative theta", func(s *layout.Settings) { s.Theta = -0.1 }),
			Entry("NaN theta", func(s *layout.Settings) { s.Theta = math.NaN() }),
			Entry("zero time step", func(s *layout.Settings) { s.TimeStep = 0 }),
			Entry("negative drag", func(s *layout.Settings) { s.DragCoeff = -1 }),
			Entry("zero spring length", func(s *layout.Settings) { s.SpringLength = 0 }),
			Entry("infinite gravity", func(s *layout.Settings) { s.Gravity = math.Inf(-1) }),
			Entry("negative workers", func(s *layout.Settings) { s.Workers = -2 }),
		)

		It("accepts the documented defaults", func() {
			s := layout.DefaultSettings()
			Expect(s.Validate()).To(Succeed())
			Expect(s.StableThreshold).To(Equal(0.009))
			Expect(s.Gravity).To(Equal(-1.2))
			Expect(s.Theta).To(Equal(0.8))
			Expect(s.DragCoeff).To(Equal(0.02))
			Expect(s.SpringCoeff).To(Equal(0.0008))
			Expect(s.SpringLength).To(Equal(30.0))
			Expect(s.TimeStep).To(Equal(20.0))
		})

		It("rejects links to nodes that were never enumerated", func() {
			g := rawGraph{
				nodes: []graph.NodeID{1},
				links: []graph.Link{{From: 1, To: 9}},
			}
			_, err := layout.New(g, settings(2))
			Expect(err).To(MatchError(particle.ErrUnknownNode))
		})

		It("rejects duplicate node ids", func() {
			g := rawGraph{nodes: []graph.NodeID{1, 1}}
			_, err := layout.New(g, settings(2))
			Expect(err).To(MatchError(particle.ErrDuplicateNode))
		})

		It("derives mass from degree", func() {
			g := graph.New()
			g.AddLink(1, 2)
			g.AddLink(1, 3)
			g.AddLink(1, 4)
			l := mustLayout(g, settings(2))

			hub, ok := l.Body(1)
			Expect(ok).To(BeTrue())
			Expect(hub.Mass).To(Equal(2.0))

			leaf, _ := l.Body(4)
			Expect(leaf.Mass).To(BeNumerically("~", 1+1.0/3, 1e-12))
			Expect(l.SpringCount()).To(Equal(3))
		})

		It("logs construction at debug level", func() {
			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			_, err := layout.New(linkedPair(), settings(2), layout.WithLogger(log))
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("layout initialized"))
			Expect(buf.String()).To(ContainSubstring("bodies=2"))
		})
	})

	Describe("seeding", func() {
		It("moves every body off the origin", func() {
			for _, dim := range []int{1, 2, 3} {
				g, err := graph.Parse("grid:4x4")
				Expect(err).NotTo(HaveOccurred())
				l := mustLayout(g, settings(dim))
				for _, snap := range l.Snapshots() {
					Expect(snap.Pos.Length()).To(BeNumerically(">", 0), "dim %d node %d", dim, snap.ID)
				}
			}
		})

		It("places leaves around an already placed hub", func() {
			g := graph.New()
			for i := graph.NodeID(2); i <= 6; i++ {
				g.AddLink(1, i)
			}
			s := settings(2)
			l := mustLayout(g, s)

			hub, _ := l.Body(1)
			limit := s.SpringLength / 2 * math.Sqrt2
			for i := graph.NodeID(2); i <= 6; i++ {
				leaf, _ := l.Body(i)
				Expect(leaf.Pos.Distance(hub.Pos)).To(BeNumerically("<=", limit))
			}
		})

		It("is reproducible for a fixed seed", func() {
			g, _ := graph.Parse("tree:3")
			a := mustLayout(g, settings(3))
			b := mustLayout(g, settings(3))
			for i, snap := range a.Snapshots() {
				Expect(snap.Pos).To(Equal(b.Snapshots()[i].Pos))
			}
		})

		It("depends on the seed", func() {
			g, _ := graph.Parse("tree:3")
			s := settings(2)
			a := mustLayout(g, s)
			s.Seed = 7
			b := mustLayout(g, s)
			Expect(a.Snapshots()[0].Pos).NotTo(Equal(b.Snapshots()[0].Pos))
		})

		It("uses an injected random source", func() {
			l, err := layout.New(isolatedPair(), settings(2), layout.WithRandom(constRandom(0.75)))
			Expect(err).NotTo(HaveOccurred())
			snap, _ := l.Body(1)
			Expect(snap.Pos).To(Equal(particle.Vector{7.5, 7.5}))
		})
	})

	Describe("Step", func() {
		It("moves a linked pair in 3D", func() {
			l := mustLayout(linkedPair(), settings(3))
			Expect(l.Step()).To(BeNumerically(">", 0))

			for _, id := range []graph.NodeID{1, 2} {
				snap, ok := l.Body(id)
				Expect(ok).To(BeTrue())
				Expect(allNonZero(snap.Pos)).To(BeTrue(), "node %d at %v", id, snap.Pos)
			}
		})

		It("moves isolated nodes through repulsion alone", func() {
			for _, dim := range []int{2, 3} {
				l := mustLayout(isolatedPair(), settings(dim))
				before := l.Snapshots()
				Expect(l.Step()).To(BeNumerically(">", 0))

				for i, snap := range l.Snapshots() {
					Expect(allNonZero(snap.Pos)).To(BeTrue())
					Expect(snap.Pos).NotTo(Equal(before[i].Pos))
				}
			}
		})

		It("pushes isolated nodes apart", func() {
			l := mustLayout(isolatedPair(), settings(2))
			a, _ := l.Body(1)
			b, _ := l.Body(2)
			before := a.Pos.Distance(b.Pos)
			l.Step()
			a, _ = l.Body(1)
			b, _ = l.Body(2)
			Expect(a.Pos.Distance(b.Pos)).To(BeNumerically(">", before))
		})

		It("returns zero for an empty graph", func() {
			l := mustLayout(graph.New(), settings(2))
			Expect(l.Step()).To(Equal(0.0))
			Expect(l.Len()).To(Equal(0))
			min, max := l.Bounds()
			Expect(min).To(Equal(particle.Vector{0, 0}))
			Expect(max).To(Equal(particle.Vector{0, 0}))
		})

		It("clamps speeds to one", func() {
			s := settings(2)
			s.Gravity = -500
			g, _ := graph.Parse("complete:6")
			l := mustLayout(g, s)
			for i := 0; i < 3; i++ {
				Expect(l.Step()).To(BeNumerically(">", 0))
				for _, snap := range l.Snapshots() {
					Expect(snap.Velocity.Length()).To(BeNumerically("<=", 1+1e-12))
				}
			}
		})

		It("survives coincident bodies", func() {
			for _, g := range []*graph.Graph{linkedPair(), isolatedPair()} {
				l := mustLayout(g, settings(3))
				same := particle.Vector{4, 4, 4}
				Expect(l.SetPosition(1, same)).To(Succeed())
				Expect(l.SetPosition(2, same)).To(Succeed())

				l.Step()
				for _, snap := range l.Snapshots() {
					Expect(snap.Force.IsValid()).To(BeTrue(), "force %v", snap.Force)
					Expect(snap.Pos.IsValid()).To(BeTrue(), "pos %v", snap.Pos)
				}
				a, _ := l.Body(1)
				b, _ := l.Body(2)
				Expect(a.Pos).NotTo(Equal(b.Pos))
			}
		})

		It("matches brute-force repulsion when theta is zero", func() {
			g := graph.New()
			for i := graph.NodeID(1); i <= 8; i++ {
				g.AddNode(i)
			}
			s := settings(3)
			s.Theta = 0
			l := mustLayout(g, s)
			before := l.Snapshots()

			l.Step()
			after := l.Snapshots()

			for i := range before {
				want := particle.NewVector(3)
				for j := range before {
					if i == j {
						continue
					}
					dx := before[j].Pos.Clone()
					dx.Sub(before[i].Pos)
					r := dx.Length()
					want.AddScaled(dx, s.Gravity*before[i].Mass*before[j].Mass/(r*r*r))
				}
				for k := range want {
					Expect(after[i].Force[k]).To(BeNumerically("~", want[k], 1e-12))
				}
			}
		})

		It("is deterministic across runs", func() {
			g, _ := graph.Parse("grid:12x12")
			s := settings(3)
			s.Workers = 4
			a := mustLayout(g, s)
			b := mustLayout(g, s)
			for i := 0; i < 10; i++ {
				Expect(a.Step()).To(Equal(b.Step()))
			}
			sa, sb := a.Snapshots(), b.Snapshots()
			for i := range sa {
				Expect(sa[i].Pos).To(Equal(sb[i].Pos))
			}
		})

		It("agrees across worker counts within tolerance", func() {
			g, _ := graph.Parse("grid:15x15")
			s := settings(2)
			serial := mustLayout(g, s)
			s.Workers = 4
			parallel := mustLayout(g, s)

			for i := 0; i < 5; i++ {
				Expect(parallel.Step()).To(BeNumerically("~", serial.Step(), 1e-9))
			}
			ss, ps := serial.Snapshots(), parallel.Snapshots()
			for i := range ss {
				for k := range ss[i].Pos {
					Expect(ps[i].Pos[k]).To(BeNumerically("~", ss[i].Pos[k], 1e-6))
				}
			}
		})

		It("settles over time", func() {
			g, _ := graph.Parse("path:4")
			l := mustLayout(g, settings(2))
			first := l.Step()
			last := first
			for i := 0; i < 300; i++ {
				last = l.Step()
			}
			Expect(last).To(BeNumerically("<", first))
			Expect(l.Steps()).To(Equal(301))
		})

		It("exposes the tree it built", func() {
			g, _ := graph.Parse("ring:10")
			l := mustLayout(g, settings(2))
			Expect(l.Tree().Root()).To(BeNil())

			l.Step()
			tree := l.Tree()
			Expect(tree.Len()).To(Equal(10))

			total := 0.0
			for _, snap := range l.Snapshots() {
				total += snap.Mass
			}
			Expect(tree.Root().Mass()).To(BeNumerically("~", total, 1e-9))
		})
	})

	Describe("body access", func() {
		var l *layout.ForceLayout

		BeforeEach(func() {
			l = mustLayout(linkedPair(), settings(3))
			l.Step()
		})

		It("reports absent ids without failing", func() {
			_, ok := l.Body(42)
			Expect(ok).To(BeFalse())
		})

		It("returns NotFound when positioning an absent id", func() {
			err := l.SetPosition(42, particle.Vector{0, 1, 0})
			Expect(err).To(MatchError(particle.ErrNotFound))
		})

		It("rejects positions of the wrong dimension", func() {
			err := l.SetPosition(1, particle.Vector{0, 1})
			Expect(err).To(MatchError(particle.ErrDimensionMismatch))
		})

		It("overwrites only the position", func() {
			before, _ := l.Body(1)
			pos := particle.Vector{0, 1, 0}
			Expect(l.SetPosition(1, pos)).To(Succeed())

			after, ok := l.Body(1)
			Expect(ok).To(BeTrue())
			Expect(after.Pos).To(Equal(pos))
			Expect(after.Velocity).To(Equal(before.Velocity))
			Expect(after.Force).To(Equal(before.Force))
		})

		It("hands out detached snapshots", func() {
			snap, _ := l.Body(1)
			snap.Pos[0] = 1e9
			again, _ := l.Body(1)
			Expect(again.Pos[0]).NotTo(Equal(1e9))
		})

		It("lists springs by node id", func() {
			Expect(l.Springs()).To(Equal([]graph.Link{{From: 1, To: 2}}))
		})

		It("reports bounds enclosing every body", func() {
			min, max := l.Bounds()
			for _, snap := range l.Snapshots() {
				for k, x := range snap.Pos {
					Expect(x).To(BeNumerically(">=", min[k]))
					Expect(x).To(BeNumerically("<=", max[k]))
				}
			}
		})
	})
})

type constRandom float64

func (c constRandom) NextDouble() float64 { return float64(c) }
