// Package spatial implements a Barnes-Hut tree generalized to N dimensions.
//
// The region of every internal node is split into 2^N equal orthants
// (quadrants in 2D, octants in 3D). Children are allocated on first use, so
// memory grows with the number of bodies rather than with 2^N.
//
// A Tree is rebuilt from scratch by InsertBodies. Once built, concurrent
// UpdateBodyForce calls are safe as long as each call targets a different
// body: queries only read the tree and write the queried body's Force.
package spatial

import (
	"github.com/san-kum/forcelayout/internal/particle"
)

// MaxDepth bounds subdivision. A leaf at this depth keeps every body routed
// to it, which is what makes coincident bodies terminate.
const MaxDepth = 48

// Node is one region of the tree.
type Node struct {
	min      particle.Vector
	size     float64
	mass     float64
	centroid particle.Vector
	bodies   []int
	children []*Node
	orthant  int
	depth    int
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Min returns a copy of the lower corner of the region.
func (n *Node) Min() particle.Vector { return n.min.Clone() }

// Size is the edge length of the (hyper)cubic region.
func (n *Node) Size() float64 { return n.size }

// Mass is the total mass of all bodies beneath n.
func (n *Node) Mass() float64 { return n.mass }

// Centroid returns a copy of the mass-weighted centre of the bodies beneath n.
func (n *Node) Centroid() particle.Vector { return n.centroid.Clone() }

// Bodies returns the body handles held by a leaf.
func (n *Node) Bodies() []int {
	out := make([]int, len(n.bodies))
	copy(out, n.bodies)
	return out
}

// Children returns the non-empty children of n.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Depth is the distance from the root, which has depth 0.
func (n *Node) Depth() int { return n.depth }

// absorb folds a point mass into the running aggregate.
func (n *Node) absorb(pos particle.Vector, m float64) {
	total := n.mass + m
	n.centroid.Scale(n.mass / total)
	n.centroid.AddScaled(pos, m/total)
	n.mass = total
}

// Tree approximates pairwise repulsion between bodies.
type Tree struct {
	dim     int
	theta   float64
	gravity float64

	bodies []particle.Body
	salt   uint64
	root   *Node
	nodes  int
	depth  int
}

// New creates an empty tree. theta is the opening-angle threshold and
// gravity the signed interaction strength (negative repels).
func New(dim int, theta, gravity float64) *Tree {
	return &Tree{dim: dim, theta: theta, gravity: gravity}
}

// Dim is the number of coordinates per body.
func (t *Tree) Dim() int { return t.dim }

// Theta is the opening-angle threshold.
func (t *Tree) Theta() float64 { return t.theta }

// Gravity is the signed interaction strength.
func (t *Tree) Gravity() float64 { return t.gravity }

// Root is the top node of the last build, or nil before any bodies were
// inserted.
func (t *Tree) Root() *Node { return t.root }

// Len is the number of bodies in the last build.
func (t *Tree) Len() int { return len(t.bodies) }

// NodeCount is the number of allocated nodes, the root included.
func (t *Tree) NodeCount() int { return t.nodes }

// Depth is the deepest node level reached by the last build.
func (t *Tree) Depth() int { return t.depth }

// InsertBodies discards the current tree and builds a new one over bodies.
// The slice is retained and must not be resized until the next call; salt
// seeds the jitter used for zero-distance pairs.
func (t *Tree) InsertBodies(bodies []particle.Body, salt uint64) {
	t.bodies = bodies
	t.salt = salt
	t.root = nil
	t.nodes = 0
	t.depth = 0

	if len(bodies) == 0 {
		return
	}

	min, size := t.bounds()
	t.root = t.newNode(min, size, 0, 0)
	for i := range bodies {
		t.insert(i)
	}
}

// bounds returns the lower corner and edge length of a cube enclosing all
// bodies.
func (t *Tree) bounds() (particle.Vector, float64) {
	min := t.bodies[0].Pos.Clone()
	max := t.bodies[0].Pos.Clone()
	for i := 1; i < len(t.bodies); i++ {
		for k, x := range t.bodies[i].Pos {
			if x < min[k] {
				min[k] = x
			}
			if x > max[k] {
				max[k] = x
			}
		}
	}

	size := 0.0
	for k := range min {
		if ext := max[k] - min[k]; ext > size {
			size = ext
		}
	}
	if size == 0 {
		size = 1
	}
	return min, size
}

func (t *Tree) newNode(min particle.Vector, size float64, depth, orthant int) *Node {
	t.nodes++
	if depth > t.depth {
		t.depth = depth
	}
	return &Node{
		min:      min,
		size:     size,
		centroid: particle.NewVector(t.dim),
		orthant:  orthant,
		depth:    depth,
	}
}

func (t *Tree) insert(i int) {
	b := &t.bodies[i]
	node := t.root
	for {
		node.absorb(b.Pos, b.Mass)
		if node.IsLeaf() {
			if len(node.bodies) == 0 || node.depth >= MaxDepth {
				node.bodies = append(node.bodies, i)
				return
			}
			t.subdivide(node)
		}
		node = t.child(node, b.Pos)
	}
}

// subdivide pushes the bodies of a leaf one level down.
func (t *Tree) subdivide(n *Node) {
	occupants := n.bodies
	n.bodies = nil
	for _, j := range occupants {
		ob := &t.bodies[j]
		c := t.child(n, ob.Pos)
		c.absorb(ob.Pos, ob.Mass)
		c.bodies = append(c.bodies, j)
	}
}

// child returns the child of n whose orthant contains pos, creating it if
// needed. Bit k of the orthant is set when pos lies in the upper half along
// axis k.
func (t *Tree) child(n *Node, pos particle.Vector) *Node {
	half := n.size / 2
	orthant := 0
	for k, x := range pos {
		if x >= n.min[k]+half {
			orthant |= 1 << k
		}
	}

	for _, c := range n.children {
		if c.orthant == orthant {
			return c
		}
	}

	min := n.min.Clone()
	for k := range min {
		if orthant&(1<<k) != 0 {
			min[k] += half
		}
	}
	c := t.newNode(min, half, n.depth+1, orthant)
	n.children = append(n.children, c)
	return c
}

// UpdateBodyForce adds the approximate interaction of every other body to
// bodies[i].Force.
func (t *Tree) UpdateBodyForce(i int) {
	if t.root == nil {
		return
	}

	b := &t.bodies[i]
	dx := particle.NewVector(t.dim)
	stack := make([]*Node, 1, 32)
	stack[0] = t.root

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.IsLeaf() {
			for _, j := range n.bodies {
				if j == i {
					continue
				}
				other := &t.bodies[j]
				t.interact(b, i, j, other.Pos, other.Mass, dx)
			}
			continue
		}

		d := b.Pos.Distance(n.centroid)
		if d > 0 && n.size/d < t.theta {
			t.interact(b, i, -1, n.centroid, n.mass, dx)
			continue
		}
		stack = append(stack, n.children...)
	}
}

// interact applies the pairwise law between body i and a point mass at pos:
// force += gravity*m_i*m/r^3 * (pos - body).
func (t *Tree) interact(b *particle.Body, i, j int, pos particle.Vector, mass float64, dx particle.Vector) {
	dx.Set(pos)
	dx.Sub(b.Pos)
	r := dx.Length()
	if r == 0 {
		particle.Jitter(dx, t.salt, i, j)
		r = dx.Length()
	}
	v := t.gravity * b.Mass * mass / (r * r * r)
	b.Force.AddScaled(dx, v)
}

// Walk visits nodes depth-first, parents before children. Returning false
// from fn skips the node's subtree.
func (t *Tree) Walk(fn func(*Node) bool) {
	if t.root == nil {
		return
	}
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
}
