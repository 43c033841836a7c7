// Package graph provides the node/link collaborator consumed by the layout
// engine, an insertion-ordered in-memory implementation, file loaders and
// a handful of generators.
package graph

// NodeID identifies a node.
type NodeID uint64

// Link is a directed edge.
type Link struct {
	From NodeID `yaml:"from" json:"from"`
	To   NodeID `yaml:"to" json:"to"`
}

// Reader is everything the layout engine needs from a graph. Nodes must
// return a stable order for the lifetime of one call.
type Reader interface {
	Nodes() []NodeID
	Links() []Link
	Degree(id NodeID) int
}

// Graph is an in-memory multigraph that preserves insertion order.
type Graph struct {
	order  []NodeID
	degree map[NodeID]int
	links  []Link
}

func New() *Graph {
	return &Graph{degree: make(map[NodeID]int)}
}

// AddNode adds id if it is not present yet.
func (g *Graph) AddNode(id NodeID) {
	if _, ok := g.degree[id]; ok {
		return
	}
	g.degree[id] = 0
	g.order = append(g.order, id)
}

// AddLink adds a directed link, creating missing endpoints. Parallel links
// are kept.
func (g *Graph) AddLink(from, to NodeID) Link {
	g.AddNode(from)
	g.AddNode(to)
	l := Link{From: from, To: to}
	g.links = append(g.links, l)
	g.degree[from]++
	g.degree[to]++
	return l
}

func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.degree[id]
	return ok
}

func (g *Graph) NodeCount() int { return len(g.order) }
func (g *Graph) LinkCount() int { return len(g.links) }

func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, len(g.order))
	copy(out, g.order)
	return out
}

func (g *Graph) Links() []Link {
	out := make([]Link, len(g.links))
	copy(out, g.links)
	return out
}

// Degree returns the number of link endpoints at id; zero for unknown ids.
func (g *Graph) Degree(id NodeID) int {
	return g.degree[id]
}
