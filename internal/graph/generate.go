package graph

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrBadGenerator = errors.New("graph: bad generator spec")

// Path links 1 -> 2 -> ... -> n.
func Path(n int) *Graph {
	g := New()
	for i := 1; i <= n; i++ {
		g.AddNode(NodeID(i))
	}
	for i := 1; i < n; i++ {
		g.AddLink(NodeID(i), NodeID(i+1))
	}
	return g
}

// Ring is a path with its ends joined.
func Ring(n int) *Graph {
	g := Path(n)
	if n > 2 {
		g.AddLink(NodeID(n), 1)
	}
	return g
}

// Grid builds a w*h lattice with node ids assigned row by row from 1.
func Grid(w, h int) *Graph {
	g := New()
	id := func(x, y int) NodeID { return NodeID(y*w + x + 1) }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.AddNode(id(x, y))
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x+1 < w {
				g.AddLink(id(x, y), id(x+1, y))
			}
			if y+1 < h {
				g.AddLink(id(x, y), id(x, y+1))
			}
		}
	}
	return g
}

// Complete links every ordered pair i < j.
func Complete(n int) *Graph {
	g := New()
	for i := 1; i <= n; i++ {
		g.AddNode(NodeID(i))
	}
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			g.AddLink(NodeID(i), NodeID(j))
		}
	}
	return g
}

// BinaryTree builds a complete binary tree of the given depth; depth 0 is
// a single root.
func BinaryTree(depth int) *Graph {
	g := New()
	g.AddNode(1)
	n := (1 << (depth + 1)) - 1
	for i := 2; i <= n; i++ {
		g.AddLink(NodeID(i/2), NodeID(i))
	}
	return g
}

var generators = map[string]func(args []int) (*Graph, error){
	"path":     oneArg(Path),
	"ring":     oneArg(Ring),
	"complete": oneArg(Complete),
	"tree":     oneArg(BinaryTree),
	"grid": func(args []int) (*Graph, error) {
		switch len(args) {
		case 1:
			return Grid(args[0], args[0]), nil
		case 2:
			return Grid(args[0], args[1]), nil
		}
		return nil, fmt.Errorf("%w: grid takes WxH", ErrBadGenerator)
	},
}

func oneArg(fn func(int) *Graph) func([]int) (*Graph, error) {
	return func(args []int) (*Graph, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: expected one size argument", ErrBadGenerator)
		}
		return fn(args[0]), nil
	}
}

// Generators lists the names accepted by Parse.
func Generators() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse builds a graph from a spec such as "grid:10x10", "ring:12" or
// "tree:4".
func Parse(spec string) (*Graph, error) {
	name, rawArgs, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q (want name:size)", ErrBadGenerator, spec)
	}
	fn, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown generator %q (available: %v)", ErrBadGenerator, name, Generators())
	}

	parts := strings.Split(rawArgs, "x")
	args := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: bad size %q", ErrBadGenerator, p)
		}
		args[i] = v
	}
	return fn(args)
}
