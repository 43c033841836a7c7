package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported file formats.
const (
	FormatYAML  = "yaml"
	FormatEdges = "edges"
)

var ErrUnknownFormat = errors.New("graph: unknown format")

type document struct {
	Nodes []NodeID `yaml:"nodes"`
	Links []Link   `yaml:"links"`
}

// LoadYAML reads a document of the form
//
//	nodes: [1, 2, 3]
//	links:
//	  - {from: 1, to: 2}
//
// Nodes only referenced by links are added in link order.
func LoadYAML(r io.Reader) (*Graph, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode graph: %w", err)
	}

	g := New()
	for _, id := range doc.Nodes {
		g.AddNode(id)
	}
	for _, l := range doc.Links {
		g.AddLink(l.From, l.To)
	}
	return g, nil
}

// ReadEdgeList reads one "from to" pair per line. Blank lines and lines
// starting with # are skipped; a line with a single id declares a node.
func ReadEdgeList(r io.Reader) (*Graph, error) {
	g := New()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: expected at most 2 fields, got %d", lineNo, len(fields))
		}

		ids := make([]NodeID, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			ids[i] = NodeID(v)
		}

		if len(ids) == 1 {
			g.AddNode(ids[0])
		} else {
			g.AddLink(ids[0], ids[1])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadFile opens path and decodes it. An empty format is inferred from the
// file extension.
func LoadFile(path, format string) (*Graph, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = FormatYAML
		default:
			format = FormatEdges
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case FormatYAML:
		return LoadYAML(f)
	case FormatEdges:
		return ReadEdgeList(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
