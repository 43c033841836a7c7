package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/particle"
	"github.com/san-kum/forcelayout/internal/storage"
)

func triangle() ([]particle.Snapshot, []graph.Link) {
	snaps := []particle.Snapshot{
		{ID: 1, Mass: 1, Pos: particle.Vector{0, 0, 5}},
		{ID: 2, Mass: 1, Pos: particle.Vector{10, 0, -5}},
		{ID: 3, Mass: 4, Pos: particle.Vector{5, 10, 0}},
	}
	links := []graph.Link{{From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 3}, {From: 3, To: 99}}
	return snaps, links
}

func TestToSVG(t *testing.T) {
	snaps, links := triangle()
	svg := ToSVG(snaps, links, 200, 100)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %q", svg)
	}
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 circles, got %d", got)
	}
	// the self-loop and the dangling link are skipped
	if got := strings.Count(svg, "<line"); got != 2 {
		t.Errorf("expected 2 lines, got %d", got)
	}
	if !strings.Contains(svg, "<title>3</title>") {
		t.Error("expected node titles")
	}
}

func TestToSVGEmpty(t *testing.T) {
	svg := ToSVG(nil, nil, 50, 50)
	if strings.Contains(svg, "<circle") {
		t.Error("empty layout should draw no bodies")
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("expected closed svg")
	}
}

func TestProjectionStaysInViewport(t *testing.T) {
	snaps, _ := triangle()
	proj := newProjection(snaps, 200, 100)
	for _, s := range snaps {
		x, y := proj.point(s.Pos)
		if x < 0 || x > 200 || y < 0 || y > 100 {
			t.Errorf("body %d projected outside viewport: (%v, %v)", s.ID, x, y)
		}
	}

	// y grows upwards in layout space and downwards in svg space
	_, yLow := proj.point(snaps[0].Pos)
	_, yHigh := proj.point(snaps[2].Pos)
	if yHigh >= yLow {
		t.Errorf("expected flipped y axis, got %v >= %v", yHigh, yLow)
	}
}

func TestProjectionOneDimension(t *testing.T) {
	snaps := []particle.Snapshot{
		{ID: 1, Pos: particle.Vector{-3}},
		{ID: 2, Pos: particle.Vector{3}},
	}
	proj := newProjection(snaps, 100, 100)
	x1, y1 := proj.point(snaps[0].Pos)
	x2, y2 := proj.point(snaps[1].Pos)
	if y1 != y2 {
		t.Errorf("1-D bodies should share a row: %v vs %v", y1, y2)
	}
	if x1 >= x2 {
		t.Errorf("expected x1 < x2, got %v, %v", x1, x2)
	}
}

func TestMovementToSVG(t *testing.T) {
	if MovementToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("expected empty output for a single sample")
	}
	svg := MovementToSVG([]float64{1, 0.5, 0.25}, 100, 50, "#ff0000")
	if !strings.Contains(svg, `stroke="#ff0000"`) {
		t.Error("missing stroke color")
	}
	if got := strings.Count(svg, " L"); got != 2 {
		t.Errorf("expected 2 segments, got %d", got)
	}
}

func TestExportJSON(t *testing.T) {
	snaps, links := triangle()
	meta := &storage.RunMetadata{
		ID:        "ring_1",
		Graph:     "ring:3",
		Settings:  layout.DefaultSettings(),
		Steps:     2,
		Converged: true,
	}
	data := NewExportData(meta, snaps, links[:2], []float64{0.4, 0.001})

	var buf bytes.Buffer
	if err := ExportJSON(&buf, data); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Dimensions != 2 || decoded.Steps != 2 || !decoded.Converged {
		t.Errorf("unexpected header %+v", decoded)
	}
	if len(decoded.Nodes) != 3 || decoded.Nodes[2].Mass != 4 || decoded.Nodes[1].Pos[0] != 10 {
		t.Errorf("unexpected nodes %+v", decoded.Nodes)
	}
	if len(decoded.Links) != 2 || decoded.Links[1].To != 3 {
		t.Errorf("unexpected links %+v", decoded.Links)
	}
}

func TestExportJSONEmptyRun(t *testing.T) {
	data := NewExportData(&storage.RunMetadata{}, nil, nil, nil)

	var buf bytes.Buffer
	if err := ExportJSON(&buf, data); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"movements": []`, `"nodes": []`, `"links": []`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestExportJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	snaps, links := triangle()
	if err := ExportJSONFile(path, NewExportData(&storage.RunMetadata{Graph: "x"}, snaps, links, nil)); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("file is not valid json")
	}
}
