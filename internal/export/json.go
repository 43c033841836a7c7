package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/particle"
	"github.com/san-kum/forcelayout/internal/storage"
)

type NodeData struct {
	ID   uint64    `json:"id"`
	Mass float64   `json:"mass"`
	Pos  []float64 `json:"pos"`
}

type ExportData struct {
	ID         string             `json:"id,omitempty"`
	Graph      string             `json:"graph"`
	Dimensions int                `json:"dimensions"`
	Steps      int                `json:"steps"`
	Converged  bool               `json:"converged"`
	Movements  []float64          `json:"movements"`
	Nodes      []NodeData         `json:"nodes"`
	Links      []graph.Link       `json:"links"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// NewExportData collects a stored run into one document.
func NewExportData(meta *storage.RunMetadata, snaps []particle.Snapshot, links []graph.Link, movements []float64) ExportData {
	data := ExportData{
		ID:         meta.ID,
		Graph:      meta.Graph,
		Dimensions: meta.Settings.Dimensions,
		Steps:      meta.Steps,
		Converged:  meta.Converged,
		Movements:  movements,
		Nodes:      make([]NodeData, len(snaps)),
		Links:      links,
		Metrics:    meta.Metrics,
	}
	if data.Movements == nil {
		data.Movements = []float64{}
	}
	if data.Links == nil {
		data.Links = []graph.Link{}
	}
	for i, s := range snaps {
		data.Nodes[i] = NodeData{ID: s.ID, Mass: s.Mass, Pos: s.Pos}
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := ExportJSON(file, data); err != nil {
		return err
	}
	return file.Close()
}
