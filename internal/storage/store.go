package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/particle"
	"github.com/san-kum/forcelayout/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	positionsFile = "positions.csv"
	movementFile  = "movement.csv"
	linksFile     = "links.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps finished runs under baseDir, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Graph         string             `json:"graph"`
	Timestamp     time.Time          `json:"timestamp"`
	Nodes         int                `json:"nodes"`
	Links         int                `json:"links"`
	Settings      layout.Settings    `json:"settings"`
	Steps         int                `json:"steps"`
	Converged     bool               `json:"converged"`
	FinalMovement float64            `json:"final_movement"`
	ElapsedMS     float64            `json:"elapsed_ms"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Run is everything Save persists.
type Run struct {
	Graph    string
	Settings layout.Settings
	Result   *sim.Result
	Bodies   []particle.Snapshot
	Links    []graph.Link
}

func (s *Store) Save(run Run) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", slug(run.Graph), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Graph:     run.Graph,
		Timestamp: now,
		Nodes:     len(run.Bodies),
		Links:     len(run.Links),
		Settings:  run.Settings,
	}
	if r := run.Result; r != nil {
		meta.Steps = r.Steps
		meta.Converged = r.Converged
		meta.FinalMovement = r.FinalMovement()
		meta.ElapsedMS = float64(r.Elapsed.Microseconds()) / 1000
		meta.Metrics = r.Metrics
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, positionsFile), positionRows(run.Bodies)); err != nil {
		return "", err
	}
	var movements []float64
	if run.Result != nil {
		movements = run.Result.Movements
	}
	if err := writeCSV(filepath.Join(runDir, movementFile), movementRows(movements)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, linksFile), linkRows(run.Links)); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := s.read(runID, metadataFile)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadPositions returns the final bodies of a run. Velocity and force are
// not stored and come back as zero vectors.
func (s *Store) LoadPositions(runID string) ([]particle.Snapshot, error) {
	records, err := s.readCSV(runID, positionsFile)
	if err != nil {
		return nil, err
	}

	snaps := make([]particle.Snapshot, 0, len(records))
	for i, record := range records {
		if len(record) < 2 {
			return nil, fmt.Errorf("run %s: %s line %d: too few fields", runID, positionsFile, i+2)
		}
		id, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: %s line %d: %w", runID, positionsFile, i+2, err)
		}
		mass, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: %s line %d: %w", runID, positionsFile, i+2, err)
		}

		pos := particle.NewVector(len(record) - 2)
		for k, field := range record[2:] {
			if pos[k], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("run %s: %s line %d: %w", runID, positionsFile, i+2, err)
			}
		}
		snaps = append(snaps, particle.Snapshot{
			ID:       id,
			Mass:     mass,
			Pos:      pos,
			Velocity: particle.NewVector(pos.Dim()),
			Force:    particle.NewVector(pos.Dim()),
		})
	}
	return snaps, nil
}

func (s *Store) LoadMovement(runID string) ([]float64, error) {
	records, err := s.readCSV(runID, movementFile)
	if err != nil {
		return nil, err
	}

	movements := make([]float64, 0, len(records))
	for i, record := range records {
		if len(record) != 2 {
			return nil, fmt.Errorf("run %s: %s line %d: want 2 fields", runID, movementFile, i+2)
		}
		m, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: %s line %d: %w", runID, movementFile, i+2, err)
		}
		movements = append(movements, m)
	}
	return movements, nil
}

func (s *Store) LoadLinks(runID string) ([]graph.Link, error) {
	records, err := s.readCSV(runID, linksFile)
	if err != nil {
		return nil, err
	}

	links := make([]graph.Link, 0, len(records))
	for i, record := range records {
		if len(record) != 2 {
			return nil, fmt.Errorf("run %s: %s line %d: want 2 fields", runID, linksFile, i+2)
		}
		from, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: %s line %d: %w", runID, linksFile, i+2, err)
		}
		to, err := strconv.ParseUint(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: %s line %d: %w", runID, linksFile, i+2, err)
		}
		links = append(links, graph.Link{From: graph.NodeID(from), To: graph.NodeID(to)})
	}
	return links, nil
}

// Path returns the directory of a run.
func (s *Store) Path(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

func (s *Store) read(runID, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return data, err
}

// readCSV returns the records of a run file without its header.
func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %s: %w", runID, name, err)
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

func positionRows(bodies []particle.Snapshot) [][]string {
	dim := 0
	if len(bodies) > 0 {
		dim = bodies[0].Pos.Dim()
	}
	header := []string{"id", "mass"}
	for k := 0; k < dim; k++ {
		header = append(header, fmt.Sprintf("x%d", k))
	}

	rows := [][]string{header}
	for _, b := range bodies {
		row := []string{strconv.FormatUint(b.ID, 10), formatFloat(b.Mass)}
		for _, x := range b.Pos {
			row = append(row, formatFloat(x))
		}
		rows = append(rows, row)
	}
	return rows
}

func movementRows(movements []float64) [][]string {
	rows := [][]string{{"step", "movement"}}
	for i, m := range movements {
		rows = append(rows, []string{strconv.Itoa(i), formatFloat(m)})
	}
	return rows
}

func linkRows(links []graph.Link) [][]string {
	rows := [][]string{{"from", "to"}}
	for _, l := range links {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(l.From), 10),
			strconv.FormatUint(uint64(l.To), 10),
		})
	}
	return rows
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// slug turns a graph source into something safe for a directory name.
func slug(source string) string {
	name := filepath.Base(source)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, name)
	if name == "" || name == "." {
		return "run"
	}
	return name
}
