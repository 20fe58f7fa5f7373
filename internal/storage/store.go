package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/DataDog/zstd"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/particles"
)

const (
	metadataFile = "metadata.json"
	forcesFile   = "forces.csv.zst"
)

var forcesHeader = []string{"x", "y", "z", "q", "fx", "fy", "fz", "energy", "virial"}

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
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Box       [3]float64         `json:"box"`
	Grid      [3]int             `json:"grid"`
	Order     int                `json:"order"`
	Kappa     float64            `json:"kappa"`
	Rcut      float64            `json:"rcut"`
	Particles int                `json:"particles"`
	Energy    float64            `json:"energy"`
	Virial    float64            `json:"virial"`
	RMSError  float64            `json:"rms_error"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Record is one particle's row in the stored force table.
type Record struct {
	Pos    r3.Vec
	Charge float64
	Force  r3.Vec
	Energy float64
	Virial float64
}

// Records pairs a snapshot with the forces computed from it.
func Records(snap particles.Snapshot, f *particles.Forces) []Record {
	out := make([]Record, snap.Len())
	for i := range out {
		out[i] = Record{
			Pos:    snap.Pos[i],
			Charge: snap.Charge[i],
			Force:  f.Force[i],
			Energy: f.Energy[i],
			Virial: f.Virial[i],
		}
	}
	return out
}

// Save writes meta and the compressed force table under a new run directory
// and returns the run ID. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, records []Record) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Particles = len(records)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(forcesHeader); err != nil {
		return "", err
	}
	for _, r := range records {
		row := []string{
			formatFloat(r.Pos.X), formatFloat(r.Pos.Y), formatFloat(r.Pos.Z),
			formatFloat(r.Charge),
			formatFloat(r.Force.X), formatFloat(r.Force.Y), formatFloat(r.Force.Z),
			formatFloat(r.Energy), formatFloat(r.Virial),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	compressed, err := zstd.CompressLevel(nil, buf.Bytes(), zstd.DefaultCompression)
	if err != nil {
		return "", fmt.Errorf("storage: compress forces: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, forcesFile), compressed, 0644); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the stored runs, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadForces(runID string) ([]Record, error) {
	compressed, err := os.ReadFile(filepath.Join(s.baseDir, runID, forcesFile))
	if err != nil {
		return nil, err
	}
	data, err := zstd.Decompress(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("storage: decompress forces: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(forcesHeader)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []Record{}, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for line, row := range rows[1:] {
		var v [9]float64
		for j, field := range row {
			v[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", forcesFile, line+2, err)
			}
		}
		records = append(records, Record{
			Pos:    r3.Vec{X: v[0], Y: v[1], Z: v[2]},
			Charge: v[3],
			Force:  r3.Vec{X: v[4], Y: v[5], Z: v[6]},
			Energy: v[7],
			Virial: v[8],
		})
	}
	return records, nil
}
