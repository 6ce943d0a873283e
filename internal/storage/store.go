// Package storage keeps computed portraits on disk. Every run is a
// directory holding metadata.json, the full tables in tables.tab and the
// integrated points in points.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/portrait"
	"github.com/san-kum/polyphase/internal/tab"
)

const (
	metadataFile = "metadata.json"
	tablesFile   = "tables.tab"
	pointsFile   = "points.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Counts struct {
	Singularities int `json:"singularities"`
	Separatrices  int `json:"separatrices"`
	BlowUps       int `json:"blow_ups"`
	Orbits        int `json:"orbits"`
	LimitCycles   int `json:"limit_cycles"`
	Points        int `json:"points"`
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Timestamp   time.Time `json:"timestamp"`
	View        string    `json:"view"`
	Integrator  string    `json:"integrator"`
	Weighted    bool      `json:"weighted"`
	P           int       `json:"p"`
	Q           int       `json:"q"`
	DirVecField int       `json:"dir_vec_field"`
	Counts      Counts    `json:"counts"`
}

// PointRecord is one row of points.csv. Owner is the index of the
// singular point, orbit or limit cycle the point belongs to and Index the
// separatrix or blow-up within a singular point.
type PointRecord struct {
	Kind      string
	Owner     int
	Index     int
	Pos       chart.Sphere
	Color     portrait.Color
	Connected bool
}

const (
	KindSeparatrix = "separatrix"
	KindBlowUp     = "blowup"
	KindOrbit      = "orbit"
	KindPast       = "past"
	KindLimitCycle = "limit_cycle"
)

// Points flattens every point list of res in drawing order.
func Points(res *portrait.Results) []PointRecord {
	var out []PointRecord
	add := func(kind string, owner, index int, pts []portrait.OrbitPoint) {
		for _, p := range pts {
			out = append(out, PointRecord{
				Kind:      kind,
				Owner:     owner,
				Index:     index,
				Pos:       p.Pos,
				Color:     p.Color,
				Connected: p.Connected,
			})
		}
	}
	for i, sing := range res.Singularities {
		if !sing.NotADummy {
			continue
		}
		for j, sep := range sing.Separatrices {
			add(KindSeparatrix, i, j, sep.Points)
		}
		for j, b := range sing.BlowUps {
			add(KindBlowUp, i, j, b.Points)
		}
	}
	for i, o := range res.Orbits {
		add(KindOrbit, i, 0, o.Points)
		add(KindPast, i, 0, o.Past)
	}
	for i, lc := range res.LimitCycles {
		add(KindLimitCycle, i, 0, lc.Points)
	}
	return out
}

func countsOf(res *portrait.Results, points int) Counts {
	c := Counts{
		Singularities: len(res.Singularities),
		Orbits:        len(res.Orbits),
		LimitCycles:   len(res.LimitCycles),
		Points:        points,
	}
	for _, sing := range res.Singularities {
		if sing.NotADummy {
			c.Separatrices += len(sing.Separatrices)
			c.BlowUps += len(sing.BlowUps)
		}
	}
	return c
}

// Save writes res as a new run and returns its id.
func (s *Store) Save(name, view, integrator string, res *portrait.Results) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	points := Points(res)
	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   now,
		View:        view,
		Integrator:  integrator,
		Weighted:    res.Weighted,
		P:           res.P,
		Q:           res.Q,
		DirVecField: res.DirVecField,
		Counts:      countsOf(res, len(points)),
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		return ExportJSON(w, meta)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, tablesFile), func(w io.Writer) error {
		return tab.Write(w, res)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, pointsFile), func(w io.Writer) error {
		return WritePoints(w, points)
	}); err != nil {
		return "", err
	}
	return runID, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportJSON writes v as indented JSON.
func ExportJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var pointsHeader = []string{"kind", "owner", "index", "s0", "s1", "s2", "color", "connected"}

func WritePoints(w io.Writer, points []PointRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pointsHeader); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{
			p.Kind,
			strconv.Itoa(p.Owner),
			strconv.Itoa(p.Index),
			strconv.FormatFloat(p.Pos[0], 'g', -1, 64),
			strconv.FormatFloat(p.Pos[1], 'g', -1, 64),
			strconv.FormatFloat(p.Pos[2], 'g', -1, 64),
			strconv.Itoa(int(p.Color)),
			strconv.FormatBool(p.Connected),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

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

// LoadResults parses the stored tables of a run. Integrated points are not
// part of the tables; see LoadPoints.
func (s *Store) LoadResults(runID string) (*portrait.Results, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, tablesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tab.Read(f)
}

func (s *Store) LoadPoints(runID string) ([]PointRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, pointsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []PointRecord{}, nil
	}

	points := make([]PointRecord, 0, len(records)-1)
	for i, rec := range records[1:] {
		p, err := parsePoint(rec)
		if err != nil {
			return nil, fmt.Errorf("points.csv row %d: %w", i+2, err)
		}
		points = append(points, p)
	}
	return points, nil
}

func parsePoint(rec []string) (PointRecord, error) {
	var p PointRecord
	if len(rec) != len(pointsHeader) {
		return p, fmt.Errorf("expected %d fields, got %d", len(pointsHeader), len(rec))
	}
	var err error
	p.Kind = rec[0]
	if p.Owner, err = strconv.Atoi(rec[1]); err != nil {
		return p, err
	}
	if p.Index, err = strconv.Atoi(rec[2]); err != nil {
		return p, err
	}
	for k := 0; k < 3; k++ {
		if p.Pos[k], err = strconv.ParseFloat(rec[3+k], 64); err != nil {
			return p, err
		}
	}
	color, err := strconv.Atoi(rec[6])
	if err != nil {
		return p, err
	}
	p.Color = portrait.Color(color)
	if p.Connected, err = strconv.ParseBool(rec[7]); err != nil {
		return p, err
	}
	return p, nil
}
