// Package store keeps exported datasets on disk, one directory per export.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/quakeview/internal/encoding"
	"github.com/san-kum/quakeview/internal/export"
	"github.com/san-kum/quakeview/internal/loader"
	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/timeline"
)

const (
	metadataFile = "metadata.json"
	recordsFile  = "records.csv"
	geojsonFile  = "records.geojson"
)

var csvHeader = []string{"time", "latitude", "longitude", "depth", "mag", "place"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Window is an exported time selection.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Metadata struct {
	ID        string             `json:"id"`
	Selector  string             `json:"selector"`
	Timestamp time.Time          `json:"timestamp"`
	Records   int                `json:"records"`
	Skipped   int                `json:"skipped"`
	Unplaced  int                `json:"unplaced"`
	From      time.Time          `json:"from"`
	To        time.Time          `json:"to"`
	Brush     *Window            `json:"brush,omitempty"`
	Stats     map[string]float64 `json:"stats"`
}

// Save writes ds with its metadata, a CSV copy readable by the loader and a
// GeoJSON feature collection. The caller sets Selector, Skipped and Brush.
// Records without coordinates are kept in the CSV, left out of the GeoJSON and
// counted in Unplaced. metadata.json is written last, so a failed save leaves
// nothing that List reports.
func (s *Store) Save(meta Metadata, ds quake.Dataset) (string, error) {
	meta.ID = fmt.Sprintf("%s_%d", meta.Selector, time.Now().UnixNano())
	meta.Timestamp = time.Now().UTC()
	meta.Records = len(ds)
	meta.Unplaced = 0
	for _, r := range ds {
		if !export.Located(r) {
			meta.Unplaced++
		}
	}
	if r := timeline.ComputeRange(ds); !r.Empty() {
		meta.From, meta.To = r.Min, r.Max
	}
	meta.Stats = stats(ds)

	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := writeExport(dir, meta, ds); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return meta.ID, nil
}

func writeExport(dir string, meta Metadata, ds quake.Dataset) error {
	if err := writeCSV(filepath.Join(dir, recordsFile), ds); err != nil {
		return err
	}
	if err := export.WriteGeoJSON(filepath.Join(dir, geojsonFile), ds); err != nil {
		return err
	}

	metaFile, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func stats(ds quake.Dataset) map[string]float64 {
	out := make(map[string]float64)
	ranges := encoding.RangesOf(ds)
	for _, attr := range quake.Attributes {
		r := ranges.Get(attr)
		if r.Empty() || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
			continue
		}
		out[string(attr)+"_min"] = r.Min
		out[string(attr)+"_max"] = r.Max
	}
	return out
}

func writeCSV(path string, ds quake.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range ds {
		row := []string{
			r.Time.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			strconv.FormatFloat(r.Depth, 'f', -1, 64),
			strconv.FormatFloat(r.Magnitude, 'f', -1, 64),
			r.Place,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the saved exports, newest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	exports := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		exports = append(exports, *meta)
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].Timestamp.After(exports[j].Timestamp) })
	return exports, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRecords decodes an export's CSV with the regular loader.
func (s *Store) LoadRecords(id string) (quake.Dataset, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, recordsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, _, err := loader.Decode(f)
	return ds, err
}

// GeoJSONPath is the feature collection file of an export.
func (s *Store) GeoJSONPath(id string) string {
	return filepath.Join(s.baseDir, id, geojsonFile)
}

// Dir is the directory holding an export.
func (s *Store) Dir(id string) string {
	return filepath.Join(s.baseDir, id)
}
