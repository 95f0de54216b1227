package store

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/quakeview/internal/export"
	"github.com/san-kum/quakeview/internal/quake"
)

func sample() quake.Dataset {
	return quake.Dataset{
		{Latitude: 35.5, Longitude: 139.25, Magnitude: 5.1, Depth: 10, Time: time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC), Year: 2024, Place: "Honshu, Japan"},
		{Latitude: -33, Longitude: -70, Magnitude: math.NaN(), Depth: 20, Time: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), Year: 2024, Place: "Chile"},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	id, err := st.Save(Metadata{Selector: "2024", Skipped: 3}, sample())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Error("expected non-empty export id")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Selector != "2024" {
		t.Errorf("expected selector '2024', got '%s'", meta.Selector)
	}
	if meta.Records != 2 || meta.Skipped != 3 {
		t.Errorf("expected 2 records and 3 skipped, got %d and %d", meta.Records, meta.Skipped)
	}
	if meta.Stats["mag_max"] != 5.1 {
		t.Errorf("expected mag_max 5.1, got %f", meta.Stats["mag_max"])
	}
	if !meta.To.Equal(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected range end %v", meta.To)
	}

	ds, err := st.LoadRecords(id)
	if err != nil {
		t.Fatalf("load records failed: %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("expected 2 records, got %d", len(ds))
	}
	if ds[0].Place != "Honshu, Japan" || ds[0].Longitude != 139.25 {
		t.Errorf("unexpected first record %+v", ds[0])
	}
	if !math.IsNaN(ds[1].Magnitude) {
		t.Errorf("expected NaN magnitude to survive, got %v", ds[1].Magnitude)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	exports, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(exports) != 0 {
		t.Errorf("expected 0 exports, got %d", len(exports))
	}

	if _, err := st.Save(Metadata{Selector: "2023"}, sample()[:1]); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(Metadata{Selector: "all"}, quake.Dataset{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	exports, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(exports) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(exports))
	}
	if exports[0].Selector != "all" {
		t.Errorf("expected newest export first, got %s", exports[0].Selector)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	id, err := st.Save(Metadata{Selector: "2024"}, sample())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "records.csv", "records.geojson"} {
		if _, err := os.Stat(filepath.Join(tmpDir, id, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	fc, err := export.ReadGeoJSON(st.GeoJSONPath(id))
	if err != nil {
		t.Fatalf("read geojson failed: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Errorf("expected 2 features, got %d", len(fc.Features))
	}
}

func TestStoreSave_UnplacedRecords(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	ds := append(sample(), quake.Record{
		Latitude:  math.NaN(),
		Longitude: 12,
		Magnitude: 3.3,
		Depth:     math.Inf(1),
		Time:      time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		Year:      2024,
		Place:     "bad latitude",
	})

	id, err := st.Save(Metadata{Selector: "2024"}, ds)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Records != 3 || meta.Unplaced != 1 {
		t.Errorf("expected 3 records and 1 unplaced, got %d and %d", meta.Records, meta.Unplaced)
	}
	if _, ok := meta.Stats["depth_max"]; ok {
		t.Errorf("expected infinite depth to be left out of stats, got %v", meta.Stats["depth_max"])
	}

	fc, err := export.ReadGeoJSON(st.GeoJSONPath(id))
	if err != nil {
		t.Fatalf("read geojson failed: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Errorf("expected 2 features, got %d", len(fc.Features))
	}

	exports, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(exports) != 1 || exports[0].ID != id {
		t.Errorf("expected only export %s, got %v", id, exports)
	}
}
