package loader

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/san-kum/quakeview/internal/quake"
)

const sampleCSV = `time,latitude,longitude,depth,mag,place
2024-01-01T00:00:00.000Z,35.1,139.2,10,5.2,"Tokyo, Japan"
2024-01-09T12:30:00Z,-33.4,-70.6,,4.1,Santiago
not-a-time,1,2,3,4,Nowhere
2024-01-15 08:00:00,10,20,abc,6.0,Sea
`

type countingSource struct {
	body  string
	err   error
	opens atomic.Int32
}

func (s *countingSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s.opens.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    Selector
		wantErr bool
	}{
		{"2024", Year(2024), false},
		{"all", AllYears, false},
		{"24", Selector{}, true},
		{"20x4", Selector{}, true},
		{"", Selector{}, true},
		{"ALL", Selector{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelector(tt.in)
			if tt.wantErr {
				if !errors.Is(err, quake.ErrInvalidSelector) {
					t.Errorf("expected ErrInvalidSelector, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSelector_Path(t *testing.T) {
	if got := Year(2024).Path(2004, 2025); got != "data/2024/2024.csv" {
		t.Errorf("unexpected year path %s", got)
	}
	if got := AllYears.Path(2004, 2025); got != "data/2004-2025.csv" {
		t.Errorf("unexpected all path %s", got)
	}
}

func TestSelector_NextWraps(t *testing.T) {
	if got := Year(2025).Next(2004, 2025, 1); got != AllYears {
		t.Errorf("expected all after last year, got %v", got)
	}
	if got := AllYears.Next(2004, 2025, 1); got != Year(2004) {
		t.Errorf("expected wrap to first year, got %v", got)
	}
	if got := Year(2004).Next(2004, 2025, -1); got != AllYears {
		t.Errorf("expected wrap backwards to all, got %v", got)
	}
}

func TestDecode_CoercionAndSkips(t *testing.T) {
	ds, report, err := Decode(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if report.Total != 4 || report.Loaded != 3 || report.Skipped != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "line 4") {
		t.Errorf("expected line 4 error, got %v", report.Errors)
	}
	if ds.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", ds.Len())
	}

	if ds[0].Place != "Tokyo, Japan" || ds[0].Magnitude != 5.2 {
		t.Errorf("unexpected first record %+v", ds[0])
	}
	if ds[0].Year != 2024 || !ds[0].Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected time %v", ds[0].Time)
	}
	if ds[1].Depth != 0 {
		t.Errorf("expected empty depth to coerce to 0, got %v", ds[1].Depth)
	}
	if !math.IsNaN(ds[2].Depth) {
		t.Errorf("expected non-numeric depth to coerce to NaN, got %v", ds[2].Depth)
	}
	if ds[2].Time.Hour() != 8 {
		t.Errorf("expected space layout to parse, got %v", ds[2].Time)
	}
}

func TestDecode_MissingColumn(t *testing.T) {
	_, _, err := Decode(strings.NewReader("time,latitude,longitude\n"))
	if err == nil || !strings.Contains(err.Error(), "mag") {
		t.Errorf("expected missing column error, got %v", err)
	}
}

func TestDecode_HeaderCaseInsensitive(t *testing.T) {
	csv := "Time, Latitude,LONGITUDE,Depth,Mag,Place,extra\n2024-02-01,1,2,3,4,here,x\n"
	ds, _, err := Decode(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ds.Len() != 1 || ds[0].Longitude != 2 {
		t.Errorf("unexpected dataset %+v", ds)
	}
}

func TestLoader_CachesSuccess(t *testing.T) {
	src := &countingSource{body: sampleCSV}
	l := New(src)

	for i := 0; i < 3; i++ {
		ds, _, err := l.Load(context.Background(), Year(2024))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if ds.Len() != 3 {
			t.Errorf("expected 3 records, got %d", ds.Len())
		}
	}
	if n := src.opens.Load(); n != 1 {
		t.Errorf("expected 1 fetch, got %d", n)
	}

	l.Forget(Year(2024))
	if _, _, err := l.Load(context.Background(), Year(2024)); err != nil {
		t.Fatal(err)
	}
	if n := src.opens.Load(); n != 2 {
		t.Errorf("expected refetch after Forget, got %d opens", n)
	}
}

func TestLoader_FailureNotCached(t *testing.T) {
	src := &countingSource{err: os.ErrNotExist}
	l := New(src)

	_, _, err := l.Load(context.Background(), Year(2030))
	if !errors.Is(err, quake.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	var fe *quake.FetchError
	if !errors.As(err, &fe) || fe.Path != "data/2030/2030.csv" {
		t.Errorf("expected FetchError with path, got %v", err)
	}

	src.err = nil
	src.body = sampleCSV
	if _, _, err := l.Load(context.Background(), Year(2030)); err != nil {
		t.Errorf("expected retry to succeed, got %v", err)
	}
}

func TestLoader_ParseFailure(t *testing.T) {
	l := New(&countingSource{body: ""})
	_, _, err := l.Load(context.Background(), AllYears)
	if !errors.Is(err, quake.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "data", "2024")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2024.csv"), []byte(sampleCSV), 0644); err != nil {
		t.Fatal(err)
	}

	l := New(DirSource{Root: root})
	ds, _, err := l.Load(context.Background(), Year(2024))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 3 {
		t.Errorf("expected 3 records, got %d", ds.Len())
	}

	if _, _, err := l.Load(context.Background(), Year(2023)); !errors.Is(err, quake.ErrFetch) {
		t.Errorf("expected ErrFetch for missing file, got %v", err)
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2004-2025.csv" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, sampleCSV)
	}))
	defer srv.Close()

	l := New(HTTPSource{BaseURL: srv.URL + "/"})
	ds, _, err := l.Load(context.Background(), AllYears)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 3 {
		t.Errorf("expected 3 records, got %d", ds.Len())
	}

	if _, _, err := l.Load(context.Background(), Year(2024)); !errors.Is(err, quake.ErrFetch) {
		t.Errorf("expected ErrFetch for 404, got %v", err)
	}
}
