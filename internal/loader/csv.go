package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/quakeview/internal/quake"
)

const maxReportedErrors = 10

var requiredColumns = []string{"latitude", "longitude", "mag", "depth", "time", "place"}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Report summarizes one decode pass.
type Report struct {
	Path    string
	Total   int
	Loaded  int
	Skipped int
	Errors  []string
}

func (r *Report) skip(line int, err error) {
	r.Skipped++
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("line %d: %v", line, err))
	}
}

// Decode reads an earthquake CSV. Rows with an unparseable time are
// excluded and counted in the report; numeric fields are coerced.
func Decode(r io.Reader) (quake.Dataset, Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var report Report

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, report, errors.New("empty csv: missing header")
		}
		return nil, report, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, report, fmt.Errorf("missing required csv column: %s", req)
		}
	}

	ds := make(quake.Dataset, 0, 1024)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		report.Total++
		if err != nil {
			report.skip(line, err)
			continue
		}

		get := func(col string) string {
			if idx := cols[col]; idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		ts, err := parseTime(get("time"))
		if err != nil {
			report.skip(line, err)
			continue
		}

		ds = append(ds, quake.Record{
			Latitude:  coerce(get("latitude")),
			Longitude: coerce(get("longitude")),
			Magnitude: coerce(get("mag")),
			Depth:     coerce(get("depth")),
			Time:      ts,
			Year:      ts.Year(),
			Place:     get("place"),
		})
		report.Loaded++
	}

	return ds, report, nil
}

// coerce mirrors numeric casting: blank is 0, garbage is NaN.
func coerce(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", quake.ErrInvalidTimestamp, s)
}
