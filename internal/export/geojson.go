package export

import (
	"fmt"
	"math"
	"os"

	geojson "github.com/paulmach/go.geojson"

	"github.com/san-kum/quakeview/internal/quake"
)

// Located reports whether r has finite coordinates.
func Located(r quake.Record) bool {
	return finite(r.Latitude) && finite(r.Longitude)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// FeatureCollection converts ds to GeoJSON points. Records without finite
// coordinates are left out. Unknown or infinite magnitude and depth are
// written as null.
func FeatureCollection(ds quake.Dataset) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range ds {
		if !Located(r) {
			continue
		}
		f := geojson.NewPointFeature([]float64{r.Longitude, r.Latitude})
		f.SetProperty("time", r.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
		f.SetProperty("year", r.Year)
		f.SetProperty("mag", nullable(r.Magnitude))
		f.SetProperty("depth", nullable(r.Depth))
		f.SetProperty("place", r.Place)
		fc.AddFeature(f)
	}
	return fc
}

func nullable(v float64) interface{} {
	if !finite(v) {
		return nil
	}
	return v
}

func WriteGeoJSON(path string, ds quake.Dataset) error {
	data, err := FeatureCollection(ds).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}

// ReadGeoJSON reads a collection written by WriteGeoJSON.
func ReadGeoJSON(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	return fc, nil
}
