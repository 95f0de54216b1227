// Package distribution builds the magnitude and depth frequency histograms
// shown beside the map.
package distribution

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/scale"
)

type Kind string

const (
	KindMagnitude Kind = "mag"
	KindDepth     Kind = "depth"
	KindDuration  Kind = "duration"
)

var Kinds = []Kind{KindMagnitude, KindDepth, KindDuration}

const depthTickCount = 20

const durationNote = "Duration data is not currently available"

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindMagnitude, KindDepth, KindDuration:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", quake.ErrUnknownDistribution, s)
}

// Bin counts values in [Lo, Hi); the final bin of a histogram includes Hi.
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

type Histogram struct {
	Kind  Kind
	Title string
	Unit  string
	Fill  string
	Bins  []Bin
	Note  string
}

// Empty reports whether there is nothing to draw.
func (h Histogram) Empty() bool { return len(h.Bins) == 0 }

func (h Histogram) MaxCount() int {
	m := 0
	for _, b := range h.Bins {
		if b.Count > m {
			m = b.Count
		}
	}
	return m
}

func (h Histogram) Total() int {
	n := 0
	for _, b := range h.Bins {
		n += b.Count
	}
	return n
}

// Tooltip describes bin i of the histogram.
func (h Histogram) Tooltip(i int) string {
	b := h.Bins[i]
	label := "Magnitude"
	if h.Kind == KindDepth {
		label = "Depth"
	}
	return fmt.Sprintf("%s Range: %.1f - %.1f%s\nCount: %d", label, b.Lo, b.Hi, h.Unit, b.Count)
}

// Build computes the histogram of kind over ds.
func Build(ds quake.Dataset, kind Kind) Histogram {
	switch kind {
	case KindDepth:
		return depthHistogram(ds)
	case KindDuration:
		return Histogram{Kind: KindDuration, Title: "Earthquake Frequency by Duration", Note: durationNote}
	default:
		return magnitudeHistogram(ds)
	}
}

func magnitudeHistogram(ds quake.Dataset) Histogram {
	h := Histogram{Kind: KindMagnitude, Title: "Earthquake Frequency by Magnitude", Fill: "#ff6347"}
	values, vr := collect(ds, quake.AttrMagnitude)
	if vr.Empty() {
		return h
	}
	lo, hi := math.Floor(vr.Min), math.Ceil(vr.Max)
	h.Bins = binValues(values, lo, hi, scale.Ticks(lo, hi, int(hi-lo)*2))
	return h
}

func depthHistogram(ds quake.Dataset) Histogram {
	h := Histogram{Kind: KindDepth, Title: "Earthquake Frequency by Depth", Unit: " km", Fill: "#2e8b57"}
	values, vr := collect(ds, quake.AttrDepth)
	if vr.Empty() || vr.Max < 0 {
		return h
	}
	h.Bins = binValues(values, 0, vr.Max, scale.Ticks(0, vr.Max, depthTickCount))
	return h
}

func collect(ds quake.Dataset, attr quake.Attribute) ([]float64, quake.ValueRange) {
	vr := quake.EmptyRange()
	values := make([]float64, 0, len(ds))
	for _, rec := range ds {
		v := rec.Value(attr)
		values = append(values, v)
		vr = vr.Extend(v)
	}
	return values, vr
}

// binValues keeps thresholds in (lo, hi] and drops values outside [lo, hi].
func binValues(values []float64, lo, hi float64, thresholds []float64) []Bin {
	tz := make([]float64, 0, len(thresholds))
	for _, t := range thresholds {
		if t > lo && t <= hi {
			tz = append(tz, t)
		}
	}

	bins := make([]Bin, len(tz)+1)
	for i := range bins {
		bins[i].Lo, bins[i].Hi = lo, hi
		if i > 0 {
			bins[i].Lo = tz[i-1]
		}
		if i < len(tz) {
			bins[i].Hi = tz[i]
		}
	}

	for _, v := range values {
		if !(lo <= v && v <= hi) {
			continue
		}
		idx := sort.Search(len(tz), func(i int) bool { return tz[i] > v })
		bins[idx].Count++
	}
	return bins
}
