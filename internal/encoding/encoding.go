// Package encoding maps earthquake records to marker colors and radii.
package encoding

import (
	"math"

	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/scale"
)

const (
	baseRadius    = 3.0
	referenceZoom = 2
	hoverFactor   = 1.5
)

// Ranges holds the per-attribute value domains of one dataset.
type Ranges map[quake.Attribute]quake.ValueRange

// RangesOf scans ds once. NaN values are skipped.
func RangesOf(ds quake.Dataset) Ranges {
	r := make(Ranges, len(quake.Attributes))
	for _, a := range quake.Attributes {
		r[a] = quake.EmptyRange()
	}
	for _, rec := range ds {
		for _, a := range quake.Attributes {
			r[a] = r[a].Extend(rec.Value(a))
		}
	}
	return r
}

// Get returns the range for attr, or the empty range when absent.
func (r Ranges) Get(attr quake.Attribute) quake.ValueRange {
	if v, ok := r[attr]; ok {
		return v
	}
	return quake.EmptyRange()
}

// SchemeFor returns the color scheme registered for attr.
func SchemeFor(attr quake.Attribute) scale.Scheme {
	switch attr {
	case quake.AttrYear:
		return scale.Viridis
	case quake.AttrDepth:
		return scale.YlGnBu
	default:
		return scale.OrRd
	}
}

// ColorFor returns the hex color of rec under attr using precomputed ranges.
func ColorFor(rec quake.Record, attr quake.Attribute, ranges Ranges) string {
	return scale.NewSequential(SchemeFor(attr), ranges.Get(attr)).Hex(rec.Value(attr))
}

// RadiusFor is base + (zoom - 2), floored at zero. The base is 3, or twice the
// magnitude when sizing by magnitude.
func RadiusFor(rec quake.Record, sizeByMagnitude bool, zoom int) float64 {
	base := baseRadius
	if sizeByMagnitude && !math.IsNaN(rec.Magnitude) {
		base = rec.Magnitude * 2
	}
	return math.Max(0, base+float64(zoom-referenceZoom))
}

func HoverRadius(r float64) float64 { return r * hoverFactor }

// Legend returns n evenly spaced (value, color) stops across attr's range.
func Legend(attr quake.Attribute, ranges Ranges, n int) []LegendStop {
	vr := ranges.Get(attr)
	if vr.Empty() || n < 2 {
		return nil
	}
	q := scale.NewSequential(SchemeFor(attr), vr)
	out := make([]LegendStop, n)
	for i := range out {
		v := vr.Min + (vr.Max-vr.Min)*float64(i)/float64(n-1)
		out[i] = LegendStop{Value: v, Color: q.Hex(v)}
	}
	return out
}

type LegendStop struct {
	Value float64
	Color string
}
