package scale

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/quakeview/internal/quake"
)

// Neutral is used for values that cannot be placed on a scale.
const Neutral = "#808080"

// Scheme is an ordered list of color stops interpolated in CIE-Lab.
type Scheme struct {
	Name  string
	stops []colorful.Color
}

func mustScheme(name string, hexes ...string) Scheme {
	s := Scheme{Name: name, stops: make([]colorful.Color, len(hexes))}
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic("scale: bad stop " + h + " in " + name)
		}
		s.stops[i] = c
	}
	return s
}

var (
	Viridis = mustScheme("viridis",
		"#440154", "#472d7b", "#3b528b", "#2c728e", "#21918c",
		"#28ae80", "#5ec962", "#addc30", "#fde725")

	OrRd = mustScheme("orrd",
		"#fff7ec", "#fee8c8", "#fdd49e", "#fdbb84", "#fc8d59",
		"#ef6548", "#d7301f", "#b30000", "#7f0000")

	YlGnBu = mustScheme("ylgnbu",
		"#ffffd9", "#edf8b1", "#c7e9b4", "#7fcdbb", "#41b6c4",
		"#1d91c0", "#225ea8", "#253494", "#081d58")
)

// At returns the color at t in [0, 1]; t is clamped.
func (s Scheme) At(t float64) colorful.Color {
	n := len(s.stops)
	switch {
	case n == 0:
		c, _ := colorful.Hex(Neutral)
		return c
	case n == 1 || t <= 0:
		return s.stops[0]
	case t >= 1:
		return s.stops[n-1]
	}
	pos := t * float64(n-1)
	i := int(math.Floor(pos))
	return s.stops[i].BlendLab(s.stops[i+1], pos-float64(i)).Clamped()
}

// Sequential maps a numeric domain onto a scheme.
type Sequential struct {
	Scheme Scheme
	Domain quake.ValueRange
}

func NewSequential(s Scheme, domain quake.ValueRange) Sequential {
	return Sequential{Scheme: s, Domain: domain}
}

// Normalize returns v's position in the domain. A zero-width domain maps to 0.
func (q Sequential) Normalize(v float64) float64 {
	w := q.Domain.Max - q.Domain.Min
	if w == 0 {
		return 0
	}
	return (v - q.Domain.Min) / w
}

// Hex returns the color for v, or Neutral for NaN and empty domains.
func (q Sequential) Hex(v float64) string {
	if math.IsNaN(v) || q.Domain.Empty() {
		return Neutral
	}
	return q.Scheme.At(q.Normalize(v)).Hex()
}
