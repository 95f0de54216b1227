package quake

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type Record struct {
	Latitude  float64
	Longitude float64
	Magnitude float64
	Depth     float64
	Time      time.Time
	Year      int
	Place     string
}

// Value returns the record field backing attr, or NaN for an unknown attribute.
func (r Record) Value(attr Attribute) float64 {
	switch attr {
	case AttrYear:
		return float64(r.Year)
	case AttrMagnitude:
		return r.Magnitude
	case AttrDepth:
		return r.Depth
	}
	return math.NaN()
}

// Tooltip is the hover text shown for a marker.
func (r Record) Tooltip() string {
	return fmt.Sprintf("Location: %s\nDate: %s\nMagnitude: %g\nDepth: %g km",
		r.Place, r.Time.Format("2006-01-02 15:04:05"), r.Magnitude, r.Depth)
}

type Dataset []Record

func (d Dataset) Len() int { return len(d) }

// Clone returns an independent copy.
func (d Dataset) Clone() Dataset {
	c := make(Dataset, len(d))
	copy(c, d)
	return c
}

// SortedByTime returns a chronologically sorted copy. Equal times keep source order.
func (d Dataset) SortedByTime() Dataset {
	c := d.Clone()
	sort.SliceStable(c, func(i, j int) bool { return c[i].Time.Before(c[j].Time) })
	return c
}

// Filter returns the records for which keep reports true, in source order.
func (d Dataset) Filter(keep func(Record) bool) Dataset {
	out := make(Dataset, 0, len(d))
	for _, r := range d {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

type Attribute string

const (
	AttrYear      Attribute = "year"
	AttrMagnitude Attribute = "mag"
	AttrDepth     Attribute = "depth"
)

// Attributes lists every color attribute in selector order.
var Attributes = []Attribute{AttrMagnitude, AttrDepth, AttrYear}

func ParseAttribute(s string) (Attribute, error) {
	switch a := Attribute(s); a {
	case AttrYear, AttrMagnitude, AttrDepth:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, s)
}

// Label is the human-readable attribute name.
func (a Attribute) Label() string {
	switch a {
	case AttrYear:
		return "Year"
	case AttrMagnitude:
		return "Magnitude"
	case AttrDepth:
		return "Depth"
	}
	return string(a)
}

// ValueRange is the [Min, Max] domain of one attribute over a dataset.
type ValueRange struct {
	Min float64
	Max float64
}

// EmptyRange is the range of a dataset with no finite values.
func EmptyRange() ValueRange {
	return ValueRange{Min: math.Inf(1), Max: math.Inf(-1)}
}

func (v ValueRange) Empty() bool { return !(v.Min <= v.Max) }

// Extend widens the range to include x. NaN is ignored.
func (v ValueRange) Extend(x float64) ValueRange {
	if math.IsNaN(x) {
		return v
	}
	if x < v.Min {
		v.Min = x
	}
	if x > v.Max {
		v.Max = x
	}
	return v
}

func (v ValueRange) Contains(x float64) bool {
	return !v.Empty() && x >= v.Min && x <= v.Max
}
