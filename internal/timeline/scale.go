package timeline

import (
	"math"
	"time"
)

// Scale maps a TimeRange linearly onto [0, Width] pixels.
type Scale struct {
	Range TimeRange
	Width float64
}

func NewScale(r TimeRange, width float64) Scale {
	return Scale{Range: r, Width: width}
}

// Map returns the pixel offset of t. A zero-length range maps to the midpoint.
func (s Scale) Map(t time.Time) float64 {
	span := s.Range.Span()
	if span <= 0 {
		return s.Width / 2
	}
	return float64(t.Sub(s.Range.Min)) / float64(span) * s.Width
}

// Invert returns the time at pixel px.
func (s Scale) Invert(px float64) time.Time {
	span := s.Range.Span()
	if span <= 0 || s.Width == 0 {
		return s.Range.Min
	}
	return s.Range.Min.Add(time.Duration(math.Round(px / s.Width * float64(span))))
}

// Selection is a brushed time window, inclusive on both ends.
type Selection struct {
	Start time.Time
	End   time.Time
}

// FromPixels converts a pixel brush into a selection, clamped to the scale.
func FromPixels(s Scale, x0, x1 float64) Selection {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	x0 = math.Max(0, math.Min(s.Width, x0))
	x1 = math.Max(0, math.Min(s.Width, x1))
	return Selection{Start: s.Invert(x0), End: s.Invert(x1)}
}

func (sel Selection) Contains(t time.Time) bool {
	return !t.Before(sel.Start) && !t.After(sel.End)
}

// Shift moves both ends by d, keeping the window inside r.
func (sel Selection) Shift(d time.Duration, r TimeRange) Selection {
	width := sel.End.Sub(sel.Start)
	start := sel.Start.Add(d)
	if start.Before(r.Min) {
		start = r.Min
	}
	if start.Add(width).After(r.Max) {
		start = r.Max.Add(-width)
	}
	return Selection{Start: start, End: start.Add(width)}
}
