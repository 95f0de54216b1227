package timeline

import (
	"fmt"
	"time"

	"github.com/san-kum/quakeview/internal/quake"
)

// Interval is a calendar bucket width.
type Interval interface {
	Name() string
	// Floor returns the latest boundary at or before t.
	Floor(t time.Time) time.Time
	// Offset moves a boundary forward by n intervals.
	Offset(t time.Time, n int) time.Time
}

type Week struct{ Loc *time.Location }
type Day struct{ Loc *time.Location }
type Month struct{ Loc *time.Location }

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

func (Week) Name() string { return "week" }

// Floor aligns to Sunday midnight.
func (w Week) Floor(t time.Time) time.Time {
	t = t.In(locOrUTC(w.Loc))
	return time.Date(t.Year(), t.Month(), t.Day()-int(t.Weekday()), 0, 0, 0, 0, t.Location())
}

func (Week) Offset(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) }

func (Day) Name() string { return "day" }

func (d Day) Floor(t time.Time) time.Time {
	t = t.In(locOrUTC(d.Loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (Day) Offset(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }

func (Month) Name() string { return "month" }

func (m Month) Floor(t time.Time) time.Time {
	t = t.In(locOrUTC(m.Loc))
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func (Month) Offset(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) }

// ParseInterval resolves "week", "day" or "month" in loc (UTC when nil).
func ParseInterval(name string, loc *time.Location) (Interval, error) {
	switch name {
	case "week", "":
		return Week{Loc: loc}, nil
	case "day":
		return Day{Loc: loc}, nil
	case "month":
		return Month{Loc: loc}, nil
	}
	return nil, fmt.Errorf("%w: %q", quake.ErrUnknownInterval, name)
}

// Boundaries returns the interval boundaries strictly inside (r.Min, r.Max).
func Boundaries(r TimeRange, iv Interval) []time.Time {
	if r.Empty() {
		return nil
	}
	var out []time.Time
	for b := iv.Offset(iv.Floor(r.Min), 1); b.Before(r.Max); b = iv.Offset(b, 1) {
		out = append(out, b)
	}
	return out
}
