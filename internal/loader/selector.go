package loader

import (
	"fmt"
	"strconv"

	"github.com/san-kum/quakeview/internal/quake"
)

const (
	DefaultFirstYear = 2004
	DefaultLastYear  = 2025
	allSentinel      = "all"
)

// Selector picks either a single calendar year or the all-years aggregate.
type Selector struct {
	Year int
	All  bool
}

// AllYears selects the combined resource.
var AllYears = Selector{All: true}

func Year(y int) Selector { return Selector{Year: y} }

// ParseSelector accepts a 4-digit year or the sentinel "all".
func ParseSelector(s string) (Selector, error) {
	if s == allSentinel {
		return AllYears, nil
	}
	if len(s) != 4 {
		return Selector{}, fmt.Errorf("%w: %q", quake.ErrInvalidSelector, s)
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 {
		return Selector{}, fmt.Errorf("%w: %q", quake.ErrInvalidSelector, s)
	}
	return Year(y), nil
}

func (s Selector) String() string {
	if s.All {
		return allSentinel
	}
	return strconv.Itoa(s.Year)
}

// Label is the phrase used in status messages.
func (s Selector) Label() string {
	if s.All {
		return "all years"
	}
	return strconv.Itoa(s.Year)
}

// Path maps the selector onto the data directory convention.
func (s Selector) Path(first, last int) string {
	if s.All {
		return fmt.Sprintf("data/%d-%d.csv", first, last)
	}
	return fmt.Sprintf("data/%d/%d.csv", s.Year, s.Year)
}

// Selectors lists every single-year selector in [first, last] followed by AllYears.
func Selectors(first, last int) []Selector {
	out := make([]Selector, 0, last-first+2)
	for y := first; y <= last; y++ {
		out = append(out, Year(y))
	}
	return append(out, AllYears)
}

// Next returns the selector after s in the Selectors order, wrapping around.
func (s Selector) Next(first, last int, dir int) Selector {
	all := Selectors(first, last)
	idx := len(all) - 1
	for i, c := range all {
		if c == s {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(all)) % len(all)
	return all[idx]
}
