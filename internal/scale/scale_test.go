package scale

import (
	"math"
	"testing"

	"github.com/san-kum/quakeview/internal/quake"
)

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestTicks(t *testing.T) {
	tests := []struct {
		name        string
		start, stop float64
		count       int
		want        []float64
	}{
		{"unit steps", 0, 10, 10, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"half steps", 4, 7, 6, []float64{4, 4.5, 5, 5.5, 6, 6.5, 7}},
		{"fives", 0, 100, 20, []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100}},
		{"inner only", 0.3, 2.7, 2, []float64{1, 2}},
		{"reversed", 3, 0, 3, []float64{3, 2, 1, 0}},
		{"equal", 5, 5, 10, []float64{5}},
		{"zero count", 0, 10, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ticks(tt.start, tt.stop, tt.count)
			if !equalFloats(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestScheme_Endpoints(t *testing.T) {
	for _, s := range []Scheme{Viridis, OrRd, YlGnBu} {
		first := s.stops[0].Hex()
		last := s.stops[len(s.stops)-1].Hex()
		if got := s.At(0).Hex(); got != first {
			t.Errorf("%s: expected %s at 0, got %s", s.Name, first, got)
		}
		if got := s.At(1).Hex(); got != last {
			t.Errorf("%s: expected %s at 1, got %s", s.Name, last, got)
		}
		if got := s.At(-3).Hex(); got != first {
			t.Errorf("%s: expected clamp below 0", s.Name)
		}
	}
}

func TestSequential_Hex(t *testing.T) {
	q := NewSequential(OrRd, quake.ValueRange{Min: 4, Max: 8})

	if got := q.Hex(4); got != "#fff7ec" {
		t.Errorf("expected scale start, got %s", got)
	}
	if got := q.Hex(8); got != "#7f0000" {
		t.Errorf("expected scale end, got %s", got)
	}
	if got := q.Hex(math.NaN()); got != Neutral {
		t.Errorf("expected neutral for NaN, got %s", got)
	}
	if mid := q.Hex(6); mid == q.Hex(4) || mid == q.Hex(8) {
		t.Errorf("expected midpoint to differ from endpoints, got %s", mid)
	}
}

func TestSequential_DegenerateAndEmpty(t *testing.T) {
	flat := NewSequential(Viridis, quake.ValueRange{Min: 5, Max: 5})
	if got := flat.Hex(5); got != "#440154" {
		t.Errorf("expected degenerate domain to map to start, got %s", got)
	}

	empty := NewSequential(Viridis, quake.EmptyRange())
	if got := empty.Hex(5); got != Neutral {
		t.Errorf("expected neutral for empty domain, got %s", got)
	}
}
