package encoding

import (
	"math"
	"testing"

	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/scale"
)

func sample() quake.Dataset {
	return quake.Dataset{
		{Magnitude: 5.0, Depth: 10, Year: 2023},
		{Magnitude: 6.0, Depth: math.NaN(), Year: 2024},
		{Magnitude: math.NaN(), Depth: 30, Year: 2024},
	}
}

func TestRangesOf(t *testing.T) {
	r := RangesOf(sample())

	tests := []struct {
		attr     quake.Attribute
		min, max float64
	}{
		{quake.AttrMagnitude, 5, 6},
		{quake.AttrDepth, 10, 30},
		{quake.AttrYear, 2023, 2024},
	}
	for _, tt := range tests {
		got := r.Get(tt.attr)
		if got.Min != tt.min || got.Max != tt.max {
			t.Errorf("%s: expected [%v, %v], got [%v, %v]", tt.attr, tt.min, tt.max, got.Min, got.Max)
		}
	}
}

func TestRangesOf_Empty(t *testing.T) {
	r := RangesOf(nil)
	for _, a := range quake.Attributes {
		if !r.Get(a).Empty() {
			t.Errorf("%s: expected empty range", a)
		}
	}
}

func TestColorFor_DoesNotTouchRanges(t *testing.T) {
	ds := sample()
	r := RangesOf(ds)
	before := r.Get(quake.AttrDepth)

	for _, a := range quake.Attributes {
		for _, rec := range ds {
			ColorFor(rec, a, r)
		}
	}
	if r.Get(quake.AttrDepth) != before {
		t.Error("switching attributes changed an untouched range")
	}
}

func TestColorFor(t *testing.T) {
	ds := sample()
	r := RangesOf(ds)

	if got := ColorFor(ds[0], quake.AttrMagnitude, r); got != "#fff7ec" {
		t.Errorf("expected OrRd start for min magnitude, got %s", got)
	}
	if got := ColorFor(ds[2], quake.AttrMagnitude, r); got != scale.Neutral {
		t.Errorf("expected neutral for NaN magnitude, got %s", got)
	}
	if got := ColorFor(ds[2], quake.AttrDepth, r); got != "#081d58" {
		t.Errorf("expected YlGnBu end for max depth, got %s", got)
	}
	if got := ColorFor(ds[0], quake.AttrYear, r); got != "#440154" {
		t.Errorf("expected viridis start for min year, got %s", got)
	}
}

func TestRadiusFor(t *testing.T) {
	rec := quake.Record{Magnitude: 5}

	tests := []struct {
		name   string
		bymag  bool
		zoom   int
		expect float64
	}{
		{"fixed at reference zoom", false, 2, 3},
		{"fixed zoomed in", false, 6, 7},
		{"by magnitude", true, 2, 10},
		{"by magnitude zoomed", true, 4, 12},
		{"floored at zero", false, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RadiusFor(rec, tt.bymag, tt.zoom); got != tt.expect {
				t.Errorf("expected %v, got %v", tt.expect, got)
			}
		})
	}

	if got := RadiusFor(quake.Record{Magnitude: math.NaN()}, true, 2); got != 3 {
		t.Errorf("expected NaN magnitude to fall back to base, got %v", got)
	}
}

func TestRadiusFor_MonotonicInZoom(t *testing.T) {
	for _, bymag := range []bool{false, true} {
		prev := -1.0
		for z := 0; z <= 18; z++ {
			r := RadiusFor(quake.Record{Magnitude: 4.5}, bymag, z)
			if r < prev {
				t.Fatalf("radius decreased at zoom %d", z)
			}
			prev = r
		}
	}
}

func TestLegend(t *testing.T) {
	r := RangesOf(sample())
	stops := Legend(quake.AttrMagnitude, r, 5)
	if len(stops) != 5 || stops[0].Value != 5 || stops[4].Value != 6 {
		t.Errorf("unexpected legend %+v", stops)
	}
	if Legend(quake.AttrMagnitude, RangesOf(nil), 5) != nil {
		t.Error("expected no legend for empty range")
	}
	if HoverRadius(4) != 6 {
		t.Error("expected hover radius 1.5x")
	}
}
