// Package viewtest provides in-memory surfaces that record draw calls.
package viewtest

import (
	"sync"
	"time"

	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/timeline"
	"github.com/san-kum/quakeview/internal/view"
)

// Recorder implements MapSurface, ChartSurface and TimelineSurface. Layers
// are replaced on every draw call, as a real surface would.
type Recorder struct {
	mu sync.Mutex

	ZoomLevel int
	Calls     []string

	Markers   []view.Marker
	Heat      []view.HeatPoint
	HeatOpts  view.HeatOptions
	Histogram distribution.Histogram
	Bins      []timeline.Bin
	Scale     timeline.Scale
	Cursor    *time.Time
	Brushed   bool
}

var (
	_ view.MapSurface      = (*Recorder)(nil)
	_ view.ChartSurface    = (*Recorder)(nil)
	_ view.TimelineSurface = (*Recorder)(nil)
)

func New(zoom int) *Recorder { return &Recorder{ZoomLevel: zoom} }

func (r *Recorder) record(call string) {
	r.Calls = append(r.Calls, call)
}

// Project is a plate carrée placement scaled by zoom.
func (r *Recorder) Project(lat, lon float64) (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := float64(int(1) << max(r.ZoomLevel, 0))
	return (lon + 180) * f, (90 - lat) * f
}

func (r *Recorder) Zoom() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ZoomLevel
}

func (r *Recorder) SetZoom(z int) {
	r.mu.Lock()
	r.ZoomLevel = z
	r.mu.Unlock()
}

func (r *Recorder) ClearOverlays() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("clear")
	r.Markers, r.Heat = nil, nil
}

func (r *Recorder) DrawMarkers(m []view.Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("markers")
	r.Markers = m
}

func (r *Recorder) DrawHeat(p []view.HeatPoint, opts view.HeatOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("heat")
	r.Heat, r.HeatOpts = p, opts
}

func (r *Recorder) DrawDistribution(h distribution.Histogram) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("distribution")
	r.Histogram = h
}

func (r *Recorder) DrawTimeline(bins []timeline.Bin, s timeline.Scale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("timeline")
	r.Bins, r.Scale = bins, s
}

func (r *Recorder) MoveCursor(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("cursor")
	r.Cursor = &t
}

func (r *Recorder) ClearCursor() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("clear-cursor")
	r.Cursor = nil
}

func (r *Recorder) ClearBrush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("clear-brush")
	r.Brushed = false
}

// Count returns how many times call was recorded.
func (r *Recorder) Count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Calls {
		if c == call {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls but keeps the current layers.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.Calls = nil
	r.mu.Unlock()
}

// Places lists the place names of the current markers.
func (r *Recorder) Places() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Markers))
	for i, m := range r.Markers {
		out[i] = m.Record.Place
	}
	return out
}
