package view

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/encoding"
	"github.com/san-kum/quakeview/internal/quake"
)

// Options are the initial encoding selections.
type Options struct {
	ColorBy         quake.Attribute
	SizeByMagnitude bool
	Distribution    distribution.Kind
}

// Coordinator owns the active dataset and keeps the map and the distribution
// chart in step with it. It is not safe for concurrent use; front ends call
// it from their event loop.
type Coordinator struct {
	mapSurface MapSurface
	chart      ChartSurface
	log        log.FieldLogger

	active quake.Dataset
	ranges encoding.Ranges

	colorBy   quake.Attribute
	sizeByMag bool
	dist      distribution.Kind

	passes int
}

func NewCoordinator(m MapSurface, chart ChartSurface, opts Options, logger log.FieldLogger) *Coordinator {
	if opts.ColorBy == "" {
		opts.ColorBy = quake.AttrMagnitude
	}
	if opts.Distribution == "" {
		opts.Distribution = distribution.KindMagnitude
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Coordinator{
		mapSurface: m,
		chart:      chart,
		log:        logger,
		ranges:     encoding.RangesOf(nil),
		colorBy:    opts.ColorBy,
		sizeByMag:  opts.SizeByMagnitude,
		dist:       opts.Distribution,
	}
}

// SetActiveDataset replaces the active dataset and redraws the map overlays
// and the distribution chart. The timeline is left alone.
func (c *Coordinator) SetActiveDataset(ds quake.Dataset) {
	c.active = ds
	c.passes++

	c.mapSurface.ClearOverlays()

	c.ranges = encoding.RangesOf(ds)
	c.mapSurface.DrawMarkers(c.buildMarkers())
	c.mapSurface.DrawHeat(heatPoints(ds), DefaultHeatOptions)

	c.chart.DrawDistribution(c.Histogram())

	c.log.WithFields(log.Fields{"records": len(ds), "pass": c.passes}).Debug("active dataset replaced")
}

func (c *Coordinator) SetColorAttribute(a quake.Attribute) {
	c.colorBy = a
	c.redrawMarkers()
}

func (c *Coordinator) SetSizeByMagnitude(on bool) {
	c.sizeByMag = on
	c.redrawMarkers()
}

// ZoomEnded reprojects markers and recomputes radii at the new zoom.
func (c *Coordinator) ZoomEnded() {
	c.redrawMarkers()
}

func (c *Coordinator) SetDistribution(k distribution.Kind) {
	c.dist = k
	c.chart.DrawDistribution(c.Histogram())
}

func (c *Coordinator) redrawMarkers() {
	c.mapSurface.DrawMarkers(c.buildMarkers())
}

func (c *Coordinator) buildMarkers() []Marker {
	zoom := c.mapSurface.Zoom()
	out := make([]Marker, len(c.active))
	for i, rec := range c.active {
		x, y := c.mapSurface.Project(rec.Latitude, rec.Longitude)
		r := encoding.RadiusFor(rec, c.sizeByMag, zoom)
		out[i] = Marker{
			X:           x,
			Y:           y,
			Radius:      r,
			HoverRadius: encoding.HoverRadius(r),
			Color:       encoding.ColorFor(rec, c.colorBy, c.ranges),
			Tooltip:     rec.Tooltip(),
			Record:      rec,
		}
	}
	return out
}

func heatPoints(ds quake.Dataset) []HeatPoint {
	out := make([]HeatPoint, len(ds))
	for i, rec := range ds {
		w := rec.Magnitude
		if math.IsNaN(w) {
			w = 0
		}
		out[i] = HeatPoint{Lat: rec.Latitude, Lon: rec.Longitude, Weight: w}
	}
	return out
}

// Histogram builds the distribution of the active dataset for the selected kind.
func (c *Coordinator) Histogram() distribution.Histogram {
	return distribution.Build(c.active, c.dist)
}

func (c *Coordinator) Active() quake.Dataset           { return c.active }
func (c *Coordinator) Ranges() encoding.Ranges         { return c.ranges }
func (c *Coordinator) ColorAttribute() quake.Attribute { return c.colorBy }
func (c *Coordinator) SizeByMagnitude() bool           { return c.sizeByMag }
func (c *Coordinator) Distribution() distribution.Kind { return c.dist }

// Passes counts full SetActiveDataset passes.
func (c *Coordinator) Passes() int { return c.passes }
