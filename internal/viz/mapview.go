package viz

import (
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/quakeview/internal/geo"
	"github.com/san-kum/quakeview/internal/view"
)

// markerScale converts screen-pixel radii to braille dots.
const markerScale = 0.4

// heat gradient stops of the web heat overlay.
var heatStops = []struct {
	at  float64
	hex string
}{
	{0.4, "#0000ff"},
	{0.6, "#00ffff"},
	{0.7, "#00ff00"},
	{0.8, "#ffff00"},
	{1.0, "#ff0000"},
}

// MapView is a terminal map surface. The viewport is measured in braille
// dots so that zoom 2 spans the whole world horizontally.
type MapView struct {
	mu sync.Mutex

	canvas   *Canvas
	viewport geo.Viewport
	layer    int
	showHeat bool

	markers  []view.Marker
	heat     []view.HeatPoint
	heatOpts view.HeatOptions
}

var _ view.MapSurface = (*MapView)(nil)

func NewMapView(cols, rows int, center geo.LatLng, zoom int) *MapView {
	m := &MapView{canvas: NewCanvas(cols, rows), showHeat: true}
	m.viewport = m.fitViewport(center, zoom)
	return m
}

func (m *MapView) fitViewport(center geo.LatLng, zoom int) geo.Viewport {
	v := geo.NewViewport(center, zoom, float64(m.canvas.DotWidth()), float64(m.canvas.DotHeight()))
	v.TileSize = float64(m.canvas.DotWidth()) / math.Exp2(geo.DefaultZoom)
	return v
}

func (m *MapView) Project(lat, lon float64) (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport.Project(lat, lon)
}

func (m *MapView) Zoom() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport.Zoom
}

func (m *MapView) ClearOverlays() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers, m.heat = nil, nil
}

func (m *MapView) DrawMarkers(markers []view.Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers = markers
}

func (m *MapView) DrawHeat(points []view.HeatPoint, opts view.HeatOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heat, m.heatOpts = points, opts
}

// SetZoom changes the zoom level; callers follow up with a zoom-end redraw.
func (m *MapView) SetZoom(z int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = m.viewport.WithZoom(z)
}

// Pan shifts the view by a fraction of its size.
func (m *MapView) Pan(fx, fy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = m.viewport.Pan(fx*m.viewport.Width, fy*m.viewport.Height)
}

func (m *MapView) Resize(cols, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cols < 1 || rows < 1 {
		return
	}
	center, zoom := m.viewport.Center, m.viewport.Zoom
	m.canvas = NewCanvas(cols, rows)
	m.viewport = m.fitViewport(center, zoom)
}

func (m *MapView) CycleLayer() view.BaseLayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layer = (m.layer + 1) % len(view.BaseLayers)
	return view.BaseLayers[m.layer]
}

func (m *MapView) SetLayer(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= 0 && i < len(view.BaseLayers) {
		m.layer = i
	}
}

func (m *MapView) Layer() view.BaseLayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return view.BaseLayers[m.layer]
}

func (m *MapView) ToggleHeat() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showHeat = !m.showHeat
	return m.showHeat
}

func (m *MapView) MarkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.markers)
}

// Render draws graticule, heat and markers, in that order.
func (m *MapView) Render() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draw()
	return m.canvas.Render()
}

// Snapshot draws the map and returns a copy of its canvas.
func (m *MapView) Snapshot() *Canvas {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draw()
	return m.canvas.Clone()
}

func (m *MapView) draw() {
	m.canvas.Clear()
	m.drawGraticule()
	if m.showHeat {
		m.drawHeat()
	}
	for _, mk := range m.markers {
		m.canvas.FillCircle(int(mk.X), int(mk.Y), mk.Radius*markerScale, mk.Color)
	}
}

func (m *MapView) drawGraticule() {
	ink := ThemeFor(view.BaseLayers[m.layer]).Graticule
	for lat := -60.0; lat <= 60; lat += 30 {
		_, y := m.viewport.Project(lat, 0)
		if y >= 0 && y < m.viewport.Height {
			for x := 0; x < m.canvas.DotWidth(); x += 4 {
				m.canvas.SetColor(x, int(y), ink)
			}
		}
	}
	for lon := -180.0; lon <= 180; lon += 60 {
		x, _ := m.viewport.Project(0, lon)
		if x >= 0 && x < m.viewport.Width {
			for y := 0; y < m.canvas.DotHeight(); y += 4 {
				m.canvas.SetColor(int(x), y, ink)
			}
		}
	}
}

// drawHeat accumulates weights per cell with a radial falloff and shades
// cells by the heat gradient. Intensity is scaled down below MaxZoom.
func (m *MapView) drawHeat() {
	if len(m.heat) == 0 {
		return
	}
	rows, cols := m.canvas.Height, m.canvas.Width
	grid := make([][]float64, rows)
	for i := range grid {
		grid[i] = make([]float64, cols)
	}

	scaleDown := 1 / math.Exp2(math.Max(0, math.Min(float64(m.heatOpts.MaxZoom-m.viewport.Zoom), 12)))
	radius := (m.heatOpts.Radius + m.heatOpts.Blur) * markerScale / 2
	rc := int(math.Ceil(radius / 2))

	for _, p := range m.heat {
		x, y := m.viewport.Project(p.Lat, p.Lon)
		col, row := int(x)/2, int(y)/4
		for dr := -rc; dr <= rc; dr++ {
			for dc := -rc; dc <= rc; dc++ {
				r, c := row+dr, col+dc
				if r < 0 || c < 0 || r >= rows || c >= cols {
					continue
				}
				d := math.Hypot(float64(dc*2), float64(dr*4)) / math.Max(radius, 1)
				if d > 1 {
					continue
				}
				grid[r][c] += p.Weight * scaleDown * (1 - d)
			}
		}
	}

	for r := range grid {
		for c, v := range grid[r] {
			if v < 0.05 {
				continue
			}
			m.canvas.Shade(r, c, HeatColor(math.Min(v, 1)))
		}
	}
}

// HeatColor maps an intensity in [0, 1] onto the heat gradient.
func HeatColor(v float64) string {
	first, _ := colorful.Hex(heatStops[0].hex)
	if v <= heatStops[0].at {
		return first.Hex()
	}
	for i := 1; i < len(heatStops); i++ {
		if v <= heatStops[i].at {
			a, _ := colorful.Hex(heatStops[i-1].hex)
			b, _ := colorful.Hex(heatStops[i].hex)
			t := (v - heatStops[i-1].at) / (heatStops[i].at - heatStops[i-1].at)
			return a.BlendLab(b, t).Clamped().Hex()
		}
	}
	return heatStops[len(heatStops)-1].hex
}
