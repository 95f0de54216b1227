// Package report renders the dashboard views into a standalone HTML page
// with go-echarts.
package report

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/encoding"
	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/scale"
	"github.com/san-kum/quakeview/internal/timeline"
	"github.com/san-kum/quakeview/internal/view"
)

const (
	MapTitle      = "Earthquake Map"
	DensityTitle  = "Earthquake Density"
	TimelineTitle = "Earthquake Timeline"

	cellDegrees  = 10
	legendStops  = 9
	timelineFill = "#4682b4"
)

var heatColors = []string{"#0000ff", "#00ffff", "#00ff00", "#ffff00", "#ff0000"}

// Report is a view surface that keeps the last drawn state of every view and
// renders it as one HTML page. Project is equirectangular: x is longitude and
// y is latitude, so marker positions are chart coordinates.
type Report struct {
	mu sync.Mutex

	title   string
	colorBy quake.Attribute

	markers  []view.Marker
	heat     []view.HeatPoint
	hist     distribution.Histogram
	bins     []timeline.Bin
	scale    timeline.Scale
	cursor   *time.Time
	zoom     int
	subtitle string
}

var (
	_ view.MapSurface      = (*Report)(nil)
	_ view.ChartSurface    = (*Report)(nil)
	_ view.TimelineSurface = (*Report)(nil)
)

func New(title string, colorBy quake.Attribute, zoom int) *Report {
	return &Report{title: title, colorBy: colorBy, zoom: zoom}
}

func (r *Report) Project(lat, lon float64) (float64, float64) { return lon, lat }

func (r *Report) Zoom() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zoom
}

func (r *Report) ClearOverlays() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers, r.heat = nil, nil
}

func (r *Report) DrawMarkers(m []view.Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers = m
}

func (r *Report) DrawHeat(h []view.HeatPoint, _ view.HeatOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heat = h
}

func (r *Report) DrawDistribution(h distribution.Histogram) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hist = h
}

func (r *Report) DrawTimeline(bins []timeline.Bin, s timeline.Scale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bins, r.scale = bins, s
}

func (r *Report) MoveCursor(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = &t
}

func (r *Report) ClearCursor() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = nil
}

func (r *Report) ClearBrush() {}

// SetSubtitle annotates the map chart, e.g. with the loaded record count.
func (r *Report) SetSubtitle(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subtitle = s
}

// Render writes the page with the map, density, timeline and distribution charts.
func (r *Report) Render(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	page := components.NewPage()
	page.PageTitle = r.title
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(r.mapChart(), r.densityChart(), r.timelineChart(), r.distributionChart())

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

func (r *Report) init() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: r.title,
		Width:     "900px",
		Height:    "500px",
	})
}

// htmlTooltip escapes each line of s; tooltip names are rendered as HTML.
func htmlTooltip(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = html.EscapeString(l)
	}
	return strings.Join(lines, "<br/>")
}

func (r *Report) mapChart() *charts.Scatter {
	records := make(quake.Dataset, len(r.markers))
	for i, m := range r.markers {
		records[i] = m.Record
	}
	ranges := encoding.RangesOf(records)

	data := make([]opts.ScatterData, 0, len(r.markers))
	for _, m := range r.markers {
		if !finite(m.X) || !finite(m.Y) {
			continue
		}
		v := m.Record.Value(r.colorBy)
		if math.IsNaN(v) {
			v = 0
		}
		data = append(data, opts.ScatterData{
			Name:       htmlTooltip(m.Tooltip),
			Value:      []interface{}{m.X, m.Y, v},
			SymbolSize: int(math.Round(m.Radius * 2)),
		})
	}

	c := charts.NewScatter()
	c.SetGlobalOptions(
		r.init(),
		charts.WithTitleOpts(opts.Title{Title: MapTitle, Subtitle: r.subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: "{b}"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude", Type: "value", Min: -180, Max: 180}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude", Type: "value", Min: -90, Max: 90}),
	)

	var series []charts.SeriesOpts
	if stops := encoding.Legend(r.colorBy, ranges, legendStops); len(stops) > 0 {
		colors := make([]string, len(stops))
		for i, s := range stops {
			colors[i] = s.Color
		}
		c.SetGlobalOptions(charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Dimension:  "2",
			Min:        float32(stops[0].Value),
			Max:        float32(stops[len(stops)-1].Value),
			Text:       []string{r.colorBy.Label()},
			InRange:    &opts.VisualMapInRange{Color: colors},
		}))
	} else {
		series = append(series, charts.WithItemStyleOpts(opts.ItemStyle{Color: scale.Neutral}))
	}
	c.AddSeries("Earthquakes", data, series...)
	return c
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// densityChart aggregates heat weights on a fixed degree grid.
func (r *Report) densityChart() *charts.HeatMap {
	cols, rows := 360/cellDegrees, 180/cellDegrees
	grid := make(map[[2]int]float64)
	peak := 0.0
	for _, p := range r.heat {
		if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
			continue
		}
		x := min(cols-1, max(0, int(math.Floor((p.Lon+180)/cellDegrees))))
		y := min(rows-1, max(0, int(math.Floor((p.Lat+90)/cellDegrees))))
		k := [2]int{x, y}
		grid[k] += p.Weight
		peak = math.Max(peak, grid[k])
	}

	data := make([]opts.HeatMapData, 0, len(grid))
	for k, v := range grid {
		data = append(data, opts.HeatMapData{
			Name:  fmt.Sprintf("%d°, %d°", k[1]*cellDegrees-90, k[0]*cellDegrees-180),
			Value: [3]interface{}{k[0], k[1], math.Round(v*100) / 100},
		})
	}

	xs := make([]string, cols)
	for i := range xs {
		xs[i] = fmt.Sprint(i*cellDegrees - 180)
	}
	ys := make([]string, rows)
	for i := range ys {
		ys[i] = fmt.Sprint(i*cellDegrees - 90)
	}

	c := charts.NewHeatMap()
	c.SetGlobalOptions(
		r.init(),
		charts.WithTitleOpts(opts.Title{Title: DensityTitle, Subtitle: "Magnitude-weighted"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude", Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude", Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(math.Max(peak, 1)),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	c.AddSeries("Density", data)
	return c
}

func (r *Report) timelineChart() *charts.Bar {
	labels := make([]string, len(r.bins))
	data := make([]opts.BarData, len(r.bins))
	for i, b := range r.bins {
		labels[i] = b.Start.Format("2006-01-02")
		data[i] = opts.BarData{Name: htmlTooltip(b.Tooltip()), Value: b.Count()}
	}

	sub := ""
	if !r.scale.Range.Empty() {
		sub = r.scale.Range.Min.Format("2006-01-02") + " to " + r.scale.Range.Max.Format("2006-01-02")
	}
	if r.cursor != nil {
		sub += "  cursor " + r.cursor.Format("2006-01-02")
	}

	c := charts.NewBar()
	c.SetGlobalOptions(
		r.init(),
		charts.WithTitleOpts(opts.Title{Title: TimelineTitle, Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: "{b}"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	c.SetXAxis(labels).AddSeries("Count", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: timelineFill}))
	return c
}

func (r *Report) distributionChart() *charts.Bar {
	h := r.hist
	labels := make([]string, len(h.Bins))
	data := make([]opts.BarData, len(h.Bins))
	for i, b := range h.Bins {
		labels[i] = fmt.Sprintf("%g-%g", b.Lo, b.Hi)
		data[i] = opts.BarData{Name: htmlTooltip(h.Tooltip(i)), Value: b.Count}
	}

	c := charts.NewBar()
	c.SetGlobalOptions(
		r.init(),
		charts.WithTitleOpts(opts.Title{Title: h.Title, Subtitle: h.Note}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: "{b}"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency"}),
	)
	fill := h.Fill
	if fill == "" {
		fill = scale.Neutral
	}
	c.SetXAxis(labels).AddSeries("Frequency", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: fill}))
	return c
}
