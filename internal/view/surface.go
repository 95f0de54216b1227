package view

import (
	"time"

	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/timeline"
)

// Marker is one projected, styled earthquake.
type Marker struct {
	X, Y        float64
	Radius      float64
	HoverRadius float64
	Color       string
	Tooltip     string
	Record      quake.Record
}

// HeatPoint is a (lat, lon, weight) triple for the heat overlay.
type HeatPoint struct {
	Lat    float64
	Lon    float64
	Weight float64
}

type HeatOptions struct {
	Radius  float64
	Blur    float64
	MaxZoom int
}

var DefaultHeatOptions = HeatOptions{Radius: 25, Blur: 15, MaxZoom: 10}

// MapSurface is the map rendering collaborator.
type MapSurface interface {
	Project(lat, lon float64) (x, y float64)
	Zoom() int
	// ClearOverlays removes the marker layer and heat overlay.
	ClearOverlays()
	DrawMarkers(markers []Marker)
	DrawHeat(points []HeatPoint, opts HeatOptions)
}

type ChartSurface interface {
	DrawDistribution(h distribution.Histogram)
}

type TimelineSurface interface {
	DrawTimeline(bins []timeline.Bin, scale timeline.Scale)
	MoveCursor(t time.Time)
	ClearCursor()
	ClearBrush()
}

// BaseLayer is a tile layer offered by the layer switch.
type BaseLayer struct {
	Name        string
	URL         string
	Attribution string
}

var BaseLayers = []BaseLayer{
	{
		Name:        "Esri Imagery",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles © Esri - Source: Esri, i-cubed, USDA, USGS, AEX, GeoEye, Getmapping, Aerogrid, IGN, IGP, UPR-EGP, and the GIS User Community",
	},
	{
		Name:        "OpenTopoMap",
		URL:         "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "Map data: © OpenStreetMap contributors, SRTM | Map style: © OpenTopoMap (CC-BY-SA)",
	},
	{
		Name:        "Stamen Terrain",
		URL:         "https://stamen-tiles-{s}.a.ssl.fastly.net/terrain/{z}/{x}/{y}{r}.png",
		Attribution: "Map tiles by Stamen Design, CC BY 3.0 - Map data © OpenStreetMap contributors",
	},
}

// LayerByName returns the index of the named base layer, or 0.
func LayerByName(name string) int {
	for i, l := range BaseLayers {
		if l.Name == name {
			return i
		}
	}
	return 0
}
