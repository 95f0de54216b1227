// Package geo implements the Web Mercator projection used to place markers
// on the map surfaces.
package geo

import "math"

const (
	MaxLatitude = 85.0511287798
	MinZoom     = 0
	MaxZoom     = 18

	DefaultTileSize = 256.0
)

type LatLng struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// DefaultCenter and DefaultZoom frame the whole globe.
var DefaultCenter = LatLng{Lat: 30, Lng: 0}

const DefaultZoom = 2

// Viewport is a window of Width x Height pixels onto the Mercator plane.
type Viewport struct {
	Center   LatLng
	Zoom     int
	Width    float64
	Height   float64
	TileSize float64
}

func NewViewport(center LatLng, zoom int, width, height float64) Viewport {
	return Viewport{Center: center, Zoom: clampZoom(zoom), Width: width, Height: height, TileSize: DefaultTileSize}
}

func clampZoom(z int) int {
	return max(MinZoom, min(MaxZoom, z))
}

func (v Viewport) worldSize() float64 {
	ts := v.TileSize
	if ts <= 0 {
		ts = DefaultTileSize
	}
	return ts * math.Exp2(float64(v.Zoom))
}

// World projects ll onto the global pixel plane at the viewport's zoom.
func (v Viewport) World(ll LatLng) (x, y float64) {
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, ll.Lat))
	phi := lat * math.Pi / 180
	size := v.worldSize()
	x = (ll.Lng + 180) / 360 * size
	y = (1 - math.Log(math.Tan(phi)+1/math.Cos(phi))/math.Pi) / 2 * size
	return x, y
}

// Project returns the viewport-local pixel position of (lat, lon).
func (v Viewport) Project(lat, lon float64) (x, y float64) {
	wx, wy := v.World(LatLng{Lat: lat, Lng: lon})
	cx, cy := v.World(v.Center)
	return wx - cx + v.Width/2, wy - cy + v.Height/2
}

// Unproject inverts Project.
func (v Viewport) Unproject(x, y float64) LatLng {
	cx, cy := v.World(v.Center)
	size := v.worldSize()
	wx := x - v.Width/2 + cx
	wy := y - v.Height/2 + cy
	lng := wx/size*360 - 180
	n := math.Pi * (1 - 2*wy/size)
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi
	return LatLng{Lat: lat, Lng: lng}
}

// Visible reports whether a local pixel position falls inside the viewport.
func (v Viewport) Visible(x, y float64) bool {
	return x >= 0 && y >= 0 && x < v.Width && y < v.Height
}

func (v Viewport) WithZoom(z int) Viewport {
	v.Zoom = clampZoom(z)
	return v
}

// Pan moves the center by a pixel offset.
func (v Viewport) Pan(dx, dy float64) Viewport {
	c := v.Unproject(v.Width/2+dx, v.Height/2+dy)
	c.Lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, c.Lat))
	c.Lng = math.Mod(c.Lng+540, 360) - 180
	v.Center = c
	return v
}

func (v Viewport) Resize(width, height float64) Viewport {
	v.Width, v.Height = width, height
	return v
}
