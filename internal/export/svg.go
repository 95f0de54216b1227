// Package export writes dashboard views and datasets to files.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/quakeview/internal/timeline"
	"github.com/san-kum/quakeview/internal/viz"
)

const (
	svgBackground = "#0a0a0a"
	svgInk        = "#8888aa"
)

// braille dot bit per (row, column) within a cell
var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG converts a braille canvas to SVG, one circle per set dot in the
// cell's foreground color. Shaded cells become background rectangles.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, svgBackground))

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			if bg := canvas.BG[row][col]; bg != "" {
				sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.6"/>
`, baseX, baseY, scale*2, scale*4, bg))
			}

			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := canvas.FG[row][col]
			if fill == "" {
				fill = svgInk
			}

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TimelineToSVG draws bin counts as a stepped line.
func TimelineToSVG(bins []timeline.Bin, width, height int, strokeColor string) string {
	if len(bins) == 0 {
		return ""
	}

	peak := 1
	for _, b := range bins {
		peak = max(peak, b.Count())
	}
	step := float64(width) / float64(len(bins))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, svgBackground, strokeColor))

	for i, b := range bins {
		x0 := float64(i) * step
		y := float64(height) - float64(b.Count())/float64(peak)*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x0, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x0, y))
		}
		sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x0+step, y))
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
