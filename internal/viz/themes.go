package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/quakeview/internal/view"
)

// Theme is the terminal palette paired with a base layer.
type Theme struct {
	Layer     string
	Graticule string
	Border    lipgloss.Color
	Title     lipgloss.Color
}

var Themes = []Theme{
	{Layer: "Esri Imagery", Graticule: "#3a3a5a", Border: "#444466", Title: "#00ccff"},
	{Layer: "OpenTopoMap", Graticule: "#4a5a3a", Border: "#4a6a44", Title: "#88dd66"},
	{Layer: "Stamen Terrain", Graticule: "#5a4a3a", Border: "#6a5544", Title: "#ffaa55"},
}

// ThemeFor returns the palette of the named layer, or the first theme.
func ThemeFor(layer view.BaseLayer) Theme {
	for _, t := range Themes {
		if t.Layer == layer.Name {
			return t
		}
	}
	return Themes[0]
}

func (t Theme) Panel() lipgloss.Style {
	return PanelStyle.BorderForeground(t.Border)
}

func (t Theme) Heading() lipgloss.Style {
	return TitleStyle.Foreground(t.Title)
}
