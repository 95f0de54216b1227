package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/quakeview/internal/encoding"
	"github.com/san-kum/quakeview/internal/quake"
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff"))

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	TimelineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4682b4"))
	BrushStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8888aa"))
	CursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true)
)

// Legend renders a color strip for attr with its range endpoints.
func Legend(attr quake.Attribute, ranges encoding.Ranges, width int) string {
	stops := encoding.Legend(attr, ranges, width)
	if len(stops) == 0 {
		return MetricLabel.Render(attr.Label()+" ") + Subtle.Render("no range")
	}
	var b strings.Builder
	b.WriteString(MetricLabel.Render(attr.Label() + " "))
	b.WriteString(fmt.Sprintf("%g ", stops[0].Value))
	for _, s := range stops {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render("█"))
	}
	b.WriteString(fmt.Sprintf(" %g", stops[len(stops)-1].Value))
	return b.String()
}

// Separator draws a horizontal rule.
func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(0, mid-3))
	right := strings.Repeat("─", max(0, width-mid-3))
	return Subtle.Render(left + " ◆ " + right)
}

// Field renders one label/value row of the side panel.
func Field(label, value string) string {
	return MetricLabel.Width(12).Render(label) + MetricValue.Render(value)
}
