package viz

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/view"
)

// ChartView draws the distribution histogram as horizontal bars.
type ChartView struct {
	mu    sync.Mutex
	width int
	hist  distribution.Histogram
	drawn bool
}

var _ view.ChartSurface = (*ChartView)(nil)

func NewChartView(width int) *ChartView {
	return &ChartView{width: width}
}

func (c *ChartView) DrawDistribution(h distribution.Histogram) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist, c.drawn = h, true
}

func (c *ChartView) Histogram() distribution.Histogram {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hist
}

func (c *ChartView) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(c.hist.Title))
	b.WriteByte('\n')
	if c.hist.Note != "" {
		b.WriteString(Subtle.Render(c.hist.Note))
		return b.String()
	}
	if !c.drawn || c.hist.Empty() {
		b.WriteString(Subtle.Render("no data"))
		return b.String()
	}

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(c.hist.Fill))
	peak := c.hist.MaxCount()
	barWidth := max(1, c.width-22)
	for _, bin := range c.hist.Bins {
		n := 0
		if peak > 0 {
			n = bin.Count * barWidth / peak
		}
		label := fmt.Sprintf("%6.1f-%-6.1f", bin.Lo, bin.Hi)
		b.WriteString(MetricLabel.Render(label))
		b.WriteString(" │")
		b.WriteString(bar.Render(strings.Repeat("█", n)))
		b.WriteString(fmt.Sprintf(" %d\n", bin.Count))
	}
	return strings.TrimRight(b.String(), "\n")
}
