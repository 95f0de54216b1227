package viz

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quakeview/internal/timeline"
	"github.com/san-kum/quakeview/internal/view"
)

const timelineHeight = 5

// TimelineView plots bin counts with asciigraph and marks the brush and
// animation cursor on a ruler beneath the plot.
type TimelineView struct {
	mu sync.Mutex

	width   int
	caption string
	bins    []timeline.Bin
	scale   timeline.Scale
	cursor  *time.Time
	brush   *[2]int
}

var _ view.TimelineSurface = (*TimelineView)(nil)

func NewTimelineView(width int, caption string) *TimelineView {
	return &TimelineView{width: width, caption: caption}
}

// Width is the number of plot columns; it matches the dashboard scale width.
func (t *TimelineView) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

func (t *TimelineView) SetWidth(w int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width = w
}

func (t *TimelineView) DrawTimeline(bins []timeline.Bin, s timeline.Scale) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bins, t.scale = bins, s
}

func (t *TimelineView) MoveCursor(ts time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor = &ts
}

func (t *TimelineView) ClearCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor = nil
}

func (t *TimelineView) ClearBrush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.brush = nil
}

// SetBrush records the brushed column range for display.
func (t *TimelineView) SetBrush(c0, c1 int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.brush = &[2]int{c0, c1}
}

func (t *TimelineView) Render() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.bins) == 0 {
		return Subtle.Render("no records for the timeline")
	}

	counts := make([]float64, len(t.bins))
	for i, b := range t.bins {
		counts[i] = float64(b.Count())
	}
	if len(counts) == 1 {
		counts = append(counts, counts[0])
	}

	plot := asciigraph.Plot(counts,
		asciigraph.Height(timelineHeight),
		asciigraph.Width(t.width),
		asciigraph.Caption(t.caption))

	first, _, _ := strings.Cut(plot, "\n")
	indent := axisColumn(first) + 1

	var b strings.Builder
	b.WriteString(TimelineStyle.Render(plot))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString(t.ruler())
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", indent))
	r := t.scale.Range
	b.WriteString(Subtle.Render(fmt.Sprintf("%s%s%s",
		r.Min.Format("2006-01-02"),
		strings.Repeat(" ", max(1, t.width-20)),
		r.Max.Format("2006-01-02"))))
	return b.String()
}

func (t *TimelineView) ruler() string {
	cells := make([]string, t.width)
	for i := range cells {
		cells[i] = "─"
	}
	if t.brush != nil {
		for i := max(0, t.brush[0]); i <= min(t.width-1, t.brush[1]); i++ {
			cells[i] = BrushStyle.Render("█")
		}
	}
	if t.cursor != nil {
		col := int(t.scale.Map(*t.cursor))
		if col >= t.width {
			col = t.width - 1
		}
		if col >= 0 {
			cells[col] = CursorStyle.Render("▲")
		}
	}
	return strings.Join(cells, "")
}

// axisColumn finds the rune offset of the y axis in an asciigraph line.
func axisColumn(line string) int {
	col := 0
	for len(line) > 0 {
		r, size := utf8.DecodeRuneInString(line)
		if r == '┤' || r == '┼' {
			return col
		}
		line = line[size:]
		col++
	}
	return 0
}
