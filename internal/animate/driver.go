// Package animate drives the day-by-day playback cursor.
package animate

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/timeline"
)

const DefaultStep = 200 * time.Millisecond

// Renderer receives one frame per tick: every record at or before cursor.
type Renderer interface {
	RenderFrame(filtered quake.Dataset, cursor time.Time)
}

// Handle identifies one Start call. Ticks carrying an older handle are ignored.
type Handle uint64

type State struct {
	Cursor  time.Time
	End     time.Time
	Step    time.Duration
	Running bool
}

// Driver is safe for concurrent use. Tick and Stop share a lock, so once
// Stop returns no frame is in flight and none will follow.
type Driver struct {
	mu       sync.Mutex
	renderer Renderer
	log      log.FieldLogger

	sorted quake.Dataset
	state  State
	handle Handle
}

func NewDriver(r Renderer, logger log.FieldLogger) *Driver {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Driver{renderer: r, log: logger, state: State{Step: DefaultStep}}
}

// Start begins playback over a sorted copy of ds. It does nothing when ds is
// empty or playback is already running.
func (d *Driver) Start(ds quake.Dataset, step time.Duration) (Handle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(ds) == 0 || d.state.Running {
		return d.handle, false
	}
	if step <= 0 {
		step = DefaultStep
	}

	d.sorted = ds.SortedByTime()
	d.handle++
	d.state = State{
		Cursor:  d.sorted[0].Time,
		End:     d.sorted[len(d.sorted)-1].Time,
		Step:    step,
		Running: true,
	}
	d.log.WithFields(log.Fields{"records": len(ds), "from": d.state.Cursor, "to": d.state.End}).Info("animation started")
	return d.handle, true
}

// Tick advances the cursor by one day and renders the frame. It reports
// whether playback should continue.
func (d *Driver) Tick(h Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.state.Running || h != d.handle {
		return false
	}

	d.state.Cursor = d.state.Cursor.AddDate(0, 0, 1)
	if d.state.Cursor.After(d.state.End) {
		d.finish("animation finished")
		return false
	}

	d.renderer.RenderFrame(timeline.Until(d.sorted, d.state.Cursor), d.state.Cursor)
	return true
}

// Stop halts playback. Calling it while idle is a no-op.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Running {
		d.finish("animation stopped")
	}
}

func (d *Driver) finish(msg string) {
	d.state.Running = false
	d.sorted = nil
	d.log.WithField("cursor", d.state.Cursor).Info(msg)
}

// SetStep changes the tick interval; a running Run loop picks it up on its next tick.
func (d *Driver) SetStep(step time.Duration) {
	if step <= 0 {
		return
	}
	d.mu.Lock()
	d.state.Step = step
	d.mu.Unlock()
}

func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) Running() bool { return d.State().Running }

// Current returns the handle of the most recent Start.
func (d *Driver) Current() Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handle
}

// Run ticks h on a timer until playback ends, is stopped, or ctx is done.
func (d *Driver) Run(ctx context.Context, h Handle) error {
	step := d.State().Step
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !d.Tick(h) {
				return nil
			}
			if s := d.State().Step; s != step {
				step = s
				ticker.Reset(step)
			}
		}
	}
}
