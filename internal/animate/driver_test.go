package animate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/san-kum/quakeview/internal/quake"
)

type frame struct {
	places []string
	cursor time.Time
}

type recordingRenderer struct {
	mu     sync.Mutex
	frames []frame
}

func (r *recordingRenderer) RenderFrame(ds quake.Dataset, cursor time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	places := make([]string, len(ds))
	for i, rec := range ds {
		places[i] = rec.Place
	}
	r.frames = append(r.frames, frame{places: places, cursor: cursor})
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sample() quake.Dataset {
	return quake.Dataset{
		{Magnitude: 6.0, Depth: 20, Time: day(2024, 1, 8), Place: "two"},
		{Magnitude: 5.0, Depth: 10, Time: day(2024, 1, 1), Place: "one"},
	}
}

func TestDriver_FirstTick(t *testing.T) {
	r := &recordingRenderer{}
	d := NewDriver(r, nil)

	h, ok := d.Start(sample(), time.Millisecond)
	if !ok {
		t.Fatal("expected Start to succeed")
	}
	if st := d.State(); !st.Running || !st.Cursor.Equal(day(2024, 1, 1)) || !st.End.Equal(day(2024, 1, 8)) {
		t.Fatalf("unexpected state after start: %+v", st)
	}

	if !d.Tick(h) {
		t.Fatal("expected first tick to render")
	}
	if len(r.frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(r.frames))
	}
	f := r.frames[0]
	if len(f.places) != 1 || f.places[0] != "one" {
		t.Errorf("expected [one], got %v", f.places)
	}
	if !f.cursor.Equal(day(2024, 1, 2)) {
		t.Errorf("expected cursor 2024-01-02, got %v", f.cursor)
	}
}

func TestDriver_StartEmptyIsNoop(t *testing.T) {
	r := &recordingRenderer{}
	d := NewDriver(r, nil)

	if _, ok := d.Start(quake.Dataset{}, time.Millisecond); ok {
		t.Error("expected Start on empty dataset to fail")
	}
	if d.Running() {
		t.Error("expected driver to stay idle")
	}
	if r.count() != 0 {
		t.Error("renderer should not be invoked")
	}
}

func TestDriver_StartWhileRunningIsNoop(t *testing.T) {
	d := NewDriver(&recordingRenderer{}, nil)
	h1, _ := d.Start(sample(), time.Millisecond)

	h2, ok := d.Start(sample(), time.Millisecond)
	if ok || h2 != h1 {
		t.Errorf("expected second Start to be ignored, got %v %v", h2, ok)
	}
}

func TestDriver_RunsToCompletion(t *testing.T) {
	r := &recordingRenderer{}
	d := NewDriver(r, nil)
	h, _ := d.Start(sample(), time.Millisecond)

	ticks := 0
	for d.Tick(h) {
		ticks++
	}

	if ticks != 7 {
		t.Errorf("expected 7 rendered days, got %d", ticks)
	}
	last := r.frames[len(r.frames)-1]
	if len(last.places) != 2 {
		t.Errorf("expected final frame to include every record, got %v", last.places)
	}
	if d.Running() {
		t.Error("expected driver to be idle after passing end")
	}
}

func TestDriver_StopSuppressesTicks(t *testing.T) {
	r := &recordingRenderer{}
	d := NewDriver(r, nil)
	h, _ := d.Start(sample(), time.Millisecond)

	d.Stop()
	d.Stop()

	if d.Tick(h) {
		t.Error("expected tick after stop to be ignored")
	}
	if r.count() != 0 {
		t.Errorf("expected no frames, got %d", r.count())
	}
}

func TestDriver_StaleHandle(t *testing.T) {
	r := &recordingRenderer{}
	d := NewDriver(r, nil)

	old, _ := d.Start(sample(), time.Millisecond)
	d.Stop()
	fresh, _ := d.Start(sample(), time.Millisecond)

	if d.Tick(old) {
		t.Error("expected stale handle to be ignored")
	}
	if !d.State().Cursor.Equal(day(2024, 1, 1)) {
		t.Error("stale tick moved the cursor")
	}
	if !d.Tick(fresh) {
		t.Error("expected fresh handle to tick")
	}
}

func TestDriver_DoesNotMutateInput(t *testing.T) {
	ds := sample()
	d := NewDriver(&recordingRenderer{}, nil)
	d.Start(ds, time.Millisecond)

	if ds[0].Place != "two" {
		t.Error("Start sorted the caller's dataset")
	}
}

func TestDriver_Run(t *testing.T) {
	r := &recordingRenderer{}
	d := NewDriver(r, nil)
	h, _ := d.Start(sample(), time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.Run(ctx, h); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.count() != 7 {
		t.Errorf("expected 7 frames, got %d", r.count())
	}
}

func TestDriver_RunCancelled(t *testing.T) {
	d := NewDriver(&recordingRenderer{}, nil)
	h, _ := d.Start(sample(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Run(ctx, h); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDriver_ConcurrentStop(t *testing.T) {
	r := &recordingRenderer{}
	d := NewDriver(r, nil)
	h, _ := d.Start(sample(), time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(context.Background(), h)
	}()
	d.Stop()
	<-done

	n := r.count()
	if d.Tick(h) || r.count() != n {
		t.Error("expected no frames after Stop returned")
	}
}
