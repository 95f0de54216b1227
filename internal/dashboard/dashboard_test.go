package dashboard_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quakeview/internal/dashboard"
	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/loader"
	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/timeline"
	"github.com/san-kum/quakeview/internal/view/viewtest"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeSource struct {
	data  map[string]quake.Dataset
	calls int
}

func (f *fakeSource) Load(_ context.Context, sel loader.Selector) (quake.Dataset, loader.Report, error) {
	f.calls++
	ds, ok := f.data[sel.String()]
	if !ok {
		return nil, loader.Report{}, &quake.FetchError{Selector: sel.String(), Kind: quake.ErrFetch, Err: errors.New("404 Not Found")}
	}
	return ds, loader.Report{Loaded: len(ds)}, nil
}

type events struct {
	log []string
}

func (e *events) Loading(sel loader.Selector) { e.log = append(e.log, "loading "+sel.String()) }
func (e *events) Loaded(sel loader.Selector, n int, _ loader.Report) {
	e.log = append(e.log, dashboard.RecordCountText(sel, n))
}
func (e *events) Failed(sel loader.Selector, err error) {
	e.log = append(e.log, fmt.Sprintf("failed %s", sel))
}

func places(ds quake.Dataset) []string {
	out := make([]string, len(ds))
	for i, r := range ds {
		out[i] = r.Place
	}
	return out
}

var _ = Describe("Dashboard", func() {
	var (
		src    *fakeSource
		rec    *viewtest.Recorder
		ev     *events
		dash   *dashboard.Dashboard
		ctx    context.Context
		year24 quake.Dataset
	)

	BeforeEach(func() {
		ctx = context.Background()
		year24 = quake.Dataset{
			{Latitude: 35, Longitude: 139, Magnitude: 5.0, Depth: 10, Time: day(2024, 1, 1), Year: 2024, Place: "one"},
			{Latitude: -33, Longitude: -70, Magnitude: 6.0, Depth: 20, Time: day(2024, 1, 8), Year: 2024, Place: "two"},
			{Latitude: 10, Longitude: 20, Magnitude: 4.5, Depth: 5, Time: day(2024, 2, 20), Year: 2024, Place: "three"},
		}
		src = &fakeSource{data: map[string]quake.Dataset{
			"2024": year24,
			"2023": {{Magnitude: 7, Time: day(2023, 6, 1), Year: 2023, Place: "old"}},
			"2022": {},
		}}
		rec = viewtest.New(2)
		ev = &events{}
		dash = dashboard.New(src, rec, rec, rec, ev, dashboard.Options{TimelineWidth: 100, Step: time.Millisecond}, nil)
	})

	Describe("year change", func() {
		It("draws the timeline from the full year and activates it", func() {
			Expect(dash.OnYearChange(ctx, "2024")).To(Succeed())

			Expect(rec.Count("timeline")).To(Equal(1))
			Expect(rec.Places()).To(Equal([]string{"one", "two", "three"}))
			Expect(dash.Bins()).NotTo(BeEmpty())
			Expect(ev.log).To(Equal([]string{"loading 2024", "Number of earthquake records for 2024: 3"}))
		})

		It("rejects an invalid selector without loading", func() {
			err := dash.OnYearChange(ctx, "24")
			Expect(err).To(MatchError(quake.ErrInvalidSelector))
			Expect(src.calls).To(BeZero())
		})

		It("leaves the previous views untouched when a load fails", func() {
			Expect(dash.OnYearChange(ctx, "2024")).To(Succeed())
			rec.Reset()

			err := dash.OnYearChange(ctx, "2019")

			Expect(err).To(MatchError(quake.ErrFetch))
			Expect(rec.Calls).To(BeEmpty())
			Expect(rec.Places()).To(Equal([]string{"one", "two", "three"}))
			Expect(dash.Selector()).To(Equal(loader.Year(2024)))
			Expect(ev.log).To(ContainElement("failed 2019"))
		})

		It("ignores a stale ticket", func() {
			first := dash.BeginYearChange(loader.Year(2023))
			second := dash.BeginYearChange(loader.Year(2024))

			Expect(dash.CompleteYearChange(dash.Fetch(ctx, second, loader.Year(2024)))).To(BeTrue())
			Expect(dash.CompleteYearChange(dash.Fetch(ctx, first, loader.Year(2023)))).To(BeFalse())

			Expect(rec.Places()).To(Equal([]string{"one", "two", "three"}))
		})

		It("renders an empty year as empty visuals", func() {
			Expect(dash.OnYearChange(ctx, "2022")).To(Succeed())

			Expect(rec.Markers).To(BeEmpty())
			Expect(rec.Heat).To(BeEmpty())
			Expect(rec.Histogram.Empty()).To(BeTrue())
			Expect(rec.Bins).To(BeEmpty())
		})

		It("stops a running animation", func() {
			Expect(dash.OnYearChange(ctx, "2024")).To(Succeed())
			_, ok := dash.OnAnimateStart()
			Expect(ok).To(BeTrue())

			Expect(dash.OnYearChange(ctx, "2023")).To(Succeed())

			Expect(dash.Driver().Running()).To(BeFalse())
		})
	})

	Describe("brush", func() {
		BeforeEach(func() {
			Expect(dash.OnYearChange(ctx, "2024")).To(Succeed())
			rec.Reset()
		})

		It("filters inclusively and leaves the timeline alone", func() {
			dash.OnBrushChange(&timeline.Selection{Start: day(2024, 1, 1), End: day(2024, 1, 8)})

			Expect(rec.Places()).To(Equal([]string{"one", "two"}))
			Expect(rec.Count("timeline")).To(BeZero())
			Expect(dash.YearData()).To(HaveLen(3))
		})

		It("restores the full year on a nil brush", func() {
			dash.OnBrushChange(&timeline.Selection{Start: day(2024, 2, 1), End: day(2024, 3, 1)})
			Expect(rec.Places()).To(Equal([]string{"three"}))

			dash.OnBrushChange(nil)

			Expect(rec.Places()).To(Equal([]string{"one", "two", "three"}))
			Expect(dash.Brush()).To(BeNil())
		})

		It("renders an empty selection without error", func() {
			dash.OnBrushChange(&timeline.Selection{Start: day(2024, 5, 1), End: day(2024, 6, 1)})

			Expect(rec.Markers).To(BeEmpty())
			Expect(rec.Histogram.Empty()).To(BeTrue())
		})

		It("maps pixel brushes through the timeline scale", func() {
			dash.OnBrushPixels(0, 100)
			Expect(rec.Places()).To(HaveLen(3))
			Expect(dash.Brush()).NotTo(BeNil())
		})

		It("stops the animation", func() {
			dash.OnAnimateStart()
			dash.OnBrushChange(nil)
			Expect(dash.Driver().Running()).To(BeFalse())
		})

		It("clears brush, cursor and animation on clear selection", func() {
			h, _ := dash.OnAnimateStart()
			dash.OnAnimationTick(h)
			Expect(rec.Cursor).NotTo(BeNil())

			dash.OnClearSelection()

			Expect(rec.Cursor).To(BeNil())
			Expect(rec.Count("clear-brush")).To(Equal(1))
			Expect(dash.Driver().Running()).To(BeFalse())
			Expect(rec.Places()).To(HaveLen(3))
		})
	})

	Describe("animation", func() {
		BeforeEach(func() {
			Expect(dash.OnYearChange(ctx, "2024")).To(Succeed())
		})

		It("renders records up to the cursor and moves the timeline cursor", func() {
			h, ok := dash.OnAnimateStart()
			Expect(ok).To(BeTrue())

			Expect(dash.OnAnimationTick(h)).To(BeTrue())

			Expect(rec.Places()).To(Equal([]string{"one"}))
			Expect(*rec.Cursor).To(Equal(day(2024, 1, 2)))
		})

		It("plays over the full year even when a brush is active", func() {
			dash.OnBrushChange(&timeline.Selection{Start: day(2024, 2, 1), End: day(2024, 3, 1)})
			h, _ := dash.OnAnimateStart()

			for dash.OnAnimationTick(h) {
			}

			Expect(rec.Places()).To(ConsistOf("one", "two", "three"))
			Expect(dash.Driver().Running()).To(BeFalse())
		})

		It("ignores ticks after stop", func() {
			h, _ := dash.OnAnimateStart()
			dash.OnAnimateStop()
			rec.Reset()

			Expect(dash.OnAnimationTick(h)).To(BeFalse())
			Expect(rec.Calls).To(BeEmpty())
		})

		It("is a no-op on an empty year", func() {
			Expect(dash.OnYearChange(ctx, "2022")).To(Succeed())
			rec.Reset()

			_, ok := dash.OnAnimateStart()

			Expect(ok).To(BeFalse())
			Expect(rec.Calls).To(BeEmpty())
		})

		It("validates speed changes", func() {
			Expect(dash.OnSpeedChange(0)).NotTo(Succeed())
			Expect(dash.OnSpeedChange(50)).To(Succeed())
			Expect(dash.Step()).To(Equal(50 * time.Millisecond))
		})
	})

	Describe("encoding controls", func() {
		BeforeEach(func() {
			Expect(dash.OnYearChange(ctx, "2024")).To(Succeed())
			rec.Reset()
		})

		It("switches color attribute with a marker-only redraw", func() {
			Expect(dash.OnColorAttributeChange("depth")).To(Succeed())
			Expect(rec.Calls).To(Equal([]string{"markers"}))
			Expect(dash.OnColorAttributeChange("energy")).To(MatchError(quake.ErrUnknownAttribute))
		})

		It("switches distribution kind with a chart-only redraw", func() {
			Expect(dash.OnDistributionChange("duration")).To(Succeed())
			Expect(rec.Calls).To(Equal([]string{"distribution"}))
			Expect(rec.Histogram.Kind).To(Equal(distribution.KindDuration))
			Expect(dash.OnDistributionChange("area")).To(MatchError(quake.ErrUnknownDistribution))
		})

		It("recomputes radii on size toggle and zoom end", func() {
			dash.OnSizeToggle(true)
			Expect(rec.Markers[0].Radius).To(Equal(10.0))

			rec.SetZoom(5)
			dash.OnZoomEnd()
			Expect(rec.Markers[0].Radius).To(Equal(13.0))
		})
	})
})
