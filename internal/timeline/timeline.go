package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/san-kum/quakeview/internal/quake"
)

// TimeRange is the [Min, Max] extent of a dataset's timestamps. Count is the
// number of records it was computed from; ranges built by hand leave it zero.
type TimeRange struct {
	Min   time.Time
	Max   time.Time
	Count int
}

// Empty reports whether r is inverted or is the zero range of an empty
// dataset. A record at the zero time still counts.
func (r TimeRange) Empty() bool {
	if r.Max.Before(r.Min) {
		return true
	}
	return r.Count == 0 && r.Min.IsZero() && r.Max.IsZero()
}

func (r TimeRange) Span() time.Duration { return r.Max.Sub(r.Min) }

// ComputeRange returns the zero TimeRange for an empty dataset.
func ComputeRange(ds quake.Dataset) TimeRange {
	var r TimeRange
	for i, rec := range ds {
		if i == 0 || rec.Time.Before(r.Min) {
			r.Min = rec.Time
		}
		if i == 0 || rec.Time.After(r.Max) {
			r.Max = rec.Time
		}
	}
	r.Count = len(ds)
	return r
}

// Bin is a half-open bucket [Start, End); the last bin of a sequence also includes End.
type Bin struct {
	Start   time.Time
	End     time.Time
	Members quake.Dataset
}

func (b Bin) Count() int { return len(b.Members) }

func (b Bin) Tooltip() string {
	return fmt.Sprintf("Date: %s\nCount: %d", b.Start.Format("2006-01-02"), b.Count())
}

// BinData buckets ds by iv. Empty buckets are kept and members keep source order.
func BinData(ds quake.Dataset, iv Interval) []Bin {
	r := ComputeRange(ds)
	if r.Empty() {
		return nil
	}

	thresholds := Boundaries(r, iv)
	bins := make([]Bin, len(thresholds)+1)
	start := r.Min
	for i, t := range thresholds {
		bins[i] = Bin{Start: start, End: t}
		start = t
	}
	bins[len(thresholds)] = Bin{Start: start, End: r.Max}

	for _, rec := range ds {
		idx := sort.Search(len(thresholds), func(i int) bool { return thresholds[i].After(rec.Time) })
		bins[idx].Members = append(bins[idx].Members, rec)
	}
	return bins
}

// Counts returns the member count of each bin.
func Counts(bins []Bin) []int {
	out := make([]int, len(bins))
	for i, b := range bins {
		out[i] = b.Count()
	}
	return out
}

// MaxCount is the largest bin size.
func MaxCount(bins []Bin) int {
	max := 0
	for _, b := range bins {
		if b.Count() > max {
			max = b.Count()
		}
	}
	return max
}

// FilterByRange keeps records with start <= time <= end.
func FilterByRange(ds quake.Dataset, start, end time.Time) quake.Dataset {
	return ds.Filter(func(r quake.Record) bool {
		return !r.Time.Before(start) && !r.Time.After(end)
	})
}

// Until returns the prefix of a time-sorted dataset with time <= cursor.
// The result shares storage with sorted but cannot be appended into it.
func Until(sorted quake.Dataset, cursor time.Time) quake.Dataset {
	n := sort.Search(len(sorted), func(i int) bool { return sorted[i].Time.After(cursor) })
	return sorted[:n:n]
}
