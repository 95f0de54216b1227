// Package quake provides the domain types shared by every view of the
// earthquake dashboard.
//
// The package defines:
//
//   - [Record]: one seismic event, immutable after load
//   - [Dataset]: an ordered sequence of records, never mutated in place
//   - [Attribute]: the record fields that drive color encoding
//   - [ValueRange]: the per-attribute domain of a dataset
//
// # Example
//
//	ds, _, _ := loader.Load(ctx, sel)
//	ranges := encoding.RangesOf(ds)
//	week := timeline.FilterByRange(ds, start, start.AddDate(0, 0, 7))
//
// # Ownership
//
// A Dataset handed to the view coordinator belongs to it. Filtering and
// sorting always allocate a new slice, so callers may keep reading the
// dataset they passed in.
package quake
