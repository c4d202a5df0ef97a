package core

// aggregate.go computes per-file statistical summaries of the valid
// readings, one row per canonical reading type.

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ComputeAggregates summarizes one file's valid readings per reading type:
// count, min, max, arithmetic mean, and sample standard deviation (0.0 for
// a single reading, never NaN). The window bounds are the minimum and
// maximum timestamp across all valid readings in the file, shared by every
// type. Empty input yields an empty result.
//
// Rows come back sorted by reading type so repeated runs over the same file
// produce identical output.
func ComputeAggregates(valid []Reading, fileName, source string) []FileAggregate {
	if len(valid) == 0 {
		return nil
	}

	windowStart := valid[0].Ts
	windowEnd := valid[0].Ts
	groups := make(map[string][]float64)
	for _, r := range valid {
		if r.Ts.Before(windowStart) {
			windowStart = r.Ts
		}
		if r.Ts.After(windowEnd) {
			windowEnd = r.Ts
		}
		groups[r.ReadingType] = append(groups[r.ReadingType], r.ReadingValue)
	}

	types := make([]string, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([]FileAggregate, 0, len(types))
	for _, t := range types {
		values := groups[t]

		// Sample standard deviation is undefined for a single value;
		// report 0.0 instead of NaN so the row stays storable.
		stddev := 0.0
		if len(values) > 1 {
			stddev = stat.StdDev(values, nil)
		}

		out = append(out, FileAggregate{
			FileName:    fileName,
			Source:      source,
			ReadingType: t,
			Count:       int64(len(values)),
			MinValue:    floats.Min(values),
			MaxValue:    floats.Max(values),
			AvgValue:    stat.Mean(values, nil),
			StddevValue: stddev,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
		})
	}
	return out
}
