package manifest

import (
	"math"

	"github.com/hupe1980/colgo/column"
)

// ColumnStats holds per-column value bounds for query pruning. Stats are
// immutable, computed once when the column file is written, and small
// enough to live in the manifest.
type ColumnStats struct {
	Numeric *NumericStats `json:"numeric,omitempty"`
	String  *StringStats  `json:"string,omitempty"`
}

// NumericStats stores min/max bounds over the finite non-null values of a
// numeric column. Timestamps count as numeric via their epoch micros.
// NaNs are flagged but excluded from the bounds, so the bounds stay
// JSON-encodable and range pruning stays correct (no range matches NaN).
type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	HasNaN bool    `json:"has_nan,omitempty"`
}

// StringStats stores min/max bounds over the non-null values of a string
// column.
type StringStats struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// CollectStats scans a column and returns its statistics. It returns nil
// for kinds without a useful ordering (bool) and for columns with no
// non-null values to bound.
func CollectStats(col *column.Chunked) *ColumnStats {
	if col == nil || col.Len() == 0 {
		return nil
	}

	switch {
	case col.Kind().Numeric():
		return collectNumeric(col)
	case col.Kind() == column.KindString:
		return collectString(col)
	default:
		return nil
	}
}

func collectNumeric(col *column.Chunked) *ColumnStats {
	stats := NumericStats{}
	first := true

	for i := int64(0); i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}

		v, ok := numericValue(col.ValueAt(i))
		if !ok {
			continue
		}
		if math.IsNaN(v) {
			stats.HasNaN = true
			continue
		}

		if first {
			stats.Min = v
			stats.Max = v
			first = false
			continue
		}
		stats.Min = min(stats.Min, v)
		stats.Max = max(stats.Max, v)
	}

	if first {
		// Nothing finite to bound.
		return nil
	}
	return &ColumnStats{Numeric: &stats}
}

func collectString(col *column.Chunked) *ColumnStats {
	stats := StringStats{}
	first := true

	for i := int64(0); i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}

		s, ok := col.ValueAt(i).AsString()
		if !ok {
			continue
		}

		if first {
			stats.Min = s
			stats.Max = s
			first = false
			continue
		}
		stats.Min = min(stats.Min, s)
		stats.Max = max(stats.Max, s)
	}

	if first {
		return nil
	}
	return &ColumnStats{String: &stats}
}

func numericValue(v column.Value) (float64, bool) {
	switch v.Kind {
	case column.KindInt64, column.KindInt32, column.KindTimestamp:
		return float64(v.I64), true
	case column.KindFloat64, column.KindFloat32:
		return v.F64, true
	default:
		return 0, false
	}
}

// PruneRange reports whether a range query [lo, hi] (inclusive) can skip
// this column file entirely because no stored value falls in the range.
// It never prunes without numeric bounds.
func (s *ColumnStats) PruneRange(lo, hi float64) bool {
	if s == nil || s.Numeric == nil {
		return false
	}
	return hi < s.Numeric.Min || lo > s.Numeric.Max
}

// PruneEqual reports whether an equality query for v can skip this column
// file.
func (s *ColumnStats) PruneEqual(v float64) bool {
	return s.PruneRange(v, v)
}

// PruneString reports whether an equality query for the string v can skip
// this column file.
func (s *ColumnStats) PruneString(v string) bool {
	if s == nil || s.String == nil {
		return false
	}
	return v < s.String.Min || v > s.String.Max
}
