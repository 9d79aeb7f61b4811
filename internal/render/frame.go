package render

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/tuannm99/kqlmagic/internal/resultset"
)

// Kind is the inferred element type of a frame column.
type Kind string

const (
	KindInt64    Kind = "int64"
	KindFloat64  Kind = "float64"
	KindBool     Kind = "bool"
	KindString   Kind = "string"
	KindDateTime Kind = "datetime"
	KindObject   Kind = "object"
)

// Series is one named column of a Frame. Values keep the types they were
// received with; Kind only describes them.
type Series struct {
	Name   string
	Kind   Kind
	Values []any
}

// Frame is a column-oriented table with a positional row index.
type Frame struct {
	Index  []int
	Series []Series
}

// DataFrame converts rs column-for-column and row-for-row.
// Unlike Dict, repeated column names are kept as separate series.
func DataFrame(rs *resultset.ResultSet) *Frame {
	cols := rs.Columns()
	f := &Frame{
		Index:  make([]int, rs.Len()),
		Series: make([]Series, len(cols)),
	}
	for i := range f.Index {
		f.Index[i] = i
	}
	for j, c := range cols {
		f.Series[j] = Series{Name: c, Values: make([]any, 0, rs.Len())}
	}
	for _, row := range rs.All() {
		for j, v := range row {
			f.Series[j].Values = append(f.Series[j].Values, v)
		}
	}
	for j := range f.Series {
		f.Series[j].Kind = inferKind(f.Series[j].Values)
	}
	return f
}

// Shape returns (rows, columns).
func (f *Frame) Shape() (int, int) { return len(f.Index), len(f.Series) }

// Columns returns the series names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.Series))
	for i, s := range f.Series {
		out[i] = s.Name
	}
	return out
}

// Column returns the first series with the given name.
func (f *Frame) Column(name string) (*Series, bool) {
	for i := range f.Series {
		if f.Series[i].Name == name {
			return &f.Series[i], true
		}
	}
	return nil, false
}

// Row reassembles row i across all series.
func (f *Frame) Row(i int) ([]any, bool) {
	if i < 0 || i >= len(f.Index) {
		return nil, false
	}
	out := make([]any, len(f.Series))
	for j, s := range f.Series {
		out[j] = s.Values[i]
	}
	return out, true
}

func inferKind(values []any) Kind {
	kinds := make([]Kind, 0, 2)
	for _, v := range values {
		k := kindOf(v)
		if k == "" {
			continue
		}
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}

	switch len(kinds) {
	case 0:
		return KindObject
	case 1:
		return kinds[0]
	case 2:
		if slices.Contains(kinds, KindInt64) && slices.Contains(kinds, KindFloat64) {
			return KindFloat64
		}
	}
	return KindObject
}

// kindOf returns "" for nil so nulls do not widen a column.
func kindOf(v any) Kind {
	switch x := v.(type) {
	case nil:
		return ""
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt64
	case float32, float64:
		return KindFloat64
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return KindInt64
		}
		if _, err := x.Float64(); err == nil {
			return KindFloat64
		}
		return KindObject
	case bool:
		return KindBool
	case string:
		return KindString
	case time.Time:
		return KindDateTime
	default:
		return KindObject
	}
}
