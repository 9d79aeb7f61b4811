package render

import (
	"fmt"
	"iter"

	"github.com/tuannm99/kqlmagic/internal/resultset"
)

func requireUniqueColumns(rs *resultset.ResultSet) error {
	if name, dup := rs.DuplicateColumn(); dup {
		return fmt.Errorf("%w: %q", ErrAmbiguousColumn, name)
	}
	return nil
}

// Dict pivots rs into column name -> values in row order.
// Duplicate column names are rejected because they would collide as keys.
func Dict(rs *resultset.ResultSet) (map[string][]any, error) {
	if err := requireUniqueColumns(rs); err != nil {
		return nil, err
	}

	cols := rs.Columns()
	out := make(map[string][]any, len(cols))
	for _, c := range cols {
		out[c] = make([]any, 0, rs.Len())
	}
	for _, row := range rs.All() {
		for i, v := range row {
			out[cols[i]] = append(out[cols[i]], v)
		}
	}
	return out, nil
}

// RowDicts yields one column name -> value map per row. The sequence is lazy
// and can be ranged over any number of times.
func RowDicts(rs *resultset.ResultSet) (iter.Seq[map[string]any], error) {
	if err := requireUniqueColumns(rs); err != nil {
		return nil, err
	}

	cols := rs.Columns()
	return func(yield func(map[string]any) bool) {
		for _, row := range rs.All() {
			m := make(map[string]any, len(cols))
			for i, v := range row {
				m[cols[i]] = v
			}
			if !yield(m) {
				return
			}
		}
	}, nil
}
