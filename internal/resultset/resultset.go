package resultset

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"sync"
)

// Row is a single fixed-arity tuple. Position i holds the value of column i.
type Row []any

// ResultSet is the immutable table returned by one query execution.
// Column order and row order are kept exactly as the query service returned them.
//
// All accessors hand out copies, so a ResultSet can be shared between
// goroutines without locking.
type ResultSet struct {
	columns []string
	rows    []Row

	keyOnce sync.Once
	keys    *KeyIndex
	keyErr  error
}

// New validates and freezes columns and rows. Column names may repeat;
// only the keyed and columnar views care about uniqueness.
func New(columns []string, rows []Row) (*ResultSet, error) {
	rs := &ResultSet{
		columns: slices.Clone(columns),
		rows:    make([]Row, 0, len(rows)),
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d",
				ErrSchemaMismatch, i, len(r), len(columns))
		}
		rs.rows = append(rs.rows, slices.Clone(r))
	}
	return rs, nil
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int { return len(rs.rows) }

// Columns returns a copy of the column names.
func (rs *ResultSet) Columns() []string { return slices.Clone(rs.columns) }

// ColumnIndex returns the position of the first column with the given name.
func (rs *ResultSet) ColumnIndex(name string) (int, bool) {
	i := slices.Index(rs.columns, name)
	return i, i >= 0
}

// DuplicateColumn reports the first column name that appears more than once.
func (rs *ResultSet) DuplicateColumn() (string, bool) {
	seen := make(map[string]struct{}, len(rs.columns))
	for _, c := range rs.columns {
		if _, ok := seen[c]; ok {
			return c, true
		}
		seen[c] = struct{}{}
	}
	return "", false
}

// RowAt returns a copy of row i.
func (rs *ResultSet) RowAt(i int) (Row, error) {
	if i < 0 || i >= len(rs.rows) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(rs.rows))
	}
	return slices.Clone(rs.rows[i]), nil
}

// Value returns a single cell without copying the whole row.
func (rs *ResultSet) Value(row, col int) (any, error) {
	if row < 0 || row >= len(rs.rows) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, row, len(rs.rows))
	}
	if col < 0 || col >= len(rs.columns) {
		return nil, fmt.Errorf("%w: column %d not in [0, %d)", ErrIndexOutOfRange, col, len(rs.columns))
	}
	return rs.rows[row][col], nil
}

// All iterates rows in query order. Each call starts a fresh pass.
func (rs *ResultSet) All() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, r := range rs.rows {
			if !yield(i, slices.Clone(r)) {
				return
			}
		}
	}
}

// Contains reports whether some row equals the given tuple.
func (rs *ResultSet) Contains(values ...any) bool {
	if len(values) != len(rs.columns) {
		return false
	}
	for _, r := range rs.rows {
		if slices.EqualFunc(r, values, func(a, b any) bool { return reflect.DeepEqual(a, b) }) {
			return true
		}
	}
	return false
}

// Truncated returns a new ResultSet holding the first n rows.
// n <= 0 means "no limit" and keeps every row. The receiver is not touched.
func (rs *ResultSet) Truncated(n int) *ResultSet {
	if n <= 0 || n >= len(rs.rows) {
		n = len(rs.rows)
	}
	out := &ResultSet{
		columns: rs.columns,
		rows:    rs.rows[:n:n],
	}
	return out
}

// KeyIndex builds the first-column lookup map once and caches it.
func (rs *ResultSet) KeyIndex() (*KeyIndex, error) {
	rs.keyOnce.Do(func() {
		rs.keys, rs.keyErr = newKeyIndex(rs)
	})
	return rs.keys, rs.keyErr
}

// LookupByKey returns the full row whose first-column value equals key.
func (rs *ResultSet) LookupByKey(key any) (Row, error) {
	idx, err := rs.KeyIndex()
	if err != nil {
		return nil, err
	}
	return idx.Lookup(key)
}
