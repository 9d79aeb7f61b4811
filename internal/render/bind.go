package render

import "github.com/tuannm99/kqlmagic/internal/resultset"

// Namespace is a caller-owned name scope. Columns are bound into it and
// query parameters are read from it.
type Namespace interface {
	Get(name string) (any, bool)
	Set(name string, value any)
}

// MapNamespace is the simplest Namespace.
type MapNamespace map[string]any

func (m MapNamespace) Set(name string, value any) { m[name] = value }

// Get returns the bound value and whether it exists.
func (m MapNamespace) Get(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// BindColumns sets one []any per column into ns. Nothing outside ns is
// touched. Columns are validated before the first Set, so a rejected
// result leaves ns unchanged.
func BindColumns(rs *resultset.ResultSet, ns Namespace) error {
	if ns == nil {
		return ErrNilNamespace
	}
	cols, err := Dict(rs)
	if err != nil {
		return err
	}
	for _, name := range rs.Columns() {
		ns.Set(name, cols[name])
	}
	return nil
}
