package resultset

import (
	"fmt"
	"reflect"
	"slices"
)

// KeyIndex maps first-column values to row positions.
// It only exists for results whose first column is unique.
type KeyIndex struct {
	rs  *ResultSet
	pos map[any]int
}

// opaqueKey stands in for values that cannot be map keys: slices, maps,
// and arrays or structs holding them behind an interface.
type opaqueKey string

func keyOf(v any) any {
	if v == nil {
		return nil
	}
	if reflect.ValueOf(v).Comparable() {
		return v
	}
	return opaqueKey(fmt.Sprintf("%#v", v))
}

func newKeyIndex(rs *ResultSet) (*KeyIndex, error) {
	if len(rs.columns) == 0 {
		return nil, ErrNoColumns
	}
	idx := &KeyIndex{rs: rs, pos: make(map[any]int, len(rs.rows))}
	for i, r := range rs.rows {
		k := keyOf(r[0])
		if prev, ok := idx.pos[k]; ok {
			return nil, fmt.Errorf("%w: %v (rows %d and %d)", ErrDuplicateKey, r[0], prev, i)
		}
		idx.pos[k] = i
	}
	return idx, nil
}

// Len returns the number of keys.
func (k *KeyIndex) Len() int { return len(k.pos) }

// Lookup returns a copy of the row keyed by key.
func (k *KeyIndex) Lookup(key any) (Row, error) {
	i, ok := k.pos[keyOf(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return slices.Clone(k.rs.rows[i]), nil
}
