package resultset

import "errors"

var (
	ErrSchemaMismatch  = errors.New("resultset: row arity does not match columns")
	ErrDuplicateKey    = errors.New("resultset: duplicate key in first column")
	ErrIndexOutOfRange = errors.New("resultset: row index out of range")
	ErrKeyNotFound     = errors.New("resultset: key not found")
	ErrNoColumns       = errors.New("resultset: result has no columns")
)
