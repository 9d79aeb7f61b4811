package render

import "errors"

var (
	ErrAmbiguousColumn = errors.New("render: duplicate column name")
	ErrUnknownStyle    = errors.New("render: unknown style")
	ErrNilNamespace    = errors.New("render: nil namespace")
)
