// Package kqlmagic is the top-level facade for the KQL magic: run KQL from
// a notebook-style host and get back a ResultSet with text, HTML, CSV,
// dict, dataframe and namespace-binding views.
package kqlmagic

import (
	"github.com/tuannm99/kqlmagic/internal"
	"github.com/tuannm99/kqlmagic/internal/magic"
	"github.com/tuannm99/kqlmagic/internal/render"
	"github.com/tuannm99/kqlmagic/internal/resultset"
)

type (
	ResultSet = resultset.ResultSet
	Row       = resultset.Row

	Magic      = magic.Magic
	Result     = magic.Result
	Output     = magic.Output
	Query      = magic.Query
	Table      = magic.Table
	Executor   = magic.Executor
	Connector  = magic.Connector
	Option     = magic.Option
	QueryError = magic.QueryError

	Options = internal.MagicOptions
	Config  = internal.KqlMagicConfig

	Style        = render.Style
	Frame        = render.Frame
	Namespace    = render.Namespace
	MapNamespace = render.MapNamespace
	CSVFile      = render.CSVFile
)

const (
	StyleGrid         = render.StyleGrid
	StylePlainColumns = render.StylePlainColumns
)

var (
	NewResultSet   = resultset.New
	NewMagic       = magic.New
	WithLogger     = magic.WithLogger
	WithClock      = magic.WithClock
	WithConnection = magic.WithConnection
	LoadConfig     = internal.LoadConfig

	Text         = render.Text
	HTML         = render.HTML
	CSV          = render.CSV
	WriteCSVFile = render.WriteCSVFile
	Dict         = render.Dict
	RowDicts     = render.RowDicts
	DataFrame    = render.DataFrame
	BindColumns  = render.BindColumns

	ErrSchemaMismatch   = resultset.ErrSchemaMismatch
	ErrDuplicateKey     = resultset.ErrDuplicateKey
	ErrIndexOutOfRange  = resultset.ErrIndexOutOfRange
	ErrKeyNotFound      = resultset.ErrKeyNotFound
	ErrAmbiguousColumn  = render.ErrAmbiguousColumn
	ErrUnboundParameter = magic.ErrUnboundParameter
)
