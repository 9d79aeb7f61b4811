package magic

import (
	"context"
	"errors"

	"github.com/tuannm99/kqlmagic/internal/resultset"
)

var (
	ErrEmptyQuery   = errors.New("magic: empty query")
	ErrNoConnection = errors.New("magic: no connection; start the query with a connection string such as kusto://host:port/db")
	ErrNoNamespace  = errors.New("magic: result assignment and column binding need a namespace")

	ErrUnboundParameter = errors.New("magic: unbound query parameter")
)

// Query is what gets forwarded to the query service.
type Query struct {
	Database   string
	Text       string
	Properties map[string]string
	// Parameters holds KQL literals for the names declared by a leading
	// "declare query_parameters" statement in Text.
	Parameters map[string]string
}

// Table is the raw tabular answer of the query service.
type Table struct {
	Columns []string
	Rows    []resultset.Row
}

// Executor runs KQL on an external service.
type Executor interface {
	Execute(ctx context.Context, q Query) (*Table, error)
}

// Connector opens an Executor for a connection string.
type Connector func(ctx context.Context, connection string) (Executor, error)

// QueryError is a failure reported by the query service. Its message is
// passed through untouched.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string { return e.Message }
