package magic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/tuannm99/kqlmagic/internal"
	"github.com/tuannm99/kqlmagic/internal/render"
	"github.com/tuannm99/kqlmagic/internal/resultset"
)

// Magic runs %kql invocations. It remembers the last connection used and
// keeps one Executor per connection string.
//
// A Magic is meant to be driven by a single host goroutine.
type Magic struct {
	Options *internal.MagicOptions

	connect Connector
	clock   clockwork.Clock
	logger  *slog.Logger

	current   string
	executors map[string]Executor
}

type Option func(*Magic)

func WithClock(c clockwork.Clock) Option { return func(m *Magic) { m.clock = c } }

func WithLogger(l *slog.Logger) Option { return func(m *Magic) { m.logger = l } }

// WithConnection sets the connection used until a query names another one.
func WithConnection(conn string) Option { return func(m *Magic) { m.current = conn } }

func New(opts *internal.MagicOptions, connect Connector, options ...Option) *Magic {
	if opts == nil {
		opts = &internal.DefaultConfig().Magic
	}
	m := &Magic{
		Options:   opts,
		connect:   connect,
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
		executors: make(map[string]Executor),
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// Connection returns the current connection string.
func (m *Magic) Connection() string { return m.current }

// Connections lists every connection opened so far.
func (m *Magic) Connections() []string {
	out := make([]string, 0, len(m.executors))
	for k := range m.executors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *Magic) executor(ctx context.Context, conn string) (Executor, error) {
	if conn == "" {
		conn = m.current
	}
	if conn == "" {
		return nil, ErrNoConnection
	}
	if ex, ok := m.executors[conn]; ok {
		m.current = conn
		return ex, nil
	}
	if m.connect == nil {
		return nil, fmt.Errorf("magic: no connector for %q", conn)
	}

	ex, err := m.connect(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("magic: connect %q: %w", conn, err)
	}
	m.executors[conn] = ex
	m.current = conn
	m.logger.Debug("kql: connected", slog.String("connection", conn))
	return ex, nil
}

// Run parses and executes one invocation. ":name" references in the query
// are read from ns. ns receives "x <<" assignments and, with
// column_local_vars on, one value list per column; it is the only scope
// Run ever writes to.
//
// When column binding fails the Output is returned along with the error.
func (m *Magic) Run(ctx context.Context, line, cell string, ns render.Namespace) (*Output, error) {
	inv, err := Parse(line, cell)
	if err != nil {
		return nil, err
	}
	if (inv.Assign != "" || m.Options.ColumnLocalVars) && inv.Query != "" && ns == nil {
		return nil, ErrNoNamespace
	}

	ex, err := m.executor(ctx, inv.Connection)
	if err != nil {
		return nil, err
	}
	if inv.Query == "" {
		// bare connection string: just switch connections
		return &Output{}, nil
	}

	var lookup func(string) (any, bool)
	if ns != nil {
		lookup = ns.Get
	}
	text, params, err := BindParams(inv.Query, lookup)
	if err != nil {
		return nil, err
	}

	start := m.clock.Now()
	tbl, err := ex.Execute(ctx, Query{Text: text, Parameters: params})
	elapsed := m.clock.Since(start)
	if err != nil {
		m.logger.Warn("kql: query failed",
			slog.String("connection", m.current),
			slog.Duration("elapsed", elapsed),
			slog.Any("err", err),
		)
		return nil, err
	}
	if tbl == nil {
		tbl = &Table{}
	}

	rs, err := resultset.New(tbl.Columns, tbl.Rows)
	if err != nil {
		return nil, err
	}
	fetched := rs.Len()
	rs = rs.Truncated(m.Options.AutoLimit)

	m.logger.Debug("kql: query done",
		slog.String("connection", m.current),
		slog.Int("rows", fetched),
		slog.Int("kept", rs.Len()),
		slog.Duration("elapsed", elapsed),
	)

	res := &Result{
		ResultSet:  rs,
		Query:      inv.Query,
		Connection: m.current,
		Elapsed:    elapsed,
		opts:       m.Options,
	}
	out := &Output{Result: res}
	if m.Options.Feedback {
		out.Feedback = fmt.Sprintf("Done (%s): %d records", formatElapsed(elapsed), rs.Len())
	}

	// Columns are bound first: a rejected binding leaves ns untouched and
	// the Result is still returned for its other views.
	if m.Options.ColumnLocalVars {
		if err := res.Bind(ns); err != nil {
			return out, err
		}
		out.Bound = true
	}
	if inv.Assign != "" {
		ns.Set(inv.Assign, res)
	}
	if out.Bound {
		return out, nil
	}

	if m.Options.AutoDataFrame {
		out.Frame = res.DataFrame()
	}
	return out, nil
}

// Close closes every executor that holds resources.
func (m *Magic) Close() error {
	var errs []error
	for conn, ex := range m.executors {
		if c, ok := ex.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %q: %w", conn, err))
			}
		}
		delete(m.executors, conn)
	}
	return errors.Join(errs...)
}
