package kqlclient

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuannm99/kqlmagic/internal/magic"
	"github.com/tuannm99/kqlmagic/internal/resultset"
	"github.com/tuannm99/kqlmagic/server/kqlwire"
)

// Client is a simple synchronous client for a kqlwire query service.
// It locks send/recv so you can call Execute concurrently but they'll serialize.
type Client struct {
	conn net.Conn
	mu   sync.Mutex

	// Database is sent with every query that does not name one.
	Database string

	// Optional per-request timeout (0 = no timeout).
	rwTimeout time.Duration
}

func Dial(addr string, timeout time.Duration) (*Client, error) {
	return DialContext(context.Background(), addr, timeout)
}

func DialContext(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: c}, nil
}

// SetRWTimeout sets a per-Execute read/write deadline.
// Useful to avoid hanging forever if the service dies.
func (c *Client) SetRWTimeout(d time.Duration) {
	if c == nil {
		return
	}
	c.rwTimeout = d
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Execute sends q and waits for its table. A failure reported by the
// service comes back as *magic.QueryError with the service's message.
func (c *Client) Execute(ctx context.Context, q magic.Query) (*magic.Table, error) {
	if c == nil || c.conn == nil {
		return nil, fmt.Errorf("kqlclient: nil client")
	}

	reqID := uuid.NewString()
	db := q.Database
	if db == "" {
		db = c.Database
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Apply deadline if configured or context has deadline.
	if err := c.applyDeadline(ctx); err != nil {
		return nil, err
	}
	defer func() {
		// Clear deadline after request so idle connection doesn't expire.
		_ = c.conn.SetDeadline(time.Time{})
	}()

	req := kqlwire.QueryRequest{ID: reqID, Database: db, Query: q.Text, Properties: q.Properties, Parameters: q.Parameters}
	if err := kqlwire.WriteFrame(c.conn, req); err != nil {
		return nil, err
	}

	var resp kqlwire.QueryResponse
	if err := kqlwire.ReadFrame(c.conn, &resp); err != nil {
		return nil, err
	}

	if resp.ID != reqID {
		return nil, fmt.Errorf("kqlclient: response id mismatch: got=%s want=%s", resp.ID, reqID)
	}
	if resp.Error != "" {
		return nil, &magic.QueryError{Message: resp.Error}
	}

	tbl := &magic.Table{
		Columns: resp.Columns,
		Rows:    make([]resultset.Row, len(resp.Rows)),
	}
	for i, r := range resp.Rows {
		tbl.Rows[i] = resultset.Row(r)
	}
	return tbl, nil
}

func (c *Client) applyDeadline(ctx context.Context) error {
	// Prefer context deadline if present; otherwise use rwTimeout.
	if dl, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(dl)
	}
	if c.rwTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.rwTimeout))
	}
	return nil
}

// ParseConnection splits "kusto://host:port/database" into address and database.
func ParseConnection(conn string) (addr, database string, err error) {
	u, err := url.Parse(conn)
	if err != nil {
		return "", "", fmt.Errorf("kqlclient: bad connection string %q: %w", conn, err)
	}
	if u.Scheme != "kusto" {
		return "", "", fmt.Errorf("kqlclient: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("kqlclient: connection string %q has no host", conn)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

// Connector dials a Client for each new connection string.
func Connector(timeout time.Duration) magic.Connector {
	return func(ctx context.Context, conn string) (magic.Executor, error) {
		addr, db, err := ParseConnection(conn)
		if err != nil {
			return nil, err
		}
		c, err := DialContext(ctx, addr, timeout)
		if err != nil {
			return nil, err
		}
		c.Database = db
		c.SetRWTimeout(timeout)
		return c, nil
	}
}
