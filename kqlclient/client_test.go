package kqlclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tuannm99/kqlmagic/internal/magic"
	"github.com/tuannm99/kqlmagic/internal/render"
	"github.com/tuannm99/kqlmagic/server/kqlwire"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startService runs a kqlwire server answering every query from h and
// returns its address. The server is stopped when the test ends.
func startService(t *testing.T, h kqlwire.HandlerFunc) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = kqlwire.Serve(ctx, ln, h)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return ln.Addr().String()
}

func testService(_ context.Context, req *kqlwire.QueryRequest) (*kqlwire.QueryResponse, error) {
	switch req.Query {
	case "test":
		return &kqlwire.QueryResponse{
			Columns: []string{"n", "name"},
			Rows:    [][]any{{1, "foo"}, {2, "bar"}},
		}, nil
	case "database":
		return &kqlwire.QueryResponse{Columns: []string{"db"}, Rows: [][]any{{req.Database}}}, nil
	case "declare query_parameters(x:long);\nprint x":
		return &kqlwire.QueryResponse{
			Columns: []string{"print_0"},
			Rows:    [][]any{{json.RawMessage(req.Parameters["x"])}},
		}, nil
	case "slow":
		time.Sleep(200 * time.Millisecond)
		return &kqlwire.QueryResponse{}, nil
	default:
		return &kqlwire.QueryResponse{Error: "General_BadRequest: unknown table '" + req.Query + "'"}, nil
	}
}

func TestClient_Execute(t *testing.T) {
	addr := startService(t, testService)

	c, err := Dial(addr, time.Second)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	tbl, err := c.Execute(context.Background(), magic.Query{Text: "test"})
	require.NoError(t, err)
	require.Equal(t, []string{"n", "name"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	require.Equal(t, json.Number("1"), tbl.Rows[0][0])
	require.Equal(t, "foo", tbl.Rows[0][1])
}

func TestClient_ServiceErrorPassesThrough(t *testing.T) {
	addr := startService(t, testService)

	c, err := Dial(addr, time.Second)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	_, err = c.Execute(context.Background(), magic.Query{Text: "tset"})
	var qerr *magic.QueryError
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, "General_BadRequest: unknown table 'tset'", qerr.Message)

	// the connection stays usable after a query error
	_, err = c.Execute(context.Background(), magic.Query{Text: "test"})
	require.NoError(t, err)
}

func TestClient_DatabaseDefault(t *testing.T) {
	addr := startService(t, testService)

	c, err := Dial(addr, time.Second)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	c.Database = "Samples"

	tbl, err := c.Execute(context.Background(), magic.Query{Text: "database"})
	require.NoError(t, err)
	require.Equal(t, "Samples", tbl.Rows[0][0])

	tbl, err = c.Execute(context.Background(), magic.Query{Text: "database", Database: "Other"})
	require.NoError(t, err)
	require.Equal(t, "Other", tbl.Rows[0][0])
}

func TestClient_ContextDeadline(t *testing.T) {
	addr := startService(t, testService)

	c, err := Dial(addr, time.Second)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Execute(ctx, magic.Query{Text: "slow"})
	require.Error(t, err)
	var nerr net.Error
	require.ErrorAs(t, err, &nerr)
	require.True(t, nerr.Timeout())
}

func TestClient_Nil(t *testing.T) {
	var c *Client
	_, err := c.Execute(context.Background(), magic.Query{Text: "test"})
	require.Error(t, err)
	require.NoError(t, c.Close())
}

func TestParseConnection(t *testing.T) {
	addr, db, err := ParseConnection("kusto://127.0.0.1:8866/Samples")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8866", addr)
	require.Equal(t, "Samples", db)

	_, _, err = ParseConnection("kusto://")
	require.Error(t, err)

	_, _, err = ParseConnection("sqlite://db")
	require.Error(t, err)
}

func TestMagicOverClient(t *testing.T) {
	addr := startService(t, testService)

	m := magic.New(nil, Connector(time.Second),
		magic.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer func() { require.NoError(t, m.Close()) }()

	out, err := m.Run(context.Background(), "kusto://"+addr+"/Samples test", "", nil)
	require.NoError(t, err)

	res := out.Result
	require.Equal(t, 2, res.Len())
	require.Regexp(t, regexp.MustCompile(`1\s+\|\s+foo`), res.String())
	require.Contains(t, strings.ToLower(res.HTML()), "<td>foo</td>")

	csv, err := res.CSV()
	require.NoError(t, err)
	require.Equal(t, "n,name\n1,foo\n2,bar\n", csv)

	f, ok := out.Display().(*magic.Result)
	require.True(t, ok)
	require.Equal(t, render.KindInt64, render.DataFrame(f.ResultSet).Series[0].Kind)
}

func TestMagicOverClient_QueryParameters(t *testing.T) {
	addr := startService(t, testService)

	m := magic.New(nil, Connector(time.Second),
		magic.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer func() { require.NoError(t, m.Close()) }()

	ns := render.MapNamespace{"x": 22}
	out, err := m.Run(context.Background(), "kusto://"+addr+"/Samples print :x", "", ns)
	require.NoError(t, err)

	v, err := out.Result.Value(0, 0)
	require.NoError(t, err)
	require.Equal(t, json.Number("22"), v)
}
