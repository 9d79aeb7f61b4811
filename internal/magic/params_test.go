package magic

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/kqlmagic/internal/render"
)

func TestBindParams(t *testing.T) {
	ns := render.MapNamespace{"x": 22, "name": "foo", "limit": int64(5)}

	cases := []struct {
		query  string
		text   string
		params map[string]string
	}{
		{
			query: "T | take 10",
			text:  "T | take 10",
		},
		{
			query:  "print :x",
			text:   "declare query_parameters(x:long);\nprint x",
			params: map[string]string{"x": "22"},
		},
		{
			query:  "T | where name == :name | take :limit",
			text:   "declare query_parameters(name:string, limit:long);\nT | where name == name | take limit",
			params: map[string]string{"name": `"foo"`, "limit": "5"},
		},
		{
			// string literals, comments, times and type annotations are left alone
			query: "print ':x', \"a\\\":x\", @'c:\\x' // :x\n| extend t = datetime(2020-01-01 10:30)",
			text:  "print ':x', \"a\\\":x\", @'c:\\x' // :x\n| extend t = datetime(2020-01-01 10:30)",
		},
		{
			query: "declare query_parameters(x:long); print x",
			text:  "declare query_parameters(x:long); print x",
		},
		{
			query:  "print a=(:x)\n// :name\n",
			text:   "declare query_parameters(x:long);\nprint a=(x)\n// :name\n",
			params: map[string]string{"x": "22"},
		},
	}
	for _, tc := range cases {
		text, params, err := BindParams(tc.query, ns.Get)
		require.NoError(t, err, "query %q", tc.query)
		require.Equal(t, tc.text, text, "query %q", tc.query)
		require.Equal(t, tc.params, params, "query %q", tc.query)
	}
}

func TestBindParams_Unbound(t *testing.T) {
	_, _, err := BindParams("print :y", render.MapNamespace{}.Get)
	require.ErrorIs(t, err, ErrUnboundParameter)

	_, _, err = BindParams("print :y", nil)
	require.ErrorIs(t, err, ErrUnboundParameter)
}

func TestBindParams_ResultNotAllowed(t *testing.T) {
	ns := render.MapNamespace{"r": &Result{}}
	_, _, err := BindParams("print :r", ns.Get)
	require.Error(t, err)
}

func TestKqlLiteral(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 500, time.FixedZone("X", 3600))

	cases := []struct {
		in  any
		typ string
		lit string
	}{
		{nil, "dynamic", "dynamic(null)"},
		{true, "bool", "true"},
		{int32(-7), "long", "-7"},
		{uint16(7), "long", "7"},
		{1.5, "real", "1.5"},
		{math.Inf(-1), "real", "real(-inf)"},
		{json.Number("3"), "long", "3"},
		{json.Number("3.25"), "real", "3.25"},
		{"a\"b\\c\n", "string", `"a\"b\\c\n"`},
		{ts, "datetime", "datetime(2024-03-01T11:30:00.0000005Z)"},
		{1500 * time.Millisecond, "timespan", "15000000tick"},
		{[]any{1, "a"}, "dynamic", `dynamic([1,"a"])`},
		{map[string]any{"k": 1}, "dynamic", `dynamic({"k":1})`},
	}
	for _, tc := range cases {
		typ, lit, err := kqlLiteral(tc.in)
		require.NoError(t, err, "value %#v", tc.in)
		require.Equal(t, tc.typ, typ, "value %#v", tc.in)
		require.Equal(t, tc.lit, lit, "value %#v", tc.in)
	}

	_, _, err := kqlLiteral(uint64(math.MaxUint64))
	require.Error(t, err)
}
