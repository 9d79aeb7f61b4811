package kqlmagic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/kqlmagic"
)

type fixedExecutor struct{ tbl *kqlmagic.Table }

func (f fixedExecutor) Execute(context.Context, kqlmagic.Query) (*kqlmagic.Table, error) {
	return f.tbl, nil
}

func TestFacade(t *testing.T) {
	rs, err := kqlmagic.NewResultSet([]string{"n", "name"}, []kqlmagic.Row{{1, "foo"}, {2, "bar"}})
	require.NoError(t, err)
	require.Contains(t, kqlmagic.Text(rs, kqlmagic.StylePlainColumns), "1 | foo")

	opts := &kqlmagic.Options{ColumnLocalVars: true}
	m := kqlmagic.NewMagic(opts,
		func(context.Context, string) (kqlmagic.Executor, error) {
			return fixedExecutor{&kqlmagic.Table{Columns: []string{"n"}, Rows: []kqlmagic.Row{{1}, {2}}}}, nil
		},
		kqlmagic.WithConnection("kusto://local"),
	)

	ns := kqlmagic.MapNamespace{}
	out, err := m.Run(context.Background(), "T", "", ns)
	require.NoError(t, err)
	require.Nil(t, out.Display())
	require.Equal(t, []any{1, 2}, ns["n"])
}
