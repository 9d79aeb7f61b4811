package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/kqlmagic/internal/render"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "kqlmagic", cfg.AppName)
	require.Equal(t, 0, cfg.Magic.AutoLimit)
	require.Equal(t, 0, cfg.Magic.DisplayLimit)
	require.Equal(t, render.StyleGrid, cfg.Magic.RenderStyle())
	require.True(t, cfg.Magic.Feedback)
	require.Equal(t, 30*time.Second, cfg.Server.Timeout)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kqlmagic.yaml")
	data := []byte(`
app_name: notebook
magic:
  autolimit: 100
  displaylimit: 10
  style: plain_columns
  column_local_vars: true
server:
  connection: kusto://127.0.0.1:8866/Samples
  timeout: 5s
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "notebook", cfg.AppName)
	require.Equal(t, 100, cfg.Magic.AutoLimit)
	require.Equal(t, 10, cfg.Magic.DisplayLimit)
	require.Equal(t, render.StylePlainColumns, cfg.Magic.RenderStyle())
	require.True(t, cfg.Magic.ColumnLocalVars)
	require.True(t, cfg.Magic.Feedback)
	require.Equal(t, "kusto://127.0.0.1:8866/Samples", cfg.Server.Connection)
	require.Equal(t, 5*time.Second, cfg.Server.Timeout)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("KQLMAGIC_MAGIC_AUTOLIMIT", "7")
	t.Setenv("KQLMAGIC_SERVER_CONNECTION", "kusto://localhost:9000")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Magic.AutoLimit)
	require.Equal(t, "kusto://localhost:9000", cfg.Server.Connection)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_InvalidStyle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("magic:\n  style: fancy\n"), 0o644))

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, render.ErrUnknownStyle)
}

func TestMagicOptions_Set(t *testing.T) {
	o := DefaultConfig().Magic

	require.NoError(t, o.Set("KqlMagic.autolimit", "1"))
	require.Equal(t, 1, o.AutoLimit)

	require.NoError(t, o.Set("autolimit", "None"))
	require.Equal(t, 0, o.AutoLimit)

	require.NoError(t, o.Set("displaylimit", "2"))
	require.Equal(t, 2, o.DisplayLimit)

	require.NoError(t, o.Set("style", "'PLAIN_COLUMNS'"))
	require.Equal(t, render.StylePlainColumns, o.RenderStyle())

	require.NoError(t, o.Set("column_local_vars", "True"))
	require.True(t, o.ColumnLocalVars)

	require.NoError(t, o.Set("autopandas", "true"))
	require.True(t, o.AutoDataFrame)

	require.NoError(t, o.Set("feedback", "false"))
	require.False(t, o.Feedback)
}

func TestMagicOptions_SetErrors(t *testing.T) {
	o := DefaultConfig().Magic

	require.ErrorIs(t, o.Set("colour", "red"), ErrUnknownOption)
	require.Error(t, o.Set("autolimit", "-1"))
	require.Error(t, o.Set("displaylimit", "lots"))
	require.ErrorIs(t, o.Set("style", "fancy"), render.ErrUnknownStyle)
	require.Error(t, o.Set("feedback", "maybe"))

	// failed updates leave the previous value
	require.Equal(t, 0, o.AutoLimit)
	require.True(t, o.Feedback)
}
