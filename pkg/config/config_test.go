package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/casegraph/pkg/model"
)

func flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("casegraph", pflag.ContinueOnError)
	f.Int("port", 8080, "")
	f.String("storage", "json", "")
	f.Bool("open", true, "")
	f.CountP("verbose", "v", "")
	return f
}

func TestDefaults(t *testing.T) {
	cfg, err := load(nil, filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Storage)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Open)
	assert.Equal(t, "http://localhost:3001", cfg.OCR.URL)
	assert.Equal(t, 2*time.Minute, cfg.OCR.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Breaker.Timeout)
	assert.Equal(t, uint32(3), cfg.Breaker.Requests)
}

func TestPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casegraph.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 9000
storage = "sqlite"

[ocr]
url = "http://ocr.local:3001"
timeout = "10s"
`), 0o644))

	t.Setenv("CASEGRAPH_PORT", "9100")
	t.Setenv("CASEGRAPH_REPORT_URL", "http://report.local:4000")

	f := flags()
	require.NoError(t, f.Parse([]string{"--port", "9200", "-vv"}))

	cfg, err := load(f, path)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Port, "flag beats env and file")
	assert.Equal(t, "sqlite", cfg.Storage, "file beats defaults")
	assert.Equal(t, "http://ocr.local:3001", cfg.OCR.URL)
	assert.Equal(t, 10*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, "http://report.local:4000", cfg.Report.URL)
	assert.Equal(t, 2, cfg.VerboseCnt)
}

func TestEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casegraph.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = 9000\n"), 0o644))
	t.Setenv("CASEGRAPH_PORT", "9100")

	cfg, err := load(flags(), path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
}

func TestInvalidStorage(t *testing.T) {
	t.Setenv("CASEGRAPH_STORAGE", "postgres")

	_, err := load(nil, filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "storage must be one of")
}

func TestMalformedFileIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casegraph.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = \n[ocr\n"), 0o644))

	_, err := load(nil, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestUnreadableFileIsReported(t *testing.T) {
	// A directory where the file should be cannot be read.
	path := t.TempDir()

	_, err := load(nil, path)
	assert.Error(t, err)
}
