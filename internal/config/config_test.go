package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty working directory so no stray
// config.yaml or .env is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "lagerapp.db", cfg.Store.DSN)
	assert.Equal(t, 50, cfg.Store.MaxOpenConns)
	assert.Equal(t, "reject", cfg.Catalog.CategoryDeletePolicy)
	assert.Equal(t, "Warengruppe", cfg.Export.CategoryLabel)
	assert.Equal(t, "none", cfg.Archive.Driver)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
}

func TestLoad_File(t *testing.T) {
	dir := inTempDir(t)
	yaml := `
http:
  addr: ":9090"
store:
  driver: postgres
  dsn: postgres://db/lager
catalog:
  category_delete_policy: cascade
redis:
  addr: localhost:6379
  idempotency_ttl: 2h
archive:
  driver: s3
  s3:
    bucket: reports
    path_style: true
log:
  format: JSON
`
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://db/lager", cfg.Store.DSN)
	assert.Equal(t, "cascade", cfg.Catalog.CategoryDeletePolicy)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, "reports", cfg.Archive.S3.Bucket)
	assert.True(t, cfg.Archive.S3.PathStyle)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store:\n  driver: mysql\n"), 0o600))
	t.Setenv("LAGER_STORE_DRIVER", "memory")
	t.Setenv("LAGER_CATALOG_CATEGORY_DELETE_POLICY", "cascade")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "cascade", cfg.Catalog.CategoryDeletePolicy)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LAGER_HTTP_ADDR=:7070\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LAGER_HTTP_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	inTempDir(t)

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"policy", "LAGER_CATALOG_CATEGORY_DELETE_POLICY", "orphan", KeyDeletePolicy},
		{"driver", "LAGER_STORE_DRIVER", "oracle", KeyStoreDriver},
		{"archive", "LAGER_ARCHIVE_DRIVER", "ftp", KeyArchiveDriver},
		{"s3 bucket", "LAGER_ARCHIVE_DRIVER", "s3", KeyS3Bucket},
		{"log format", "LAGER_LOG_FORMAT", "xml", KeyLogFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), out)
	assert.Contains(t, out, `"msg":"shown"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "INFO", parseLevel("loud").String())
}
