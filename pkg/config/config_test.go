package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, "8060", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DB.Host)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("mode: dev\nhttp_port: \"9000\"\ndatabase:\n  host: localhost\n  port: \"5433\"\n  user: bookworm\n  password: secret\n  name: library_db\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t,
		"host=localhost user=bookworm password=secret dbname=library_db port=5433 sslmode=disable TimeZone=UTC",
		cfg.DSN())
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("HTTP_PORT", "8061")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "8061", cfg.HTTPPort)
}

func TestLoadInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
