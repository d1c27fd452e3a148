package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
app:
  name: gestion-notas
  version: test
  env: test
server:
  port: 9090
  shutdown_timeout: 5s
datasource:
  backend: mysql
database:
  host: db.local
  port: 3306
  user: notas
  password: secreto
  name: gestion_notas
  charset: utf8mb4
  parse_time: true
  loc: Local
redis:
  host: redis.local
  port: 6380
  import_queue: notas:imports
  dlq_suffix: ":dlq"
logging:
  level: debug
  format: console
`

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_PATH", path)
}

func TestLoad(t *testing.T) {
	writeConfig(t, testConfig)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gestion-notas", cfg.App.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "mysql", cfg.DataSource.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_DefaultsToMemoryBackend(t *testing.T) {
	writeConfig(t, "app:\n  name: x\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DataSource.Backend)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	writeConfig(t, testConfig)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t,
		"notas:secreto@tcp(db.local:3306)/gestion_notas?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.DatabaseDSN())
	assert.Equal(t, "redis.local:6380", cfg.RedisAddr())
}
