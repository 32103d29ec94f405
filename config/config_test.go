package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"KanbanService/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v, err := New(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, store.DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, "taskdb", cfg.DB.Name)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 20, cfg.RateBurst)
	assert.Equal(t, "http://localhost:3000", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.True(t, cfg.RefetchOnMove)
	assert.Equal(t, 4, cfg.MaxInflightMoves)
}

func TestEnvironmentAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_NAME=boards\nDB_DRIVER=sqlite3\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DB_DRIVER") })
	t.Setenv("PORT", "8080")
	t.Setenv("API_URL", "http://tasks.internal:9000/")
	t.Setenv("API_TIMEOUT", "250ms")
	t.Setenv("REFETCH_ON_MOVE", "false")
	// godotenv does not override variables that are already set
	t.Setenv("DB_NAME", "fromenv")

	v, err := New(envFile)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, store.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "fromenv", cfg.DB.Name)
	assert.Equal(t, "http://tasks.internal:9000", cfg.APIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.APITimeout)
	assert.False(t, cfg.RefetchOnMove)
}

func TestBindFlags(t *testing.T) {
	v, err := New(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 3000, "")
	flags.String("api-url", "", "")
	flags.Bool("verbose", false, "")
	require.NoError(t, BindFlags(v, flags))
	require.NoError(t, flags.Parse([]string{"--port", "4000", "--api-url", "http://example.test"}))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "http://example.test", cfg.APIURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":        "0",
		"DB_DRIVER":   "postgres",
		"RATE_LIMIT":  "-1",
		"API_TIMEOUT": "0s",

		"MAX_INFLIGHT_MOVES": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			v, err := New(filepath.Join(t.TempDir(), "none"))
			require.NoError(t, err)
			_, err = Load(v)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "text"}
	log, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	_, err = (&Config{LogLevel: "loud", LogFormat: "json"}).NewLogger()
	assert.Error(t, err)
	_, err = (&Config{LogLevel: "info", LogFormat: "xml"}).NewLogger()
	assert.Error(t, err)
}
