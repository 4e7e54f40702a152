package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	// Vacío = no seteado para viper (AllowEmptyEnv=false).
	for _, k := range []string{ConfigFileEnv, "PORT", "DB_DRIVER", "DB_DSN", "SQLITE_PATH", "AUTH_BASE_URL", "AUTH_API_KEY", "DEFAULT_LOCALE", "RATE_LIMIT_WRITES", "LOG_FORMAT", "APP_NAME", "APP_VERSION", "OTEL_SAMPLING_RATE"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Equal(t, 120, cfg.RateLimitWrites)
	assert.Equal(t, "dev", cfg.AppVersion)
	assert.Equal(t, 1.0, cfg.OTelSamplingRate)
	assert.True(t, cfg.DevAuth())
}

func TestLoad_TelemetryKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_VERSION", "1.4.2")
	t.Setenv("OTEL_SAMPLING_RATE", "0.25")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", cfg.AppVersion)
	assert.Equal(t, 0.25, cfg.OTelSamplingRate)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
db_driver: sqlite
sqlite_path: /var/lib/shelter/shelter.db
default_locale: es
rate_limit_writes: 10
`), 0o600))

	clearEnv(t)
	t.Setenv("PORT", "7070")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port, "env wins over file")
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/var/lib/shelter/shelter.db", cfg.SQLitePath)
	assert.Equal(t, "es", cfg.DefaultLocale)
	assert.Equal(t, 10, cfg.RateLimitWrites)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_name: shelter-east\n"), 0o600))
	clearEnv(t)
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "shelter-east", cfg.AppName)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Port: "8080", DBDriver: "memory"}
	assert.NoError(t, base.Validate())

	c := base
	c.DBDriver = "mongo"
	assert.ErrorContains(t, c.Validate(), "unknown db_driver")

	c = base
	c.DBDriver = "postgres"
	assert.ErrorContains(t, c.Validate(), "db_dsn")

	c = base
	c.AuthBaseURL = "https://iam.example.org"
	assert.ErrorContains(t, c.Validate(), "auth_api_key")
	assert.False(t, c.DevAuth())

	c = base
	c.RateLimitWrites = -1
	assert.ErrorContains(t, c.Validate(), "rate_limit_writes")

	c = base
	c.OTelSamplingRate = 1.5
	assert.ErrorContains(t, c.Validate(), "otel_sampling_rate")
}
