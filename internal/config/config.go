package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config del servicio. Los nombres de key coinciden con las env vars
// (PORT, DB_DSN, ...) en minúscula, así un YAML y el entorno usan las mismas.
type Config struct {
	Port       string `mapstructure:"port"`
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// DBDriver: memory | postgres | sqlite
	DBDriver   string `mapstructure:"db_driver"`
	DBDSN      string `mapstructure:"db_dsn"`
	SQLitePath string `mapstructure:"sqlite_path"`

	// Vacío = modo dev (X-Debug-User-ID).
	AuthBaseURL string `mapstructure:"auth_base_url"`
	AuthAPIKey  string `mapstructure:"auth_api_key"`

	DefaultLocale string `mapstructure:"default_locale"`

	// Escrituras por minuto por usuario. 0 = sin límite.
	RateLimitWrites int `mapstructure:"rate_limit_writes"`

	OTLPEndpoint string `mapstructure:"otel_exporter_otlp_endpoint"`

	// Fracción de trazas muestreadas (0..1].
	OTelSamplingRate float64 `mapstructure:"otel_sampling_rate"`
}

// ConfigFileEnv apunta a un YAML opcional cuando no se pasa --config.
const ConfigFileEnv = "SHELTER_CONFIG"

var defaults = map[string]any{
	"port":                        "8080",
	"app_name":                    "shelter-operations",
	"app_version":                 "dev",
	"log_level":                   "info",
	"log_format":                  "text",
	"db_driver":                   "memory",
	"db_dsn":                      "",
	"sqlite_path":                 "shelter.db",
	"auth_base_url":               "",
	"auth_api_key":                "",
	"default_locale":              "en",
	"rate_limit_writes":           120,
	"otel_exporter_otlp_endpoint": "",
	"otel_sampling_rate":          1.0,
}

// Load aplica defaults, luego el archivo (path o SHELTER_CONFIG), luego env.
func Load(path string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if strings.TrimSpace(path) == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.DBDSN) == "" {
			errs = append(errs, errors.New("db_dsn is required when db_driver=postgres"))
		}
	case "sqlite":
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("sqlite_path is required when db_driver=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db_driver %q (memory, postgres, sqlite)", c.DBDriver))
	}

	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.RateLimitWrites < 0 {
		errs = append(errs, errors.New("rate_limit_writes must be >= 0"))
	}
	if c.OTelSamplingRate < 0 || c.OTelSamplingRate > 1 {
		errs = append(errs, errors.New("otel_sampling_rate must be between 0 and 1"))
	}
	if strings.TrimSpace(c.AuthBaseURL) != "" && strings.TrimSpace(c.AuthAPIKey) == "" {
		errs = append(errs, errors.New("auth_api_key is required when auth_base_url is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr devuelve ":<port>".
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

// DevAuth indica que no hay IAM configurado.
func (c Config) DevAuth() bool {
	return strings.TrimSpace(c.AuthBaseURL) == ""
}
