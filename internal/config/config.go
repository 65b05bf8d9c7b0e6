// Package config loads camera-coverage settings from config.yaml, .env and
// CAMERA_* environment variables, and configures the global logger.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// AnalysisConfig holds the engine parameters.
type AnalysisConfig struct {
	RadiusM      float64 `yaml:"radius_m" mapstructure:"radius_m"`
	EpsilonM     float64 `yaml:"epsilon_m" mapstructure:"epsilon_m"`
	MinSamples   int     `yaml:"min_samples" mapstructure:"min_samples"`
	MinGapAreaM2 float64 `yaml:"min_gap_area_m2" mapstructure:"min_gap_area_m2"`
	MarginM      float64 `yaml:"margin_m" mapstructure:"margin_m"`
	DensityGrid  int     `yaml:"density_grid" mapstructure:"density_grid"`
	IsolatedM    float64 `yaml:"isolated_m" mapstructure:"isolated_m"`
	ClusteredM   float64 `yaml:"clustered_m" mapstructure:"clustered_m"`
}

// ExportConfig configures file exports.
type ExportConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// FetchConfig configures downloads of remote camera CSVs.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment.
// Environment variables win over the file, which wins over defaults.
func Load() (*Config, error) {
	// .env is optional; existing environment variables are not overwritten.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CAMERA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("analysis.radius_m", 50.0)
	v.SetDefault("analysis.epsilon_m", 500.0)
	v.SetDefault("analysis.min_samples", 3)
	v.SetDefault("analysis.min_gap_area_m2", 0.0)
	v.SetDefault("analysis.margin_m", 152.4)
	v.SetDefault("analysis.density_grid", 100)
	v.SetDefault("analysis.isolated_m", 1000.0)
	v.SetDefault("analysis.clustered_m", 200.0)
	v.SetDefault("export.dir", "output")
	v.SetDefault("export.formats", []string{"geojson", "kml", "shapefile", "csv"})
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 5.0)
	v.SetDefault("fetch.user_agent", "camera-coverage/1.0")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "camera.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "analysis", "store" and "serve"; "serve" implies the other two.
func (c *Config) Validate(mode string) error {
	var errs []string

	analysis := func() {
		a := c.Analysis
		if a.RadiusM <= 0 {
			errs = append(errs, "analysis.radius_m must be > 0")
		}
		if a.EpsilonM <= 0 {
			errs = append(errs, "analysis.epsilon_m must be > 0")
		}
		if a.MinSamples < 1 {
			errs = append(errs, "analysis.min_samples must be >= 1")
		}
		if a.MinGapAreaM2 < 0 {
			errs = append(errs, "analysis.min_gap_area_m2 must be >= 0")
		}
		if a.MarginM < 0 {
			errs = append(errs, "analysis.margin_m must be >= 0")
		}
		if a.DensityGrid != 0 && a.DensityGrid < 2 {
			errs = append(errs, "analysis.density_grid must be 0 or >= 2")
		}
		if a.ClusteredM > a.IsolatedM {
			errs = append(errs, "analysis.clustered_m must not exceed analysis.isolated_m")
		}
	}
	store := func() {
		switch c.Store.Driver {
		case "sqlite", "postgres":
		default:
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	}

	switch mode {
	case "analysis":
		analysis()
	case "store":
		store()
	case "serve":
		analysis()
		store()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
