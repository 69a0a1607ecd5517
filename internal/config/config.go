package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Archive  ArchiveConfig  `yaml:"archive" mapstructure:"archive"`
	Spright  SprightConfig  `yaml:"spright" mapstructure:"spright"`
	MC       MCConfig       `yaml:"mc" mapstructure:"mc"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the snapshot store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ArchiveConfig configures the NASA Exoplanet Archive client.
type ArchiveConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RPS            float64 `yaml:"rps" mapstructure:"rps"`
	MinPlanets     int     `yaml:"min_planets" mapstructure:"min_planets"`
	AliasOverrides string  `yaml:"alias_overrides" mapstructure:"alias_overrides"`
}

// SprightConfig configures the mass-radius predictor service.
type SprightConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RPS         float64 `yaml:"rps" mapstructure:"rps"`
}

// MCConfig configures Monte Carlo propagation.
type MCConfig struct {
	Samples   int    `yaml:"samples" mapstructure:"samples"`
	Threshold int    `yaml:"threshold" mapstructure:"threshold"`
	Seed      uint64 `yaml:"seed" mapstructure:"seed"`
}

// PipelineConfig configures stage execution.
type PipelineConfig struct {
	Workers  int  `yaml:"workers" mapstructure:"workers"`     // parallel systems per stage
	CoreOnly bool `yaml:"core_only" mapstructure:"core_only"` // restrict NAMD to the core sample
}

// ServerConfig configures the read-only API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EXONAMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "exonamd.db")
	v.SetDefault("archive.base_url", "https://exoplanetarchive.ipac.caltech.edu")
	v.SetDefault("archive.user_agent", "exonamd/1.0")
	v.SetDefault("archive.timeout_secs", 120)
	v.SetDefault("archive.rps", 1)
	v.SetDefault("archive.min_planets", 2)
	v.SetDefault("spright.base_url", "http://localhost:8100")
	v.SetDefault("spright.timeout_secs", 60)
	v.SetDefault("spright.rps", 5)
	v.SetDefault("mc.samples", 200000)
	v.SetDefault("mc.threshold", 100)
	v.SetDefault("mc.seed", 42)
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.core_only", true)
	v.SetDefault("server.port", 8080)
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
