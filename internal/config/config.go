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
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Window WindowConfig `yaml:"window" mapstructure:"window"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig configures where the five input tables come from.
type DataConfig struct {
	Source        string `yaml:"source" mapstructure:"source"` // csv, sqlite, or postgres
	Dir           string `yaml:"dir" mapstructure:"dir"`
	OrdersFile    string `yaml:"orders_file" mapstructure:"orders_file"`
	SegmentsFile  string `yaml:"segments_file" mapstructure:"segments_file"`
	ImpactFile    string `yaml:"impact_file" mapstructure:"impact_file"`
	PolicyFile    string `yaml:"policy_file" mapstructure:"policy_file"`
	IncidentsFile string `yaml:"incidents_file" mapstructure:"incidents_file"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	DemoSeed      int64  `yaml:"demo_seed" mapstructure:"demo_seed"`
}

// WindowConfig configures the trailing analysis windows.
type WindowConfig struct {
	Days         int `yaml:"days" mapstructure:"days"`
	RollingWeeks int `yaml:"rolling_weeks" mapstructure:"rolling_weeks"`
	PolicyDays   int `yaml:"policy_days" mapstructure:"policy_days"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port         int      `yaml:"port" mapstructure:"port"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimitRPS float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateBurst    int      `yaml:"rate_burst" mapstructure:"rate_burst"`
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
	v.SetEnvPrefix("OPSBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.source", "csv")
	v.SetDefault("data.dir", ".")
	v.SetDefault("data.orders_file", "orders.csv")
	v.SetDefault("data.segments_file", "segments.csv")
	v.SetDefault("data.impact_file", "impact.csv")
	v.SetDefault("data.policy_file", "policy_log.csv")
	v.SetDefault("data.incidents_file", "incidents.csv")
	v.SetDefault("data.sqlite_path", "opsboard.db")
	v.SetDefault("data.demo_seed", 1)
	v.SetDefault("window.days", 90)
	v.SetDefault("window.rolling_weeks", 4)
	v.SetDefault("window.policy_days", 7)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_burst", 40)
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
