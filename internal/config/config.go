// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	MarketData MarketDataConfig `mapstructure:"marketdata"`
	Replay     ReplayConfig     `mapstructure:"replay"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// MarketDataConfig holds the real-time session's connection settings.
type MarketDataConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	IsPublicKey     bool          `mapstructure:"is_public_key"` // true for a browser/embedded key: skips OS signal handling, see cmd
	Provider        string        `mapstructure:"provider"`      // realtime, delayed_sip, nasdaq_basic, cboe_one, manual
	AuthURL         string        `mapstructure:"auth_url"`
	WebSocketURL    string        `mapstructure:"websocket_url"`
	MaxReconnects   int           `mapstructure:"max_reconnects"` // not read; the session reconnects without a limit
	HeartbeatPeriod time.Duration `mapstructure:"heartbeat_period"`
	TokenMaxAge     time.Duration `mapstructure:"token_max_age"`
	AuthRPM         int           `mapstructure:"auth_rpm"`
	Channels        []string      `mapstructure:"channels"`
}

// ReplayConfig holds historical tick-file replay settings.
type ReplayConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	CacheDir    string `mapstructure:"cache_dir"`
	DownloadRPM int    `mapstructure:"download_rpm"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("INTRINIO")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "INTRINIO_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "INTRINIO_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "INTRINIO_LOG_LEVEL", "LOG_LEVEL")

	// Market data session
	v.BindEnv("marketdata.api_key", "INTRINIO_API_KEY")
	v.BindEnv("marketdata.is_public_key", "INTRINIO_IS_PUBLIC_KEY")
	v.BindEnv("marketdata.provider", "INTRINIO_PROVIDER")
	v.BindEnv("marketdata.channels", "INTRINIO_CHANNELS")
	v.BindEnv("marketdata.max_reconnects", "INTRINIO_MAX_RECONNECTS")

	// Replay
	v.BindEnv("replay.base_url", "INTRINIO_REPLAY_BASE_URL")
	v.BindEnv("replay.cache_dir", "INTRINIO_REPLAY_CACHE_DIR")

	// Telemetry
	v.BindEnv("telemetry.enabled", "INTRINIO_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "INTRINIO_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "INTRINIO_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "go-realtime-client")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Market data defaults
	v.SetDefault("marketdata.is_public_key", false)
	v.SetDefault("marketdata.provider", "realtime")
	v.SetDefault("marketdata.max_reconnects", 0) // unlimited
	v.SetDefault("marketdata.heartbeat_period", "20s")
	v.SetDefault("marketdata.token_max_age", "24h")
	v.SetDefault("marketdata.auth_rpm", 60)
	v.SetDefault("marketdata.channels", []string{})

	// Replay defaults
	v.SetDefault("replay.cache_dir", "./replay-cache")
	v.SetDefault("replay.download_rpm", 30)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "go-realtime-client")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MarketData.APIKey == "" {
		return fmt.Errorf("marketdata.api_key is required")
	}
	switch c.MarketData.Provider {
	case "realtime", "delayed_sip", "nasdaq_basic", "cboe_one", "manual":
	default:
		return fmt.Errorf("invalid marketdata.provider: %s", c.MarketData.Provider)
	}
	return nil
}
