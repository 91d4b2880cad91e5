// Package config loads storefront settings from an optional .storefront.yaml
// file and STOREFRONT_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultAPIBaseURL = "https://thedeepdas-htt.hf.space/api"

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout of zero leaves calls bounded only by their context.
	Timeout         time.Duration `mapstructure:"timeout"`
	RefreshDedup    bool          `mapstructure:"refresh_dedup"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerOpenFor  time.Duration `mapstructure:"breaker_open_for"`
}

type StorageConfig struct {
	URL string `mapstructure:"url"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// KafkaConfig enables cross-client cart sync when Brokers is non-empty.
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`
	Topic         string        `mapstructure:"topic"`
	GroupID       string        `mapstructure:"group_id"`
	RelayInterval time.Duration `mapstructure:"relay_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load reads cfgFile (or .storefront.yaml from the working directory and
// $HOME/.config/storefront) and the environment. defaultStorageURL differs
// between the CLI and the gateway server.
func Load(cfgFile, defaultStorageURL string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/storefront")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, defaultStorageURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Kafka.Brokers = splitBrokers(cfg.Kafka.Brokers)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, defaultStorageURL string) {
	v.SetDefault("api.base_url", DefaultAPIBaseURL)
	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("api.refresh_dedup", false)
	v.SetDefault("api.breaker_failures", 0)
	v.SetDefault("api.breaker_open_for", 30*time.Second)

	if defaultStorageURL == "" {
		defaultStorageURL = "memory://"
	}
	v.SetDefault("storage.url", defaultStorageURL)

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "storefront-orders")
	v.SetDefault("kafka.group_id", "")
	v.SetDefault("kafka.relay_interval", time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("output.colors", true)
}

// splitBrokers accepts both a YAML list and a comma separated env value.
func splitBrokers(in []string) []string {
	var out []string
	for _, b := range in {
		for _, part := range strings.Split(b, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api base url: %q (must be an absolute http or https url)", cfg.API.BaseURL)
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("invalid api timeout: %s", cfg.API.Timeout)
	}
	if cfg.API.BreakerFailures > 0 && cfg.API.BreakerOpenFor <= 0 {
		return fmt.Errorf("invalid breaker open duration: %s", cfg.API.BreakerOpenFor)
	}
	if cfg.Storage.URL == "" {
		return fmt.Errorf("storage url is required")
	}
	if cfg.HTTP.RequestTimeout <= 0 || cfg.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http timeouts must be positive")
	}
	if cfg.Kafka.Enabled() && cfg.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"console": true, "text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be console or json)", cfg.Logging.Format)
	}
	return nil
}
