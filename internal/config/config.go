package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phish-detector/")
	v.AddConfigPath("$HOME/.phish-detector")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("PHISH_DETECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Classifier defaults
	v.SetDefault("classifier.backend", "local")
	v.SetDefault("classifier.model_dir", "model")

	// Detection defaults
	v.SetDefault("detector.threshold", 0.5)
	v.SetDefault("detector.trusted_domains", []string{})

	// Training defaults
	v.SetDefault("training.data_path", "dataset/emails.csv")
	v.SetDefault("training.test_ratio", 0.2)
	v.SetDefault("training.seed", 42)
	v.SetDefault("training.alpha", 0.1)
	v.SetDefault("training.max_features", 5000)

	// Server defaults
	v.SetDefault("server.filter_type", "web")
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.max_upload_size", 1048576)

	// Postfix content filter defaults
	v.SetDefault("postfix.listen_address", "0.0.0.0:10025")
	v.SetDefault("postfix.block_phishing", false)
	v.SetDefault("postfix.headers.status", "X-Phishing-Status")
	v.SetDefault("postfix.headers.score", "X-Phishing-Score")
	v.SetDefault("postfix.headers.reason", "X-Phishing-Reason")
	v.SetDefault("postfix.relay.address", "127.0.0.1")
	v.SetDefault("postfix.relay.port", 10026)
	v.SetDefault("postfix.relay.enabled", true)
	v.SetDefault("postfix.subject_prefix", "")
	v.SetDefault("postfix.modify_subject", false)

	// OpenAI defaults (optional second-opinion backend)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/phish_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/phish_detector?parseTime=true")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
