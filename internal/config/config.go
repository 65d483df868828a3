package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"rendezvous/pkg/log"
)

const envPrefix = "RENDEZVOUS_"

// Config is the full process configuration.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http" json:"http"`
	WebSocket WebSocketConfig `mapstructure:"websocket" json:"websocket"`
	Match     MatchConfig     `mapstructure:"match" json:"match"`
	Log       log.Config      `mapstructure:"log" json:"log"`
}

// HTTPConfig controls the listening endpoint.
type HTTPConfig struct {
	Host         string        `mapstructure:"host" json:"host"`
	Port         int           `mapstructure:"port" json:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
}

// WebSocketConfig controls each client connection.
type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval" json:"ping_interval"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
	BufferSize     int           `mapstructure:"buffer_size" json:"buffer_size"`
	MaxMessageSize int64         `mapstructure:"max_message_size" json:"max_message_size"`
	MessageRate    float64       `mapstructure:"message_rate" json:"message_rate"`
	MessageBurst   int           `mapstructure:"message_burst" json:"message_burst"`
}

// MatchConfig controls the countdown and conversation timer of a match.
type MatchConfig struct {
	CountdownFrom        int           `mapstructure:"countdown_from" json:"countdown_from"`
	CountdownInterval    time.Duration `mapstructure:"countdown_interval" json:"countdown_interval"`
	ConversationDuration time.Duration `mapstructure:"conversation_duration" json:"conversation_duration"`
	TickInterval         time.Duration `mapstructure:"tick_interval" json:"tick_interval"`
}

// DefaultConfig returns the production defaults: a three second countdown
// followed by a five minute conversation ticking once per second.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Host:         "0.0.0.0",
			Port:         3000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		WebSocket: WebSocketConfig{
			PingInterval:   30 * time.Second,
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   10 * time.Second,
			BufferSize:     256,
			MaxMessageSize: 64 * 1024,
			MessageRate:    50,
			MessageBurst:   100,
		},
		Match: MatchConfig{
			CountdownFrom:        3,
			CountdownInterval:    time.Second,
			ConversationDuration: 5 * time.Minute,
			TickInterval:         time.Second,
		},
		Log: log.Config{
			Level:  "info",
			Format: "json",
			Stdout: true,
		},
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Host == "" {
		return errors.New("HTTP host cannot be empty")
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return errors.New("HTTP port must be between 0 and 65535")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return errors.New("HTTP timeouts must be positive")
	}

	if c.WebSocket.PingInterval <= 0 {
		return errors.New("WebSocket ping interval must be positive")
	}
	if c.WebSocket.ReadTimeout <= c.WebSocket.PingInterval {
		return errors.New("WebSocket read timeout must exceed the ping interval")
	}
	if c.WebSocket.WriteTimeout <= 0 {
		return errors.New("WebSocket write timeout must be positive")
	}
	if c.WebSocket.BufferSize <= 0 {
		return errors.New("WebSocket buffer size must be positive")
	}
	if c.WebSocket.MaxMessageSize <= 0 {
		return errors.New("WebSocket max message size must be positive")
	}
	if c.WebSocket.MessageRate <= 0 || c.WebSocket.MessageBurst <= 0 {
		return errors.New("WebSocket message rate and burst must be positive")
	}

	if c.Match.CountdownFrom < 0 {
		return errors.New("match countdown cannot be negative")
	}
	if c.Match.CountdownInterval <= 0 || c.Match.TickInterval <= 0 {
		return errors.New("match intervals must be positive")
	}
	if c.Match.ConversationDuration <= 0 {
		return errors.New("match conversation duration must be positive")
	}

	if c.Log.Level == "" {
		return errors.New("log level cannot be empty")
	}
	return nil
}

// LoadFromEnv applies RENDEZVOUS_* variables over the defaults. Values
// that fail to parse are ignored.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()
	applyEnv(cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	setString(&cfg.HTTP.Host, "HTTP_HOST")
	setInt(&cfg.HTTP.Port, "HTTP_PORT")
	setDuration(&cfg.HTTP.ReadTimeout, "HTTP_READ_TIMEOUT")
	setDuration(&cfg.HTTP.WriteTimeout, "HTTP_WRITE_TIMEOUT")

	setDuration(&cfg.WebSocket.PingInterval, "WEBSOCKET_PING_INTERVAL")
	setDuration(&cfg.WebSocket.ReadTimeout, "WEBSOCKET_READ_TIMEOUT")
	setDuration(&cfg.WebSocket.WriteTimeout, "WEBSOCKET_WRITE_TIMEOUT")
	setInt(&cfg.WebSocket.BufferSize, "WEBSOCKET_BUFFER_SIZE")
	setInt(&cfg.WebSocket.MessageBurst, "WEBSOCKET_MESSAGE_BURST")
	if v := os.Getenv(envPrefix + "WEBSOCKET_MESSAGE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.WebSocket.MessageRate = rate
		}
	}

	setInt(&cfg.Match.CountdownFrom, "MATCH_COUNTDOWN_FROM")
	setDuration(&cfg.Match.CountdownInterval, "MATCH_COUNTDOWN_INTERVAL")
	setDuration(&cfg.Match.ConversationDuration, "MATCH_CONVERSATION_DURATION")
	setDuration(&cfg.Match.TickInterval, "MATCH_TICK_INTERVAL")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Log.File.Path, "LOG_FILE")
}

// LoadFromFile reads a YAML or JSON file over the defaults and validates
// the result.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := mergeFile(cfg, path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration in %s", path)
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

// LoadConfigWithPrecedence resolves file > environment > defaults. A file
// that cannot be read or yields an invalid configuration is reported and
// the environment/default configuration is used instead.
func LoadConfigWithPrecedence(path string) (*Config, error) {
	cfg := LoadFromEnv()
	if path == "" {
		return cfg, nil
	}

	merged := LoadFromEnv()
	if err := mergeFile(merged, path); err != nil {
		return cfg, err
	}
	if err := merged.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid configuration in %s", path)
	}
	return merged, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
