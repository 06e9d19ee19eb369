package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the background service and
// the page watcher. User-facing GitHub settings are not here; they live in
// the settings store and are mutated by the options UI.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	RedisURL       string
	GitHubBaseURL  string
	GitHubTimeout  time.Duration
	PollInterval   time.Duration
	SettleDelay    time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	MaxLogEntries  int
	APIBaseURL     string
	MessageTimeout time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LEETHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LeetHub Service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.timeout", "30s")
	v.SetDefault("poll.interval", "1s")
	v.SetDefault("settle.delay", "2s")
	v.SetDefault("max.retries", 3)
	v.SetDefault("retry.delay", "2s")
	v.SetDefault("max.log_entries", 10)
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("message.timeout", "30s")

	cfg := Config{
		AppName:       v.GetString("app.name"),
		AppEnv:        v.GetString("app.env"),
		AppPort:       v.GetString("app.port"),
		RedisURL:      v.GetString("redis.url"),
		GitHubBaseURL: v.GetString("github.base_url"),
		MaxRetries:    v.GetInt("max.retries"),
		MaxLogEntries: v.GetInt("max.log_entries"),
		APIBaseURL:    v.GetString("api.base_url"),
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"github.timeout", &cfg.GitHubTimeout},
		{"poll.interval", &cfg.PollInterval},
		{"settle.delay", &cfg.SettleDelay},
		{"retry.delay", &cfg.RetryDelay},
		{"message.timeout", &cfg.MessageTimeout},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	if cfg.MaxLogEntries <= 0 {
		cfg.MaxLogEntries = 10
	}

	return cfg, nil
}
