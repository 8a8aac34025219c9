package infra

import (
	"errors"
	"fmt"
	"os"

	"platwatch/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds the full application configuration. Secrets may be
// overridden through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		BaseURL    string `yaml:"base_url"`
		Platform   string `yaml:"platform"`
		Locale     string `yaml:"locale"`
		TimeoutSec int    `yaml:"timeout_sec"`
		Retries    int    `yaml:"retries"`
	} `yaml:"api"`

	Watch struct {
		PollIntervalSec int         `yaml:"poll_interval_sec"`
		Workers         int         `yaml:"workers"`
		Items           []WatchItem `yaml:"items"`
	} `yaml:"watch"`

	Stats struct {
		WarmOnStart bool `yaml:"warm_on_start"`
	} `yaml:"stats"`

	Storage struct {
		Path string `yaml:"path"` // Empty means the OS config dir default
	} `yaml:"storage"`

	Sinks struct {
		Pushover struct {
			Token string `yaml:"token"`
			User  string `yaml:"user"`
		} `yaml:"pushover"`
		WebSocket struct {
			Enabled bool   `yaml:"enabled"`
			Listen  string `yaml:"listen"`
		} `yaml:"websocket"`
	} `yaml:"sinks"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// WatchItem is one watch-list entry as written in the config file.
type WatchItem struct {
	ID        string `yaml:"id"`
	BuyBelow  int64  `yaml:"buy_below"`
	SellAbove int64  `yaml:"sell_above"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://api.warframe.market/v1"
	}
	if c.API.Platform == "" {
		c.API.Platform = "pc"
	}
	if c.API.Locale == "" {
		c.API.Locale = "en"
	}
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = 10
	}
	if c.API.Retries <= 0 {
		c.API.Retries = 3
	}
	if c.Watch.PollIntervalSec <= 0 {
		c.Watch.PollIntervalSec = 60
	}
	if c.Watch.Workers <= 0 {
		c.Watch.Workers = 4
	}
	if c.Sinks.WebSocket.Listen == "" {
		c.Sinks.WebSocket.Listen = "localhost:8089"
	}
}

// Validate checks configuration validity. Malformed watch-list entries fail
// fast here with the offending field named rather than being skipped.
func (c *Config) Validate() error {
	if !hasPrefix(c.API.BaseURL, "http://") && !hasPrefix(c.API.BaseURL, "https://") {
		return &domain.ConfigError{Field: "api.base_url", Err: fmt.Errorf("invalid URL: %s", c.API.BaseURL)}
	}

	if len(c.Watch.Items) == 0 {
		return &domain.ConfigError{Field: "watch.items", Err: errors.New("at least one watched item is required")}
	}

	seen := make(map[string]bool, len(c.Watch.Items))
	for i, item := range c.Watch.Items {
		field := fmt.Sprintf("watch.items[%d]", i)
		if item.ID == "" {
			return &domain.ConfigError{Field: field + ".id", Err: errors.New("identifier is empty")}
		}
		if item.BuyBelow < 0 {
			return &domain.ConfigError{Field: field + ".buy_below", Err: fmt.Errorf("threshold must not be negative: %d", item.BuyBelow)}
		}
		if item.SellAbove < 0 {
			return &domain.ConfigError{Field: field + ".sell_above", Err: fmt.Errorf("threshold must not be negative: %d", item.SellAbove)}
		}
		if item.BuyBelow == 0 && item.SellAbove == 0 {
			return &domain.ConfigError{Field: field, Err: fmt.Errorf("item %q has no thresholds set", item.ID)}
		}
		if seen[item.ID] {
			return &domain.ConfigError{Field: field + ".id", Err: fmt.Errorf("duplicate item %q", item.ID)}
		}
		seen[item.ID] = true
	}

	return nil
}

// TrackedItems converts the validated watch-list into domain values.
func (c *Config) TrackedItems() []domain.TrackedItem {
	items := make([]domain.TrackedItem, 0, len(c.Watch.Items))
	for _, it := range c.Watch.Items {
		items = append(items, domain.TrackedItem{
			ID:        it.ID,
			BuyBelow:  it.BuyBelow,
			SellAbove: it.SellAbove,
		})
	}
	return items
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overrides secret values when environment variables exist.
func overrideWithEnv(cfg *Config) {
	if token := os.Getenv("PLATWATCH_PUSHOVER_TOKEN"); token != "" {
		cfg.Sinks.Pushover.Token = token
	}
	if user := os.Getenv("PLATWATCH_PUSHOVER_USER"); user != "" {
		cfg.Sinks.Pushover.User = user
	}
}
