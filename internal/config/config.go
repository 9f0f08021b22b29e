// Package config loads clubnews settings from a YAML file, a .env file and
// CLUBNEWS_* environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abelbrown/clubnews/internal/news"
)

// Environment variables that override file settings.
const (
	EnvFeedURL    = "CLUBNEWS_FEED_URL"
	EnvWebhookURL = "CLUBNEWS_WEBHOOK_URL"
	EnvCachePath  = "CLUBNEWS_CACHE_PATH"
	EnvDataDir    = "CLUBNEWS_DATA_DIR"
	EnvTimeout    = "CLUBNEWS_TIMEOUT"
)

// Config is the complete clubnews configuration.
type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Cache   CacheConfig   `yaml:"cache"`
	Webhook WebhookConfig `yaml:"webhook"`
	UI      UIConfig      `yaml:"ui"`

	// DataDir holds the cache, database, event log and log files.
	DataDir string `yaml:"data_dir" validate:"required"`
	// Watch reloads automatically when a file:// feed changes on disk.
	Watch bool `yaml:"watch"`
}

// FeedConfig configures the remote news feed.
type FeedConfig struct {
	// URL is the feed location: http(s):// or file://. Empty skips the
	// remote tier entirely.
	URL       string        `yaml:"url" validate:"omitempty,feedurl"`
	Format    string        `yaml:"format" validate:"oneof=json rss"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

// CacheConfig configures the local cache of the last remote document.
type CacheConfig struct {
	// Path defaults to <data_dir>/news_cache.json.
	Path string `yaml:"path"`
}

// WebhookConfig configures status notifications. An empty URL disables them.
type WebhookConfig struct {
	URL         string        `yaml:"url" validate:"omitempty,http_url"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	MinInterval time.Duration `yaml:"min_interval" validate:"gte=0"`
}

// UIConfig configures the terminal host.
type UIConfig struct {
	VisibleRows     int    `yaml:"visible_rows" validate:"gte=1,lte=100"`
	InitialCategory string `yaml:"initial_category" validate:"tab"`
}

// DefaultConfig returns a Config with defaults filled in.
func DefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			Format:  "json",
			Timeout: 3 * time.Second,
		},
		Webhook: WebhookConfig{
			Timeout:     2 * time.Second,
			MinInterval: 500 * time.Millisecond,
		},
		UI: UIConfig{
			VisibleRows:     5,
			InitialCategory: string(news.All),
		},
		DataDir: defaultDataDir(),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clubnews"
	}
	return filepath.Join(home, ".clubnews")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// DefaultEnvFiles lists the .env files loaded before the config: the
// working directory first, then the default data directory.
func DefaultEnvFiles() []string {
	return []string{".env", filepath.Join(defaultDataDir(), ".env")}
}

// Load reads the YAML file at path (a missing file means defaults), applies
// environment overrides, fills derived paths and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads YAML settings from path over the defaults without applying
// the environment or validating.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from CLUBNEWS_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvFeedURL); ok {
		c.Feed.URL = v
	}
	if v, ok := lookup(EnvWebhookURL); ok {
		c.Webhook.URL = v
	}
	if v, ok := lookup(EnvCachePath); ok {
		c.Cache.Path = v
	}
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Feed.Timeout = d
	}
	return nil
}

// resolvePaths expands ~ and fills the cache path from the data dir.
func (c *Config) resolvePaths() {
	c.DataDir = expandHome(c.DataDir)
	if c.Cache.Path == "" {
		c.Cache.Path = filepath.Join(c.DataDir, "news_cache.json")
	}
	c.Cache.Path = expandHome(c.Cache.Path)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("feedurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return u.Host != ""
		case "file":
			return u.Path != "" || u.Host != ""
		}
		return false
	})
	v.RegisterValidation("tab", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if news.Category(s) == news.All {
			return true
		}
		_, ok := news.Canonical(s)
		return ok
	})
	return v
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// InitialCategory returns the configured starting category in canonical form.
func (c *Config) InitialCategory() news.Category {
	if cat, ok := news.Canonical(c.UI.InitialCategory); ok {
		return cat
	}
	return news.All
}

// DBPath returns the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "clubnews.db")
}

// EventsPath returns the JSONL event log location.
func (c *Config) EventsPath() string {
	return filepath.Join(c.DataDir, "events.jsonl")
}

// LogDir returns the directory of human-readable log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// Save writes c as YAML to path, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
