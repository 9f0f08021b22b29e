package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/clubnews/internal/news"
)

func noEnv(string) (string, bool) { return "", false }

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Feed.Timeout != 3*time.Second || cfg.UI.VisibleRows != 5 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Cache.Path != filepath.Join(cfg.DataDir, "news_cache.json") {
		t.Errorf("cache path = %q", cfg.Cache.Path)
	}
	if cfg.InitialCategory() != news.All {
		t.Errorf("initial category = %q", cfg.InitialCategory())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
feed:
  url: https://example.com/news.json
  format: rss
  timeout: 5s
webhook:
  url: https://hooks.example.com/clubnews
  min_interval: 1s
ui:
  visible_rows: 8
  initial_category: Registro
data_dir: ` + dir + `
watch: true
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Feed.URL != "https://example.com/news.json" || cfg.Feed.Format != "rss" || cfg.Feed.Timeout != 5*time.Second {
		t.Errorf("feed = %+v", cfg.Feed)
	}
	if cfg.Webhook.MinInterval != time.Second || cfg.Webhook.Timeout != 2*time.Second {
		t.Errorf("webhook = %+v (unset timeout should keep default)", cfg.Webhook)
	}
	if cfg.UI.VisibleRows != 8 || cfg.InitialCategory() != news.Records {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if !cfg.Watch || cfg.DataDir != dir {
		t.Errorf("watch=%v data_dir=%q", cfg.Watch, cfg.DataDir)
	}
	if cfg.DBPath() != filepath.Join(dir, "clubnews.db") || cfg.EventsPath() != filepath.Join(dir, "events.jsonl") {
		t.Errorf("derived paths %q %q", cfg.DBPath(), cfg.EventsPath())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Feed.Format != "json" {
		t.Errorf("expected defaults, got %+v", cfg.Feed)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("feed: [unclosed"), 0o644)

	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvFeedURL:    "file:///tmp/news.json",
		EnvWebhookURL: "http://localhost:9000/hook",
		EnvCachePath:  "/tmp/cache.json",
		EnvDataDir:    "/tmp/clubnews",
		EnvTimeout:    "750ms",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	cfg.resolvePaths()

	if cfg.Feed.URL != env[EnvFeedURL] || cfg.Webhook.URL != env[EnvWebhookURL] {
		t.Errorf("urls not overridden: %+v %+v", cfg.Feed, cfg.Webhook)
	}
	if cfg.Cache.Path != "/tmp/cache.json" || cfg.DataDir != "/tmp/clubnews" {
		t.Errorf("paths not overridden: %q %q", cfg.Cache.Path, cfg.DataDir)
	}
	if cfg.Feed.Timeout != 750*time.Millisecond {
		t.Errorf("timeout = %v", cfg.Feed.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	env[EnvTimeout] = "soon"
	if err := DefaultConfig().ApplyEnv(lookup); err == nil {
		t.Error("expected error for bad timeout")
	}
}

func TestLoadAppliesProcessEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvFeedURL, "https://example.com/feed.json")

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir || cfg.Feed.URL != "https://example.com/feed.json" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Cache.Path != filepath.Join(dir, "news_cache.json") {
		t.Errorf("cache path = %q", cfg.Cache.Path)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	const key = "CLUBNEWS_TEST_DOTENV_VALUE"
	t.Setenv(key, "")
	os.Unsetenv(key)

	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte(key+"=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("%s = %q", key, got)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad format", func(c *Config) { c.Feed.Format = "xml" }, "Format"},
		{"zero timeout", func(c *Config) { c.Feed.Timeout = 0 }, "Timeout"},
		{"ftp feed", func(c *Config) { c.Feed.URL = "ftp://example.com/x" }, "URL"},
		{"relative feed", func(c *Config) { c.Feed.URL = "news.json" }, "URL"},
		{"bad webhook", func(c *Config) { c.Webhook.URL = "not a url" }, "URL"},
		{"zero rows", func(c *Config) { c.UI.VisibleRows = 0 }, "VisibleRows"},
		{"unknown category", func(c *Config) { c.UI.InitialCategory = "Futebol" }, "InitialCategory"},
		{"negative interval", func(c *Config) { c.Webhook.MinInterval = -time.Second }, "MinInterval"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "DataDir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestValidateAcceptsFileURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Feed.URL = "file:///srv/clubnews/news.json"
	if err := cfg.Validate(); err != nil {
		t.Errorf("file URL rejected: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Feed.URL = "https://example.com/news.json"
	cfg.UI.VisibleRows = 7

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Feed.URL != cfg.Feed.URL || got.UI.VisibleRows != 7 || got.Feed.Timeout != cfg.Feed.Timeout {
		t.Errorf("round trip = %+v", got)
	}
}
