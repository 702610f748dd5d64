package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Feed is one syndication endpoint the feed adapter may consult.
type Feed struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// Category is a topic bucket resources are aggregated under. The set of
// categories is fixed at startup and immutable afterwards.
type Category struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Feeds       []string `yaml:"feeds,omitempty"`

	// Per-category escalation overrides; zero means "use the global
	// threshold".
	FeedThreshold   int `yaml:"feed_threshold,omitempty"`
	SearchThreshold int `yaml:"search_threshold,omitempty"`
}

type Config struct {
	RefreshInterval string     `yaml:"refresh_interval"`
	FetchTimeout    string     `yaml:"fetch_timeout"`
	ResultCount     int        `yaml:"result_count,omitempty"`
	FeedCutoff      int        `yaml:"feed_threshold,omitempty"`
	SearchCutoff    int        `yaml:"search_threshold,omitempty"`
	SearchEndpoint  string     `yaml:"search_endpoint,omitempty"`
	ListenAddr      string     `yaml:"listen_addr,omitempty"`
	DefaultFeeds    []string   `yaml:"default_feeds"`
	Feeds           []Feed     `yaml:"feeds"`
	Categories      []Category `yaml:"categories"`
}

func (c *Config) RefreshDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// TargetCount returns the exact snapshot size N, defaulting to 9.
func (c *Config) TargetCount() int {
	if c.ResultCount <= 0 {
		return 9
	}
	return c.ResultCount
}

// FeedThresholdFor returns the raw candidate count below which a
// category escalates to the feed tier.
func (c *Config) FeedThresholdFor(cat Category) int {
	if cat.FeedThreshold > 0 {
		return cat.FeedThreshold
	}
	if c.FeedCutoff > 0 {
		return c.FeedCutoff
	}
	return 10
}

// SearchThresholdFor returns the raw candidate count below which a
// category escalates to the fallback search tier.
func (c *Config) SearchThresholdFor(cat Category) int {
	if cat.SearchThreshold > 0 {
		return cat.SearchThreshold
	}
	if c.SearchCutoff > 0 {
		return c.SearchCutoff
	}
	return 9
}

// SearchURL returns the instant-answer endpoint consulted by the
// fallback search tier.
func (c *Config) SearchURL() string {
	if c.SearchEndpoint == "" {
		return "https://api.duckduckgo.com/"
	}
	return c.SearchEndpoint
}

func (c *Config) Addr() string {
	if c.ListenAddr == "" {
		return ":8080"
	}
	return c.ListenAddr
}

func (c *Config) EnabledFeeds() []Feed {
	var out []Feed
	for _, f := range c.Feeds {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// FeedByID looks up an enabled feed. Disabled and unknown ids both
// report false so callers skip them the same way.
func (c *Config) FeedByID(id string) (Feed, bool) {
	for _, f := range c.Feeds {
		if f.ID == id && f.Enabled {
			return f, true
		}
	}
	return Feed{}, false
}

// FeedsFor resolves a category's feed ids to enabled feeds, falling
// back to the default feed list when the category configures none.
func (c *Config) FeedsFor(cat Category) []Feed {
	ids := cat.Feeds
	if len(ids) == 0 {
		ids = c.DefaultFeeds
	}
	var out []Feed
	for _, id := range ids {
		if f, ok := c.FeedByID(id); ok {
			out = append(out, f)
		}
	}
	return out
}

func (c *Config) CategoryByKey(key string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}

func (c *Config) CategoryKeys() []string {
	keys := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		keys = append(keys, cat.Key)
	}
	return keys
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "resourced", "config.yaml")
}

func DBPath() string {
	return filepath.Join(xdg.CacheHome, "resourced", "snapshots.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	seen := map[string]bool{}
	for i, f := range cfg.Feeds {
		if f.ID == "" {
			return fmt.Errorf("feed %d: id is required", i)
		}
		if seen[f.ID] {
			return fmt.Errorf("feed %q: duplicate id", f.ID)
		}
		seen[f.ID] = true
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.ID)
		}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.ID, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.ID, u.Scheme)
		}
	}

	if len(cfg.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	seenCat := map[string]bool{}
	for i, cat := range cfg.Categories {
		if cat.Key == "" {
			return fmt.Errorf("category %d: key is required", i)
		}
		if seenCat[cat.Key] {
			return fmt.Errorf("category %q: duplicate key", cat.Key)
		}
		seenCat[cat.Key] = true
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("category %q: at least one keyword is required", cat.Key)
		}
		for _, id := range cat.Feeds {
			if !seen[id] {
				return fmt.Errorf("category %q: unknown feed id %q", cat.Key, id)
			}
		}
	}

	for _, id := range cfg.DefaultFeeds {
		if !seen[id] {
			return fmt.Errorf("default_feeds: unknown feed id %q", id)
		}
	}
	return nil
}
