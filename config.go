package mdblog

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/eringen/mdblog/worker"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/log"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: MDBLOG_WORKER__VERSION sets worker.version.
const EnvPrefix = "MDBLOG_"

// DefaultCategories are the category routes listed in the sitemap.
var DefaultCategories = []string{"information", "reviews", "finance", "travel", "life"}

// StaticPage is a markdown page served at /<key>.
type StaticPage struct {
	Title   string `yaml:"title" koanf:"title"`
	Content string `yaml:"content" koanf:"content"`
}

// WorkerConfig configures the caching router.
type WorkerConfig struct {
	Version        string        `yaml:"version" koanf:"version"`
	CachePath      string        `yaml:"cache_path" koanf:"cache_path"` // SQLite file; empty keeps the cache in memory
	Precache       []string      `yaml:"precache" koanf:"precache"`
	Fonts          []string      `yaml:"fonts" koanf:"fonts"`
	NetworkTimeout time.Duration `yaml:"network_timeout" koanf:"network_timeout"`
	SweepInterval  time.Duration `yaml:"sweep_interval" koanf:"sweep_interval"`
	SweepMaxAge    time.Duration `yaml:"sweep_max_age" koanf:"sweep_max_age"`
	CleanMaxAge    time.Duration `yaml:"clean_max_age" koanf:"clean_max_age"`
	MessageLimit   int           `yaml:"message_limit" koanf:"message_limit"`   // per IP per window
	MessageWindow  time.Duration `yaml:"message_window" koanf:"message_window"`
}

// SiteConfig holds all configuration for a blog.
type SiteConfig struct {
	Name        string `yaml:"name" koanf:"name"`               // Site name (default "Blog")
	URL         string `yaml:"url" koanf:"url"`                 // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description" koanf:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author" koanf:"author"`           // Author name for JSON-LD

	Addr       string `yaml:"addr" koanf:"addr"`               // Listen address (default ":3000")
	ContentDir string `yaml:"content_dir" koanf:"content_dir"` // Markdown sources served at /posts (default "public/posts")
	ImagesDir  string `yaml:"images_dir" koanf:"images_dir"`   // Served at /images (default "public/images")
	LogLevel   string `yaml:"log_level" koanf:"log_level"`

	// Posts is the enumeration order of post slugs. When empty every *.md
	// file in ContentDir is used.
	Posts        []string              `yaml:"posts" koanf:"posts"`
	Categories   []string              `yaml:"categories" koanf:"categories"`
	PostsPerPage int                   `yaml:"posts_per_page" koanf:"posts_per_page"`
	PostCacheTTL time.Duration         `yaml:"post_cache_ttl" koanf:"post_cache_ttl"`
	CodeStyle    string                `yaml:"code_style" koanf:"code_style"`
	Sanitize     bool                  `yaml:"sanitize" koanf:"sanitize"`
	Pages        map[string]StaticPage `yaml:"pages" koanf:"pages"`

	Worker WorkerConfig `yaml:"worker" koanf:"worker"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "public/posts"
	}
	if c.ImagesDir == "" {
		c.ImagesDir = "public/images"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.Posts = FilterEmpty(c.Posts)
	if c.Categories = FilterEmpty(c.Categories); len(c.Categories) == 0 {
		c.Categories = append([]string(nil), DefaultCategories...)
	}
	if c.PostsPerPage <= 0 {
		c.PostsPerPage = 6
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.CodeStyle == "" {
		c.CodeStyle = "github"
	}

	w := &c.Worker
	if w.Version == "" {
		w.Version = "1"
	}
	if w.Precache == nil {
		w.Precache = []string{
			"/",
			"/images/icon.jpg",
			"/images/my.jpg",
			"/images/background.jpg",
			"https://fonts.googleapis.com/css2?family=Inter:wght@300;400;500;600;700&display=swap",
		}
	}
	if w.NetworkTimeout == 0 {
		w.NetworkTimeout = 3 * time.Second
	}
	if w.SweepInterval == 0 {
		w.SweepInterval = 24 * time.Hour
	}
	if w.SweepMaxAge == 0 {
		w.SweepMaxAge = 7 * 24 * time.Hour
	}
	if w.CleanMaxAge == 0 {
		w.CleanMaxAge = 24 * time.Hour
	}
	if w.MessageLimit <= 0 {
		w.MessageLimit = 30
	}
	if w.MessageWindow == 0 {
		w.MessageWindow = time.Minute
	}
}

// Validate checks values setDefaults cannot repair.
func (c *SiteConfig) Validate() error {
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("url %q must start with http:// or https://", c.URL)
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error, off", c.LogLevel)
	}
	if c.Worker.NetworkTimeout < 0 {
		return fmt.Errorf("worker.network_timeout must be non-negative")
	}
	return nil
}

var logLevels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

// Level returns the configured gommon log level.
func (c *SiteConfig) Level() log.Lvl {
	if l, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return log.INFO
}

// LoadConfig reads a .env file if present, then the YAML file at path if it
// exists, then MDBLOG_* environment overrides, and fills defaults.
func LoadConfig(path string) (SiteConfig, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return SiteConfig{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return SiteConfig{}, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return SiteConfig{}, fmt.Errorf("loading env overrides: %w", err)
	}

	var cfg SiteConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// envKey maps MDBLOG_WORKER__CACHE_PATH to worker.cache_path.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c SiteConfig) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces the default page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithStorage sets the cache storage, overriding worker.cache_path.
func WithStorage(s worker.Storage) Option {
	return func(a *App) {
		a.storage = s
	}
}

// WithNetwork sets the transport used for requests to hosts other than the
// site itself, such as web fonts.
func WithNetwork(rt http.RoundTripper) Option {
	return func(a *App) {
		a.network = rt
	}
}
