package folio

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eringen/folio/headmeta"
)

// Metadata sources accepted in SiteConfig.MetaSource.
const (
	MetaSourceFiles = "files"  // {PublicDir}/assets/data/meta, then SQLite
	MetaSourceHTTP  = "http"   // {MetaBaseURL}/assets/data/meta
	MetaSourceDB    = "sqlite" // admin-published documents only
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Folio")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Default description for the shell head
	Author      string `yaml:"author"`      // Author name for JSON-LD

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/folio.db")
	PublicDir    string `yaml:"public_dir"`    // Static assets (default "public")
	ShellPath    string `yaml:"shell_path"`    // App shell HTML; embedded shell when empty

	MetaSource  string `yaml:"meta_source"`   // files, http or sqlite (default files)
	MetaBaseURL string `yaml:"meta_base_url"` // Required when MetaSource is http

	AdminUser     string `yaml:"-"` // Admin username or email
	AdminPassword string `yaml:"-"` // Required: admin login password
	SessionSecret string `yaml:"-"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`

	PostCacheTTL time.Duration `yaml:"post_cache_ttl"` // Post cache TTL (default 5m)

	SocialLinks []SocialLink `yaml:"social_links"`
}

var defaultSocialLinks = []SocialLink{
	{Platform: "Instagram", Icon: "ai-instagram", URL: "https://instagram.com/"},
	{Platform: "Facebook", Icon: "ai-facebook", URL: "https://facebook.com/"},
	{Platform: "GitHub", Icon: "ai-github", URL: "https://github.com/"},
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.MetaSource == "" {
		c.MetaSource = MetaSourceFiles
	}
	if c.AdminUser == "" {
		c.AdminUser = "admin"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if len(c.SocialLinks) == 0 {
		c.SocialLinks = append([]SocialLink(nil), defaultSocialLinks...)
	}
}

func (c SiteConfig) validate() error {
	var errs []error
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("AdminPassword is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SessionSecret is required"))
	}
	switch c.MetaSource {
	case MetaSourceFiles, MetaSourceDB:
	case MetaSourceHTTP:
		if c.MetaBaseURL == "" {
			errs = append(errs, errors.New("MetaBaseURL is required for the http meta source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown meta source %q", c.MetaSource))
	}
	return errors.Join(errs...)
}

// LoadConfig reads an optional YAML file at path and then applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Name, "SITE_NAME")
	setString(&c.URL, "SITE_URL")
	setString(&c.Description, "SITE_DESCRIPTION")
	setString(&c.Author, "SITE_AUTHOR")
	setString(&c.Addr, "ADDR")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.PublicDir, "PUBLIC_DIR")
	setString(&c.ShellPath, "SHELL_PATH")
	setString(&c.MetaSource, "META_SOURCE")
	setString(&c.MetaBaseURL, "META_BASE_URL")
	setString(&c.AdminUser, "ADMIN_USER")
	setString(&c.AdminPassword, "ADMIN_PASSWORD")
	setString(&c.SessionSecret, "ADMIN_SESSION_SECRET")
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		c.CookieSecure, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("POST_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PostCacheTTL = d
		}
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the application logger (default: no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.Logger = logger
		}
	}
}

// WithShell overrides the HTML application shell.
func WithShell(src []byte) Option {
	return func(a *App) {
		a.shellSrc = src
	}
}

// WithMetaStore replaces the metadata source chosen by SiteConfig.MetaSource.
func WithMetaStore(store headmeta.Store) Option {
	return func(a *App) {
		a.metaStore = store
	}
}
