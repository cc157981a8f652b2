package blockpress

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eringen/blockpress/views"
)

// SiteConfig holds all configuration for a blockpress site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Fallback author for JSON-LD

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path for snapshots and images (default "data/blockpress.db")
	StaticDir    string `yaml:"static_dir"`    // Static assets and uploads (default "public")

	APIBaseURL string        `yaml:"api_base_url"` // Required: root of the blog API
	APIToken   string        `yaml:"api_token"`    // Bearer token for admin writes
	APITimeout time.Duration `yaml:"api_timeout"`  // Per-request timeout (default 10s)
	PageSize   int           `yaml:"page_size"`    // Posts per listing page (default 9)

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	CacheTTL time.Duration `yaml:"cache_ttl"` // Content cache TTL (default 5min)
	RedisURL string        `yaml:"redis_url"` // Share the content cache through Redis when set
	DraftTTL time.Duration `yaml:"draft_ttl"` // Idle editor drafts are dropped after this (default 2h)

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error (default info)
	LogFormat string `yaml:"log_format"` // json or console (default json)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blockpress.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.APITimeout == 0 {
		c.APITimeout = 10 * time.Second
	}
	if c.PageSize == 0 {
		c.PageSize = 9
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.DraftTTL == 0 {
		c.DraftTTL = 2 * time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// Validate reports the first missing required setting.
func (c SiteConfig) Validate() error {
	switch {
	case c.AdminPassword == "":
		return errors.New("blockpress: AdminPassword is required")
	case c.SessionSecret == "":
		return errors.New("blockpress: SessionSecret is required")
	case c.APIBaseURL == "":
		return errors.New("blockpress: APIBaseURL is required")
	}
	return nil
}

// View returns the settings templates need.
func (c SiteConfig) View() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
	}
}

// LoadConfig builds a SiteConfig from the YAML file at path (skipped when
// path is empty), overridden by BLOCKPRESS_* environment variables. A .env
// file in the working directory fills variables that are not already set.
// Defaults fill the rest.
func LoadConfig(path string) (SiteConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SiteConfig{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg SiteConfig
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return SiteConfig{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	strs := map[string]*string{
		"BLOCKPRESS_NAME":           &c.Name,
		"BLOCKPRESS_URL":            &c.URL,
		"BLOCKPRESS_DESCRIPTION":    &c.Description,
		"BLOCKPRESS_AUTHOR":         &c.Author,
		"BLOCKPRESS_ADDR":           &c.Addr,
		"BLOCKPRESS_DATABASE_PATH":  &c.DatabasePath,
		"BLOCKPRESS_STATIC_DIR":     &c.StaticDir,
		"BLOCKPRESS_API_URL":        &c.APIBaseURL,
		"BLOCKPRESS_API_TOKEN":      &c.APIToken,
		"BLOCKPRESS_ADMIN_PASSWORD": &c.AdminPassword,
		"BLOCKPRESS_SESSION_SECRET": &c.SessionSecret,
		"BLOCKPRESS_REDIS_URL":      &c.RedisURL,
		"BLOCKPRESS_LOG_LEVEL":      &c.LogLevel,
		"BLOCKPRESS_LOG_FORMAT":     &c.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"BLOCKPRESS_API_TIMEOUT": &c.APITimeout,
		"BLOCKPRESS_CACHE_TTL":   &c.CacheTTL,
		"BLOCKPRESS_DRAFT_TTL":   &c.DraftTTL,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if v := os.Getenv("BLOCKPRESS_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("BLOCKPRESS_PAGE_SIZE: %q is not a positive number", v)
		}
		c.PageSize = n
	}
	if v := os.Getenv("BLOCKPRESS_COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLOCKPRESS_COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	return nil
}
