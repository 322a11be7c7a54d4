package monk

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/monk/views"
)

// Config holds all configuration for a monk server.
type Config struct {
	Name        string // Site name (default "monk")
	URL         string // Public base URL (default "http://localhost:3000")
	Description string // Used in page meta and the RSS channel

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/monk.db")
	DatabaseURL  string // Postgres DSN; when set it replaces SQLite

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS
	APIToken      string // Bearer token for writes to /items; empty disables the check

	CacheTTL time.Duration // Article cache TTL (default 1min)
	LogLevel string        // debug, info, warn, error or off (default info)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "monk"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/monk.db"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Site returns the settings the page templates read.
func (c Config) Site() views.SiteConfig {
	return views.SiteConfig{Name: c.Name, URL: c.URL, Description: c.Description}
}

func (c Config) storeName() string {
	if c.DatabaseURL != "" {
		return "postgres"
	}
	return "sqlite " + c.DatabasePath
}

// LoadConfig reads the configuration from the environment. Call
// godotenv.Load first to pick up a .env file.
func LoadConfig() Config {
	ttl, _ := time.ParseDuration(os.Getenv("MONK_CACHE_TTL"))
	secure, _ := strconv.ParseBool(os.Getenv("COOKIE_SECURE"))
	cfg := Config{
		Name:          os.Getenv("MONK_NAME"),
		URL:           os.Getenv("MONK_URL"),
		Description:   EnvOr("MONK_DESCRIPTION", "Articles saved for later."),
		Addr:          os.Getenv("MONK_ADDR"),
		DatabasePath:  os.Getenv("MONK_DB_PATH"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  secure,
		APIToken:      os.Getenv("MONK_API_TOKEN"),
		CacheTTL:      ttl,
		LogLevel:      os.Getenv("MONK_LOG_LEVEL"),
	}
	cfg.setDefaults()
	return cfg
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory served under /public and used for
// cover images (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore uses s instead of opening one from the config.
func WithStore(s ArticleStore) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithViews replaces the page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithTitleFetcher replaces the function that looks up a page title when
// an article is added without one.
func WithTitleFetcher(fn TitleFunc) Option {
	return func(a *App) {
		a.fetchTitle = fn
	}
}
