// Package config provides environment-driven configuration for rosterdesk.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rosterdesk/rosterdesk/internal/models"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values. The entity catalog
// is served either from Postgres (DATABASE_URL) or proxied from an
// upstream catalog service (CATALOG_URL); exactly one must be set.
type Config struct {
	DatabaseURL  Secret
	CatalogURL   string
	CatalogToken Secret

	Port        string
	ListenHost  string
	CORSOrigins []string
	LogLevel    string

	LookupTimeout    time.Duration
	BatchConcurrency int
	CacheTTL         time.Duration
	EvictionInterval time.Duration
	PreloadPageSize  int
	VirtualTypes     []models.EntityType

	DBMaxConns int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:  Secret(envOrDefault("DATABASE_URL", "")),
		CatalogURL:   envOrDefault("CATALOG_URL", ""),
		CatalogToken: Secret(envOrDefault("CATALOG_TOKEN", "")),
		Port:         envOrDefault("PORT", "3040"),
		ListenHost:   envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
	}

	timeoutMS, err := strconv.Atoi(envOrDefault("RESOLVE_TIMEOUT_MS", "3000"))
	if err != nil || timeoutMS < 100 || timeoutMS > 60000 {
		return nil, fmt.Errorf("RESOLVE_TIMEOUT_MS must be an integer between 100 and 60000")
	}
	cfg.LookupTimeout = time.Duration(timeoutMS) * time.Millisecond

	concurrency, err := strconv.Atoi(envOrDefault("BATCH_CONCURRENCY", "8"))
	if err != nil || concurrency < 1 || concurrency > 64 {
		return nil, fmt.Errorf("BATCH_CONCURRENCY must be an integer between 1 and 64")
	}
	cfg.BatchConcurrency = concurrency

	ttlSeconds, err := strconv.Atoi(envOrDefault("CACHE_TTL_SECONDS", "0"))
	if err != nil || ttlSeconds < 0 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must be a non-negative integer")
	}
	cfg.CacheTTL = time.Duration(ttlSeconds) * time.Second

	evictSeconds, err := strconv.Atoi(envOrDefault("CACHE_EVICTION_SECONDS", "60"))
	if err != nil || evictSeconds < 1 {
		return nil, fmt.Errorf("CACHE_EVICTION_SECONDS must be a positive integer")
	}
	cfg.EvictionInterval = time.Duration(evictSeconds) * time.Second

	pageSize, err := strconv.Atoi(envOrDefault("PRELOAD_PAGE_SIZE", "200"))
	if err != nil || pageSize < 1 || pageSize > 1000 {
		return nil, fmt.Errorf("PRELOAD_PAGE_SIZE must be an integer between 1 and 1000")
	}
	cfg.PreloadPageSize = pageSize

	maxConns, err := strconv.Atoi(envOrDefault("DB_MAX_CONNS", "10"))
	if err != nil || maxConns < 1 || maxConns > 100 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 1 and 100")
	}
	cfg.DBMaxConns = maxConns

	for _, raw := range strings.Split(envOrDefault("VIRTUAL_ENTITY_TYPES", "brand,stadium"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		cfg.VirtualTypes = append(cfg.VirtualTypes, models.EntityType(raw))
	}

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// RemoteCatalog reports whether the catalog is served from an upstream
// service rather than from Postgres.
func (c *Config) RemoteCatalog() bool {
	return c.CatalogURL != ""
}

func (c *Config) validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}

	if err := c.validateNetwork(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	return c.validateVirtualTypes()
}

func (c *Config) validateCatalog() error {
	hasDB := c.DatabaseURL.Value() != ""
	hasRemote := c.CatalogURL != ""

	if hasDB == hasRemote {
		return fmt.Errorf("exactly one of DATABASE_URL and CATALOG_URL must be set")
	}

	if hasRemote {
		u, err := url.ParseRequestURI(c.CatalogURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("CATALOG_URL is not a valid URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("CATALOG_URL scheme must be http:// or https://")
		}
		if u.Scheme == "http" && !isLocalhost(c.CatalogURL) {
			return fmt.Errorf("CATALOG_URL must use HTTPS for non-localhost connections")
		}

		return nil
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres:// or postgresql://")
	}

	if dbURL.Hostname() == "" {
		return fmt.Errorf("DATABASE_URL must include a host")
	}

	dbHost := dbURL.Hostname()
	if dbHost != "localhost" && dbHost != "127.0.0.1" && dbHost != "::1" {
		sslmode := dbURL.Query().Get("sslmode")
		if sslmode == "disable" {
			return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", dbHost)
		}
	}

	return nil
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Validate LISTEN_HOST is a loopback address to prevent accidental external exposure.
	if c.ListenHost != "127.0.0.1" && c.ListenHost != "::1" && c.ListenHost != "localhost" && c.ListenHost != "0.0.0.0" {
		return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0, got %q", c.ListenHost)
	}

	return nil
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

func (c *Config) validateVirtualTypes() error {
	for _, t := range c.VirtualTypes {
		if !models.IsKnownEntityType(t) {
			return fmt.Errorf("VIRTUAL_ENTITY_TYPES contains unknown entity type %q", t)
		}
	}

	return nil
}

// isLocalhost returns true if the given address points to a loopback address.
func isLocalhost(addr string) bool {
	u, err := url.Parse(addr)
	if err != nil {
		return false
	}

	host := u.Hostname()

	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
