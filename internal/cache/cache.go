// Package cache implements the keyed query cache that sits in front of the backend API.
//
// Keys have the form "<resource>:<path>?<query>" so that a mutation on a resource can drop
// every cached read of that resource with a single prefix invalidation.
package cache

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/service"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 30 * time.Second

// Config selects and configures a cache backend.
type Config struct {
	Backend   string
	Path      string
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
}

// New builds the store named by cfg.Backend. It returns nil for BackendNone.
func New(cfg Config) (service.QueryCache, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: cache.path is required for sqlite", common.ErrMissingConfig)
		}
		return NewSQLite(cfg.Path)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("%w: cache.redis_addr is required for redis", common.ErrMissingConfig)
		}
		return NewRedis(cfg.RedisAddr, cfg.RedisDB), nil
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", common.ErrInvalidConfig, cfg.Backend)
	}
}

// Key builds the cache key for a GET of path with query parameters.
// Query parameters are encoded in sorted order so equivalent requests share a key.
func Key(path string, query url.Values) string {
	key := Resource(path) + ":" + path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	return key
}

// Resource returns the resource segment of an API path: "/api/documents/3/" -> "documents".
func Resource(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 1 && parts[0] == "api" {
		return parts[1]
	}
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}

// related lists resources whose reads depend on another resource's writes.
var related = map[string][]string{
	"expenses":       {"revenue"},
	"invoice-import": {"expenses", "revenue", "email-import"},
	"email-import":   {"invoice-import"},
}

// Prefixes returns the key prefixes to invalidate after a mutation of path.
func Prefixes(path string) []string {
	resource := Resource(path)
	prefixes := []string{resource + ":"}
	for _, dep := range related[resource] {
		prefixes = append(prefixes, dep+":")
	}
	return prefixes
}
