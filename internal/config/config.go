package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/bank"
	"github.com/Veraticus/kantoor/internal/cache"
	"github.com/Veraticus/kantoor/internal/common"
)

// EnvPrefix prefixes every environment variable viper reads.
const EnvPrefix = "KANTOOR"

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Init loads .env, the config file and the environment into the global viper instance.
// A missing default config file is not an error; a missing explicit one is.
func Init(cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(ExpandPath(cfgFile))
	} else {
		viper.AddConfigPath(Dir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// SetDefaults registers the default for every key kantoor reads.
func SetDefaults() {
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("upload.max_bytes", api.DefaultMaxUploadBytes)
	viper.SetDefault("cache.backend", cache.BackendMemory)
	viper.SetDefault("cache.ttl", cache.DefaultTTL)
	viper.SetDefault("cache.path", filepath.Join(Dir(), "cache.db"))
	viper.SetDefault("cache.redis_db", 0)
	viper.SetDefault("review.list_interval", 10*time.Second)
	viper.SetDefault("review.stats_interval", 30*time.Second)
	viper.SetDefault("output.format", OutputTable)
	viper.SetDefault("bank.plaid.environment", bank.PlaidSandbox)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// LoadClientConfig returns the backend connection settings.
func LoadClientConfig() (api.Config, error) {
	cfg := api.Config{
		BaseURL:        viper.GetString("api.base_url"),
		Token:          viper.GetString("api.token"),
		Timeout:        viper.GetDuration("api.timeout"),
		CacheTTL:       viper.GetDuration("cache.ttl"),
		MaxUploadBytes: viper.GetInt64("upload.max_bytes"),
	}

	if cfg.BaseURL == "" {
		return cfg, fmt.Errorf("%w: api.base_url (or %s_API_BASE_URL) is required", common.ErrMissingConfig, EnvPrefix)
	}
	if cfg.Token == "" {
		return cfg, fmt.Errorf("%w: api.token (or %s_API_TOKEN) is required", common.ErrMissingConfig, EnvPrefix)
	}
	if cfg.Timeout < 0 || cfg.MaxUploadBytes < 0 {
		return cfg, fmt.Errorf("%w: api.timeout and upload.max_bytes cannot be negative", common.ErrInvalidConfig)
	}

	return cfg, nil
}

// LoadCacheConfig returns the query cache settings.
func LoadCacheConfig() cache.Config {
	return cache.Config{
		Backend:   strings.ToLower(viper.GetString("cache.backend")),
		Path:      ExpandPath(viper.GetString("cache.path")),
		RedisAddr: viper.GetString("cache.redis_addr"),
		RedisDB:   viper.GetInt("cache.redis_db"),
		TTL:       viper.GetDuration("cache.ttl"),
	}
}

// LoadPlaidConfig returns the Plaid credentials. The access token is optional so the
// link commands can run before one exists.
func LoadPlaidConfig() bank.PlaidConfig {
	return bank.PlaidConfig{
		ClientID:    viper.GetString("bank.plaid.client_id"),
		Secret:      viper.GetString("bank.plaid.secret"),
		Environment: viper.GetString("bank.plaid.environment"),
		AccessToken: viper.GetString("bank.plaid.access_token"),
	}
}

// ReviewIntervals returns how often the review queue refreshes its list and its stats.
func ReviewIntervals() (list, stats time.Duration) {
	list = viper.GetDuration("review.list_interval")
	if list <= 0 {
		list = 10 * time.Second
	}
	stats = viper.GetDuration("review.stats_interval")
	if stats <= 0 {
		stats = 30 * time.Second
	}
	return list, stats
}

// OutputFormat returns the configured output format.
func OutputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output.format"))
	switch format {
	case "", OutputTable:
		return OutputTable, nil
	case OutputJSON, OutputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q (use table, json or yaml)", common.ErrInvalidConfig, format)
	}
}
