// Package config loads hivegraph settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. the TOML file at $XDG_CONFIG_HOME/hivegraph/config.toml, or the
//     path given with --config
//  3. HIVEGRAPH_* environment variables ([EnvVars] lists them)
//  4. command-line flags, applied by the CLI
//
// A missing default config file is fine; a missing explicit one is not.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// AppName names the XDG subdirectories.
const AppName = "hivegraph"

// Config is the merged configuration.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
}

// CatalogConfig selects the catalog to serve.
type CatalogConfig struct {
	// Path to a TOML catalog. Empty means the built-in HyperHive catalog.
	Path    string `toml:"path"`
	Lenient bool   `toml:"lenient"`
}

type ServerConfig struct {
	Addr        string        `toml:"addr" validate:"required,hostname_port"`
	ReadTimeout time.Duration `toml:"read_timeout" validate:"gte=0"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `toml:"rate_limit" validate:"gte=0"`
	Burst     int     `toml:"burst" validate:"gte=0"`
	Watch     bool    `toml:"watch"`
}

type CacheConfig struct {
	Backend       string        `toml:"backend" validate:"oneof=none file redis"`
	Dir           string        `toml:"dir" validate:"required_if=Backend file"`
	RedisAddr     string        `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db" validate:"gte=0,lte=15"`
	Prefix        string        `toml:"prefix"`
	TTL           time.Duration `toml:"ttl" validate:"gte=0"`
}

type StoreConfig struct {
	Backend    string `toml:"backend" validate:"oneof=file mongo badger"`
	Dir        string `toml:"dir" validate:"required_unless=Backend mongo"`
	MongoURI   string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			ReadTimeout: 10 * time.Second,
			RateLimit:   20,
			Burst:       40,
		},
		Cache: CacheConfig{
			Backend: "file",
			Dir:     filepath.Join(CacheHome(), AppName),
			Prefix:  AppName + ":",
			TTL:     7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Backend:    "file",
			Dir:        filepath.Join(DataHome(), AppName, "catalogs"),
			Database:   AppName,
			Collection: "catalogs",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path means [DefaultPath], which may be absent.
// lookup is normally os.LookupEnv.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.decodeFile(path); err != nil {
		switch {
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, err
		case explicit:
			return Config{}, herrors.Wrap(herrors.ErrCodeInvalidConfig, err, "config file")
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return err
		}
		return herrors.Wrap(herrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return herrors.New(herrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return herrors.Wrap(herrors.ErrCodeInvalidConfig, err, "validate config")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describe(fe)
	}
	return herrors.New(herrors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(msgs, "; "))
}

// describe renders a field error using the TOML key, e.g. "cache.backend".
func describe(fe validator.FieldError) string {
	key := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", key)
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got %q", key, fe.Value())
	}
	return fmt.Sprintf("%s fails %s=%s", key, fe.Tag(), fe.Param())
}

// =============================================================================
// Environment
// =============================================================================

type envVar struct {
	name  string
	apply func(c *Config, v string) error
}

var envVars = []envVar{
	{"HIVEGRAPH_CATALOG_PATH", func(c *Config, v string) error { c.Catalog.Path = v; return nil }},
	{"HIVEGRAPH_CATALOG_LENIENT", func(c *Config, v string) error { return setBool(&c.Catalog.Lenient, v) }},
	{"HIVEGRAPH_SERVER_ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"HIVEGRAPH_SERVER_RATE_LIMIT", func(c *Config, v string) error { return setFloat(&c.Server.RateLimit, v) }},
	{"HIVEGRAPH_SERVER_WATCH", func(c *Config, v string) error { return setBool(&c.Server.Watch, v) }},
	{"HIVEGRAPH_CACHE_BACKEND", func(c *Config, v string) error { c.Cache.Backend = v; return nil }},
	{"HIVEGRAPH_CACHE_DIR", func(c *Config, v string) error { c.Cache.Dir = v; return nil }},
	{"HIVEGRAPH_CACHE_REDIS_ADDR", func(c *Config, v string) error { c.Cache.RedisAddr = v; return nil }},
	{"HIVEGRAPH_CACHE_REDIS_PASSWORD", func(c *Config, v string) error { c.Cache.RedisPassword = v; return nil }},
	{"HIVEGRAPH_CACHE_TTL", func(c *Config, v string) error { return setDuration(&c.Cache.TTL, v) }},
	{"HIVEGRAPH_STORE_BACKEND", func(c *Config, v string) error { c.Store.Backend = v; return nil }},
	{"HIVEGRAPH_STORE_DIR", func(c *Config, v string) error { c.Store.Dir = v; return nil }},
	{"HIVEGRAPH_STORE_MONGO_URI", func(c *Config, v string) error { c.Store.MongoURI = v; return nil }},
	{"HIVEGRAPH_LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil }},
}

// EnvVars returns the names of the recognized environment variables.
func EnvVars() []string {
	names := make([]string, len(envVars))
	for i, e := range envVars {
		names[i] = e.name
	}
	return names
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	for _, e := range envVars {
		v, ok := lookup(e.name)
		if !ok {
			continue
		}
		if err := e.apply(c, v); err != nil {
			return herrors.Wrap(herrors.ErrCodeInvalidConfig, err, "%s", e.name)
		}
	}
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func setFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath is $XDG_CONFIG_HOME/hivegraph/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg("XDG_CONFIG_HOME", ".config"), AppName, "config.toml")
}

// CacheHome is $XDG_CACHE_HOME, defaulting to ~/.cache.
func CacheHome() string { return xdg("XDG_CACHE_HOME", ".cache") }

// DataHome is $XDG_DATA_HOME, defaulting to ~/.local/share.
func DataHome() string { return xdg("XDG_DATA_HOME", filepath.Join(".local", "share")) }

func xdg(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), fallback)
	}
	return filepath.Join(home, fallback)
}
