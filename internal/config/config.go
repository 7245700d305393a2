package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Driver names.
const (
	BackendSolr  = "solr"
	BackendBleve = "bleve"

	StoreRedis  = "redis"
	StoreValkey = "valkey"
	StoreSQLite = "sqlite"
)

// Config holds the sitesearch configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Backend BackendConfig `yaml:"backend"`
	Store   StoreConfig   `yaml:"store"`
	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
	Speller SpellerConfig `yaml:"speller"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string        `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  LogFileConfig `yaml:"file"`
}

// LogFileConfig enables a rotated log file. Empty filename disables it.
type LogFileConfig struct {
	Filename   string `yaml:"filename"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// BackendConfig selects and configures the search backend.
type BackendConfig struct {
	Driver string      `yaml:"driver"` // solr (default), bleve
	Solr   SolrConfig  `yaml:"solr"`
	Bleve  BleveConfig `yaml:"bleve"`
}

// SolrConfig holds Solr connection settings.
type SolrConfig struct {
	URL        string `yaml:"url"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
}

// Timeout returns the request timeout as a duration.
func (s SolrConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// BleveConfig holds embedded index settings.
type BleveConfig struct {
	Path string `yaml:"path"` // empty keeps indexes in memory
}

// StoreConfig selects and configures the site configuration store.
type StoreConfig struct {
	Driver           string   `yaml:"driver"` // valkey (default), redis, sqlite
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	SQLitePath       string   `yaml:"sqlite_path"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IsKeyValue reports whether the driver is a Redis-protocol server.
func (s StoreConfig) IsKeyValue() bool {
	return s.Driver == StoreRedis || s.Driver == StoreValkey
}

// CacheConfig holds in-process and shared cache settings.
type CacheConfig struct {
	SiteSize       int `yaml:"site_size"`
	SiteTTLSec     int `yaml:"site_ttl_sec"`
	ResponseTTLSec int `yaml:"response_ttl_sec"` // 0 disables the response cache
	// PurgeIntervalSec is how often expired responses are removed from a
	// sqlite store. Redis-protocol stores expire keys themselves.
	PurgeIntervalSec int `yaml:"purge_interval_sec"`
}

// SiteTTL returns the site cache TTL as a duration.
func (c CacheConfig) SiteTTL() time.Duration {
	return time.Duration(c.SiteTTLSec) * time.Second
}

// PurgeInterval returns the sqlite purge interval as a duration.
func (c CacheConfig) PurgeInterval() time.Duration {
	return time.Duration(c.PurgeIntervalSec) * time.Second
}

// ResponseTTL returns the response cache TTL as a duration.
func (c CacheConfig) ResponseTTL() time.Duration {
	return time.Duration(c.ResponseTTLSec) * time.Second
}

// SpellerConfig holds the OpenAI-compatible spell corrector settings.
// An empty API key disables it.
type SpellerConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Enabled reports whether a speller should be wired.
func (s SpellerConfig) Enabled() bool { return s.APIKey != "" }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document. ${VAR} and
// ${VAR:-default} references are substituted first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from SITESEARCH_ENV, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("SITESEARCH_ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 2700
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Backend.Driver == "" {
		c.Backend.Driver = BackendSolr
	}
	if c.Backend.Solr.TimeoutSec <= 0 {
		c.Backend.Solr.TimeoutSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreValkey
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Store.Driver == StoreSQLite && c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "sitesearch.db"
	}
	if c.Cache.SiteSize <= 0 {
		c.Cache.SiteSize = 256
	}
	if c.Cache.SiteTTLSec <= 0 {
		c.Cache.SiteTTLSec = 60
	}
	if c.Cache.PurgeIntervalSec <= 0 {
		c.Cache.PurgeIntervalSec = 300
	}
	if c.Logging.File.Filename != "" {
		if c.Logging.File.MaxSizeMB <= 0 {
			c.Logging.File.MaxSizeMB = 100
		}
		if c.Logging.File.MaxBackups <= 0 {
			c.Logging.File.MaxBackups = 5
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Backend.Driver {
	case BackendSolr:
		if c.Backend.Solr.URL == "" {
			return fmt.Errorf("backend.solr.url is required for the solr driver")
		}
	case BackendBleve:
	default:
		return fmt.Errorf("backend.driver must be %q or %q, got %q", BackendSolr, BackendBleve, c.Backend.Driver)
	}

	switch c.Store.Driver {
	case StoreRedis, StoreValkey:
		if len(c.Store.Addrs) == 0 {
			return fmt.Errorf("store.addrs is required for the %s driver", c.Store.Driver)
		}
	case StoreSQLite:
	default:
		return fmt.Errorf("store.driver must be one of redis, valkey, sqlite, got %q", c.Store.Driver)
	}

	if c.Cache.ResponseTTLSec < 0 {
		return fmt.Errorf("cache.response_ttl_sec must not be negative")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
