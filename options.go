package sitesearch

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	backend   string
	solrURL   string
	solrUser  string
	solrPass  string
	timeout   time.Duration
	blevePath string

	store      string
	addrs      []string
	password   string
	sqlitePath string

	siteCacheSize int
	siteCacheTTL  time.Duration
	responseTTL   time.Duration

	spellerKey   string
	spellerModel string
	spellerURL   string

	logger *zap.Logger
}

// WithSolr searches a Solr server at baseURL.
func WithSolr(baseURL string) Option {
	return func(c *clientConfig) {
		c.backend = backendSolr
		c.solrURL = baseURL
	}
}

// WithSolrAuth sets HTTP basic credentials for Solr.
func WithSolrAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.solrUser = username
		c.solrPass = password
	}
}

// WithTimeout bounds every Solr request.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithBleve searches embedded bleve indexes stored under dir.
func WithBleve(dir string) Option {
	return func(c *clientConfig) {
		c.backend = backendBleve
		c.blevePath = dir
	}
}

// WithRedis keeps site definitions (and cached responses) in Redis.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.store = storeRedis
		c.addrs = addrs
	}
}

// WithValkey keeps site definitions (and cached responses) in Valkey.
func WithValkey(addrs ...string) Option {
	return func(c *clientConfig) {
		c.store = storeValkey
		c.addrs = addrs
	}
}

// WithPassword sets the Redis/Valkey password.
func WithPassword(password string) Option {
	return func(c *clientConfig) { c.password = password }
}

// WithSQLite keeps site definitions in a SQLite file.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.store = storeSQLite
		c.sqlitePath = path
	}
}

// WithSiteCache sizes the in-memory site cache.
func WithSiteCache(size int, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.siteCacheSize = size
		c.siteCacheTTL = ttl
	}
}

// WithResponseCache caches assembled backend responses in the store for ttl.
func WithResponseCache(ttl time.Duration) Option {
	return func(c *clientConfig) { c.responseTTL = ttl }
}

// WithSpeller enables the OpenAI-compatible spell corrector. An empty model
// uses the default one; baseURL may be empty for api.openai.com.
func WithSpeller(apiKey, model, baseURL string) Option {
	return func(c *clientConfig) {
		c.spellerKey = apiKey
		c.spellerModel = model
		c.spellerURL = baseURL
	}
}

// WithLogger sets the logger used by the response cache and the speller.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
