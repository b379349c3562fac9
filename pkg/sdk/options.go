package recipeq

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/recipeq/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	db     config.DatabaseConfig
	schema config.SchemaConfig

	maxQueryLength int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMemory keeps recipes in process memory. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverMemory
	})
}

// WithRedis stores recipes in Redis.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverRedis
		c.db.Addrs = []string{addr}
		c.db.Password = password
	})
}

// WithValkey stores recipes in Valkey.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverValkey
		c.db.Addrs = []string{addr}
		c.db.Password = password
	})
}

// WithKeyPrefix namespaces Redis/Valkey keys. Default: "recipeq:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.KeyPrefix = prefix
	})
}

// WithSQLite stores recipes in a SQLite file. Use ":memory:" for a throwaway database.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.db.Driver = config.DriverSQLite
		c.db.Path = path
	})
}

// WithSchema replaces the built-in recipe fields.
// scopes maps each query scope token to its collection; numeric must be a subset of fields.
func WithSchema(scopes map[string]string, fields, numeric []string) Option {
	return optionFunc(func(c *clientConfig) {
		c.schema = config.SchemaConfig{Scopes: scopes, Fields: fields, NumericFields: numeric}
	})
}

// WithMaxQueryLength rejects longer queries as malformed. Default: unlimited.
func WithMaxQueryLength(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxQueryLength = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
