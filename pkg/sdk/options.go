package sdk

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string

	country   string
	keyPrefix string

	embedder   Embedder
	dimensions int

	minSimilarity float64
	maxCandidates int
	pageSize      int

	backfillWorkers int
	backfillBatch   int
	lazyLimit       int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithUsername sets the Redis ACL username.
func WithUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithCountry fixes the tenant scope for all client operations. Required:
// the embedded client bypasses token resolution, so the scope must be
// supplied by the host application.
func WithCountry(country string) Option {
	return optionFunc(func(c *clientConfig) {
		c.country = country
	})
}

// WithKeyPrefix sets the storage key prefix. Default: "assessd:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEmbedder sets the text embedding provider. Without it, lexical search
// still works but semantic search and backfill return errors.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDimensions sets the embedding vector dimension. Default: 384.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithSearchTuning overrides the similarity floor, the KNN candidate budget
// and the results page size. Zero values keep the defaults (0.1, 100, 5).
func WithSearchTuning(minSimilarity float64, maxCandidates, pageSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minSimilarity = minSimilarity
		c.maxCandidates = maxCandidates
		c.pageSize = pageSize
	})
}

// WithBackfill overrides backfill concurrency and batch limits.
// Zero values keep the defaults (4 workers, batch 100, lazy limit 20).
func WithBackfill(workers, batchSize, lazyLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.backfillWorkers = workers
		c.backfillBatch = batchSize
		c.lazyLimit = lazyLimit
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
