package core

import (
	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/embedder"
	openaiEmbedder "github.com/memvault/memvault-go/pkg/embedder/openai"
)

// Client is the memvault maintenance client.
//
// It exposes the mutating operations (create, rename, move, promote, archive,
// prune, reindex, delete) and the reconciliation operation (Sync) that keep a
// scope root's four stores (record files, graph.json, index.json,
// embeddings.json) consistent.
//
// Design contract: the record file is ground truth and is mutated first;
// graph, index, and embedding updates are best-effort and independently
// wrapped, so one store's failure never blocks another. Failed secondary
// updates surface as false/zero fields in the operation's Changes and as Warn
// logs; Sync repairs the drift afterwards.
//
// There is no locking. Callers run operations serially per scope root and run
// Sync periodically to repair interleavings or crashes.
type Client struct {
	// logger records best-effort failures that are not escalated.
	logger *zap.Logger

	// embedder is the optional vector provider (nil when not configured).
	embedder embedder.Provider
}

// NewClient creates a memvault client from a configuration.
//
// An embedding provider is constructed only when cfg.Embedder.Provider names
// one; every operation works without it. Logging is disabled when
// cfg.LogLevel is empty.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return nil, NewMemoryError("NewClient", err)
	}

	provider, err := initEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	return &Client{logger: logger, embedder: provider}, nil
}

// NewClientWithLogger creates a client with a caller-supplied logger,
// overriding cfg.LogLevel.
func NewClientWithLogger(cfg *Config, logger *zap.Logger) (*Client, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return c, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	if c.embedder != nil {
		return c.embedder.Close()
	}
	return nil
}

// buildLogger constructs the client logger for a level string.
func buildLogger(level string) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// initEmbedder constructs the configured embedding provider, or nil when
// embedding is disabled.
func initEmbedder(cfg EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "openai":
		return openaiEmbedder.NewClient(&openaiEmbedder.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, NewMemoryError("initEmbedder", ErrInvalidConfig)
	}
}
