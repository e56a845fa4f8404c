package api

import (
	"errors"
	"time"

	"sluggo/pkg/render"
)

const (
	defaultTokenTTL     = 12 * time.Hour
	defaultPageSize     = 25
	defaultMaxPageSize  = 100
	attachmentURLExpiry = 15 * time.Minute
	attachmentKeyPrefix = "attachments"
)

// Config controls runtime behaviour for the API handlers.
type Config struct {
	TokenTTL         time.Duration
	PageSize         int
	MaxPageSize      int
	AttachmentBucket string
}

// API wires store dependencies and configuration for the HTTP handlers.
type API struct {
	store    *Store
	config   Config
	tokens   *tokenStore
	renderer *render.Engine
}

// New initialises the API layer with sane defaults applied to the provided
// configuration. The attachment bucket may be empty when no S3 client is
// wired.
func New(store *Store, cfg Config) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}
	if store.DB == nil {
		return nil, errors.New("store DB is required")
	}
	if store.S3 != nil && cfg.AttachmentBucket == "" {
		return nil, errors.New("attachment bucket is required when S3 is configured")
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxPageSize < cfg.PageSize {
		cfg.MaxPageSize = defaultMaxPageSize
	}

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	return &API{
		store:    store,
		config:   cfg,
		tokens:   newTokenStore(cfg.TokenTTL),
		renderer: renderer,
	}, nil
}
