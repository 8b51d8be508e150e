package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360studio/blockclone/block"
	"github.com/c360studio/blockclone/clone"
)

// Source wraps a clone.Source with read-through caching. Cache failures
// degrade to direct reads; they never fail the job.
//
// Wrap only the read path handed to the materializer and scanner. The
// writer must keep the raw client so its protection checks see fresh
// alias status.
type Source struct {
	inner  clone.Source
	store  *Store
	maxAge time.Duration
	logger *slog.Logger
}

// NewSource creates a caching read-through over inner.
func NewSource(inner clone.Source, store *Store, maxAge time.Duration, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{inner: inner, store: store, maxAge: maxAge, logger: logger}
}

// GetBlock serves a fresh cached snapshot when available, otherwise
// fetches and caches.
func (s *Source) GetBlock(ctx context.Context, id string) (*block.Block, error) {
	if b, ok, err := s.store.GetBlock(ctx, id, s.maxAge); err != nil {
		s.logger.Warn("cache read failed, fetching directly", "block_id", id, "error", err)
	} else if ok {
		return b, nil
	}

	b, err := s.inner.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutBlock(ctx, b); err != nil {
		s.logger.Warn("cache write failed", "block_id", id, "error", err)
	}
	return b, nil
}

// ListChildren serves a fresh cached child list when available,
// otherwise fetches and caches.
func (s *Source) ListChildren(ctx context.Context, id string) ([]block.Block, error) {
	if kids, ok, err := s.store.GetChildren(ctx, id, s.maxAge); err != nil {
		s.logger.Warn("cache read failed, fetching directly", "parent_id", id, "error", err)
	} else if ok {
		return kids, nil
	}

	kids, err := s.inner.ListChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutChildren(ctx, id, kids); err != nil {
		s.logger.Warn("cache write failed", "parent_id", id, "error", err)
	}
	return kids, nil
}

// HasAnyChildren answers from a fresh cached child list when available.
func (s *Source) HasAnyChildren(ctx context.Context, id string) (bool, error) {
	if kids, ok, err := s.store.GetChildren(ctx, id, s.maxAge); err == nil && ok {
		return len(kids) > 0, nil
	}
	return s.inner.HasAnyChildren(ctx, id)
}
