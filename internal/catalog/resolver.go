package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/genricoloni/ytpresence/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Thumbnail tier names as reported by the catalog
const (
	TierMaxRes   = "maxres"
	TierStandard = "standard"
	TierHigh     = "high"
	TierMedium   = "medium"
	TierDefault  = "default"
)

// artworkTiers is the artwork preference order, highest resolution first
var artworkTiers = []string{TierMaxRes, TierStandard, TierHigh, TierMedium, TierDefault}

// Resolver turns media ids into presence-ready metadata
type Resolver struct {
	logger  *zap.Logger
	catalog domain.Catalog
	cache   *lru.Cache[string, domain.MediaMetadata] // nil when caching is disabled
}

// NewResolver creates a resolver with an optional bounded cache of successful lookups
func NewResolver(logger *zap.Logger, catalog domain.Catalog, cfg domain.Config) (*Resolver, error) {
	r := &Resolver{
		logger:  logger,
		catalog: catalog,
	}

	if size := cfg.CacheSize(); size > 0 {
		cache, err := lru.New[string, domain.MediaMetadata](size)
		if err != nil {
			return nil, fmt.Errorf("failed to create metadata cache: %w", err)
		}
		r.cache = cache
	}

	return r, nil
}

// Resolve returns normalized metadata for mediaID.
// Errors carry either ErrNotFound or ErrTransient.
func (r *Resolver) Resolve(ctx context.Context, mediaID string) (domain.MediaMetadata, error) {
	if r.cache != nil {
		if meta, ok := r.cache.Get(mediaID); ok {
			r.logger.Debug("Metadata cache hit", zap.String("mediaID", mediaID))
			return meta, nil
		}
	}

	item, err := r.catalog.GetItem(ctx, mediaID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrTransient) {
			return domain.MediaMetadata{}, err
		}
		return domain.MediaMetadata{}, domain.Wrap(domain.ErrTransient, "resolver", "get item "+mediaID, err)
	}

	meta := domain.MediaMetadata{
		MediaID:    mediaID,
		Title:      item.Title,
		Author:     item.Author,
		ArtworkURL: SelectArtwork(item.Thumbnails),
	}

	if r.cache != nil {
		r.cache.Add(mediaID, meta)
	}

	r.logger.Info("Metadata resolved",
		zap.String("mediaID", mediaID),
		zap.String("title", meta.Title),
		zap.String("author", meta.Author))
	return meta, nil
}

// SelectArtwork picks the first available tier in preference order.
// It returns an empty string when no tier has a URL.
func SelectArtwork(thumbnails map[string]string) string {
	for _, tier := range artworkTiers {
		if url := thumbnails[tier]; url != "" {
			return url
		}
	}
	return ""
}
