package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/genricoloni/ytpresence/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// probeVideoID is a long-lived public video used to validate the API key at startup
const probeVideoID = "jNQXAC9IVRw"

// YouTubeCatalog reads video snippets from the YouTube Data API v3
type YouTubeCatalog struct {
	logger  *zap.Logger
	service *youtube.Service
}

// NewYouTubeCatalog creates a catalog client authenticated with the configured API key
func NewYouTubeCatalog(logger *zap.Logger, cfg domain.Config) (*YouTubeCatalog, error) {
	return newYouTubeCatalog(logger, cfg.YouTubeAPIKey())
}

func newYouTubeCatalog(logger *zap.Logger, apiKey string, opts ...option.ClientOption) (*YouTubeCatalog, error) {
	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	service, err := youtube.NewService(context.Background(), clientOpts...)
	if err != nil {
		return nil, domain.Wrap(domain.ErrConfiguration, "catalog", "create youtube client", err)
	}

	return &YouTubeCatalog{
		logger:  logger,
		service: service,
	}, nil
}

// GetItem returns title, channel and thumbnails for a video id
func (c *YouTubeCatalog) GetItem(ctx context.Context, mediaID string) (domain.CatalogItem, error) {
	resp, err := c.service.Videos.List([]string{"snippet"}).Id(mediaID).Context(ctx).Do()
	if err != nil {
		return domain.CatalogItem{}, classifyAPIError("get item "+mediaID, err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return domain.CatalogItem{}, domain.Wrap(domain.ErrNotFound, "catalog", "get item "+mediaID, nil)
	}

	snippet := resp.Items[0].Snippet
	item := domain.CatalogItem{
		Title:      snippet.Title,
		Author:     snippet.ChannelTitle,
		Thumbnails: thumbnailTiers(snippet.Thumbnails),
	}

	c.logger.Debug("Catalog item fetched",
		zap.String("mediaID", mediaID),
		zap.String("title", item.Title),
		zap.String("author", item.Author))
	return item, nil
}

// Probe makes one cheap request to check the API key.
// A rejected key is a configuration error, anything else is transient.
func (c *YouTubeCatalog) Probe(ctx context.Context) error {
	_, err := c.service.Videos.List([]string{"id"}).Id(probeVideoID).Context(ctx).Do()
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return domain.Wrap(domain.ErrConfiguration, "catalog", "probe api key", err)
		}
	}
	return domain.Wrap(domain.ErrTransient, "catalog", "probe api key", err)
}

func classifyAPIError(operation string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return domain.Wrap(domain.ErrNotFound, "catalog", operation, err)
	}
	return domain.Wrap(domain.ErrTransient, "catalog", operation, err)
}

func thumbnailTiers(details *youtube.ThumbnailDetails) map[string]string {
	tiers := make(map[string]string, 5)
	if details == nil {
		return tiers
	}

	add := func(name string, t *youtube.Thumbnail) {
		if t != nil && t.Url != "" {
			tiers[name] = t.Url
		}
	}
	add(TierMaxRes, details.Maxres)
	add(TierStandard, details.Standard)
	add(TierHigh, details.High)
	add(TierMedium, details.Medium)
	add(TierDefault, details.Default)
	return tiers
}
