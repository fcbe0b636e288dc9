package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/genricoloni/ytpresence/internal/domain"
	"go.uber.org/zap"
)

const (
	maxArtworkSize = 10 * 1024 * 1024 // 10 MB
	userAgent      = "ytpresence/1.0"
)

// ArtworkFetcher downloads thumbnails for notification icons
type ArtworkFetcher struct {
	logger *zap.Logger
	client *http.Client
}

func NewArtworkFetcher(logger *zap.Logger, cfg domain.Config) *ArtworkFetcher {
	return &ArtworkFetcher{
		logger: logger,
		client: &http.Client{Timeout: cfg.CallTimeout()},
	}
}

// Fetch downloads an image. Non-image responses and bodies over the size cap are rejected
func (f *ArtworkFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, domain.Wrap(domain.ErrNotFound, "fetcher", "parse url", fmt.Errorf("unsupported artwork url %q", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.Wrap(domain.ErrTransient, "fetcher", "get", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Wrap(domain.ErrTransient, "fetcher", "get", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, domain.Wrap(domain.ErrNotFound, "fetcher", "get", fmt.Errorf("url is not an image: %s", ct))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtworkSize+1))
	if err != nil {
		return nil, domain.Wrap(domain.ErrTransient, "fetcher", "read body", err)
	}
	if len(data) > maxArtworkSize {
		return nil, domain.Wrap(domain.ErrNotFound, "fetcher", "read body", fmt.Errorf("image larger than %d bytes", maxArtworkSize))
	}

	f.logger.Debug("Artwork fetched", zap.Int("bytes", len(data)), zap.String("url", rawURL))
	return data, nil
}
