package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/genricoloni/ytpresence/internal/domain"
	"go.uber.org/zap"
)

const (
	appName       = "ytpresence"
	displayTimeMS = 5000
)

// DesktopNotifier shows a "now playing" notification with the artwork as icon.
// Each notification replaces the previous one. With no bus it does nothing.
type DesktopNotifier struct {
	logger    *zap.Logger
	bus       Bus
	fetcher   domain.Fetcher
	processor domain.ImageProcessor

	mu     sync.Mutex
	lastID uint32
}

// New connects to the session bus when notifications are enabled.
// A missing bus only disables notifications.
func New(logger *zap.Logger, cfg domain.Config, fetcher domain.Fetcher, processor domain.ImageProcessor) *DesktopNotifier {
	n := &DesktopNotifier{logger: logger, fetcher: fetcher, processor: processor}
	if !cfg.NotifyEnabled() {
		return n
	}

	bus, err := NewSessionBus()
	if err != nil {
		logger.Warn("Session bus unavailable, notifications disabled", zap.Error(err))
		return n
	}
	n.bus = bus
	return n
}

func (n *DesktopNotifier) Notify(ctx context.Context, meta domain.MediaMetadata, variant domain.Variant) error {
	if n.bus == nil {
		return nil
	}

	summary := "Now watching"
	if variant == domain.VariantAudio {
		summary = "Now listening"
	}

	msg := Message{
		AppName:   appName,
		Icon:      n.icon(ctx, meta.ArtworkURL),
		Summary:   summary,
		Body:      fmt.Sprintf("%s\nby %s", meta.Title, meta.Author),
		TimeoutMS: displayTimeMS,
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	msg.ReplacesID = n.lastID
	id, err := n.bus.Notify(ctx, msg)
	if err != nil {
		return fmt.Errorf("notify failed: %w", err)
	}
	n.lastID = id
	return nil
}

// icon returns a local icon path, or "" when the artwork cannot be used
func (n *DesktopNotifier) icon(ctx context.Context, artworkURL string) string {
	if artworkURL == "" {
		return ""
	}

	data, err := n.fetcher.Fetch(ctx, artworkURL)
	if err != nil {
		n.logger.Debug("Artwork download failed", zap.String("url", artworkURL), zap.Error(err))
		return ""
	}

	path, err := n.processor.Generate(ctx, data, artworkURL)
	if err != nil {
		n.logger.Debug("Icon generation failed", zap.Error(err))
		return ""
	}
	return path
}

// Close releases the bus connection
func (n *DesktopNotifier) Close() error {
	if n.bus == nil {
		return nil
	}
	return n.bus.Close()
}
