package browser

import (
	"context"

	"github.com/genricoloni/ytpresence/internal/classifier"
	"github.com/genricoloni/ytpresence/internal/domain"
	"go.uber.org/zap"
)

// Scanner enumerates browser tabs and keeps the ones that show a watch page
type Scanner struct {
	logger     *zap.Logger
	link       domain.BrowserLink
	classifier *classifier.Classifier
}

// NewScanner creates a tab scanner on top of a browser link
func NewScanner(logger *zap.Logger, link domain.BrowserLink, c *classifier.Classifier) *Scanner {
	return &Scanner{
		logger:     logger,
		link:       link,
		classifier: c,
	}
}

// Scan returns recognized media references in browser tab order.
// Tabs that vanish while being read are skipped; only a failure to list tabs is an error.
func (s *Scanner) Scan(ctx context.Context) ([]domain.MediaReference, error) {
	tabs, err := s.link.ListTabs(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.ErrBrowserLink, "scanner", "list tabs", err)
	}

	refs := make([]domain.MediaReference, 0, len(tabs))
	for _, tab := range tabs {
		if err := ctx.Err(); err != nil {
			return refs, err
		}

		rawURL, err := s.link.CurrentURL(ctx, tab)
		if err != nil {
			s.logger.Debug("Skipping unreadable tab",
				zap.String("tab", string(tab)),
				zap.Error(err))
			continue
		}

		ref, ok := s.classifier.Classify(rawURL)
		if !ok {
			continue
		}
		ref.Tab = tab
		refs = append(refs, ref)

		s.logger.Debug("Recognized media tab",
			zap.String("tab", string(tab)),
			zap.String("mediaID", ref.MediaID),
			zap.String("variant", string(ref.Variant)))
	}

	return refs, nil
}
