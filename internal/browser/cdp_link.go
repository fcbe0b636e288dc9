package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/genricoloni/ytpresence/internal/domain"
	"go.uber.org/zap"
)

const pageTargetType = "page"

// CDPLink reads tabs of an already running Chromium-based browser through
// its remote debugging endpoint
type CDPLink struct {
	logger   *zap.Logger
	debugURL string

	mu          sync.RWMutex
	browser     *chromedp.Browser
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

// NewCDPLink creates a link for the configured debug endpoint.
// No connection is made until Connect is called.
func NewCDPLink(logger *zap.Logger, cfg domain.Config) *CDPLink {
	return &CDPLink{
		logger:   logger,
		debugURL: cfg.DebugURL(),
	}
}

// Connect attaches to the browser without opening a new tab
func (l *CDPLink) Connect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.browser != nil {
		return nil
	}

	// The browser connection must outlive ctx, which only bounds startup
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(context.Background(), l.debugURL)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	type result struct {
		targets []*target.Info
		err     error
	}
	done := make(chan result, 1)
	go func() {
		// Targets allocates the browser connection but, unlike Run, does not create a tab
		targets, err := chromedp.Targets(browserCtx)
		done <- result{targets, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err != nil {
		cancelCtx()
		cancelAlloc()
		return domain.Wrap(domain.ErrConnection, "browser", fmt.Sprintf("attach to %s", l.debugURL), res.err)
	}

	c := chromedp.FromContext(browserCtx)
	if c == nil || c.Browser == nil {
		cancelCtx()
		cancelAlloc()
		return domain.Wrap(domain.ErrConnection, "browser", "attach", fmt.Errorf("no browser allocated"))
	}

	l.browser = c.Browser
	l.cancelAlloc = cancelAlloc
	l.cancelCtx = cancelCtx

	l.logger.Info("Connected to browser",
		zap.String("endpoint", l.debugURL),
		zap.Int("targets", len(res.targets)))
	return nil
}

// ListTabs returns page targets in the order the browser reports them
func (l *CDPLink) ListTabs(ctx context.Context) ([]domain.TabHandle, error) {
	executor, err := l.executor(ctx)
	if err != nil {
		return nil, err
	}

	infos, err := target.GetTargets().Do(executor)
	if err != nil {
		return nil, domain.Wrap(domain.ErrBrowserLink, "browser", "list targets", err)
	}

	tabs := make([]domain.TabHandle, 0, len(infos))
	for _, info := range infos {
		if info == nil || info.Type != pageTargetType {
			continue
		}
		tabs = append(tabs, domain.TabHandle(info.TargetID))
	}
	return tabs, nil
}

// CurrentURL returns the URL currently loaded in tab
func (l *CDPLink) CurrentURL(ctx context.Context, tab domain.TabHandle) (string, error) {
	executor, err := l.executor(ctx)
	if err != nil {
		return "", err
	}

	info, err := target.GetTargetInfo().WithTargetID(target.ID(tab)).Do(executor)
	if err != nil {
		return "", domain.Wrap(domain.ErrTabUnavailable, "browser", fmt.Sprintf("read tab %s", tab), err)
	}
	if info == nil {
		return "", domain.Wrap(domain.ErrTabUnavailable, "browser", fmt.Sprintf("read tab %s", tab), nil)
	}
	return info.URL, nil
}

// Close drops the debugging connection. The browser itself keeps running.
func (l *CDPLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.browser == nil {
		return nil
	}

	// Only the cancel funcs: chromedp.Cancel would close the user's browser
	l.cancelCtx()
	l.cancelAlloc()
	l.browser = nil
	l.cancelCtx = nil
	l.cancelAlloc = nil

	l.logger.Info("Browser link released")
	return nil
}

func (l *CDPLink) executor(ctx context.Context) (context.Context, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.browser == nil {
		return nil, domain.Wrap(domain.ErrBrowserLink, "browser", "query", fmt.Errorf("not connected"))
	}
	return cdp.WithExecutor(ctx, l.browser), nil
}
