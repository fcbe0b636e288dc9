package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/genricoloni/ytpresence/internal/domain"
	"go.uber.org/zap"
)

// Outcome reports what a single reconcile cycle did
type Outcome int

const (
	OutcomeNoTabs Outcome = iota
	OutcomeUnchanged
	OutcomeScanFailed
	OutcomeResolveFailed
	OutcomePublishFailed
	OutcomePublished
	OutcomePanicked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoTabs:
		return "no_tabs"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeScanFailed:
		return "scan_failed"
	case OutcomeResolveFailed:
		return "resolve_failed"
	case OutcomePublishFailed:
		return "publish_failed"
	case OutcomePublished:
		return "published"
	case OutcomePanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// LoopState is the media id last pushed to the presence service.
// The zero value is Idle.
type LoopState struct {
	mediaID string
}

// Tracking returns the published id, or false while Idle
func (s LoopState) Tracking() (string, bool) {
	return s.mediaID, s.mediaID != ""
}

// Engine polls the browser, and resolves and publishes only when the top tab changes.
// Cycles never overlap, so at most one publish is in flight.
type Engine struct {
	logger    *zap.Logger
	scanner   domain.TabScanner
	resolver  domain.Resolver
	publisher domain.Publisher
	notifier  domain.Notifier

	interval    time.Duration
	callTimeout time.Duration

	mu    sync.Mutex
	state LoopState

	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a new reconciliation engine
func NewEngine(
	logger *zap.Logger,
	cfg domain.Config,
	scanner domain.TabScanner,
	resolver domain.Resolver,
	publisher domain.Publisher,
	notifier domain.Notifier,
) *Engine {
	return &Engine{
		logger:      logger,
		scanner:     scanner,
		resolver:    resolver,
		publisher:   publisher,
		notifier:    notifier,
		interval:    cfg.PollInterval(),
		callTimeout: cfg.CallTimeout(),
	}
}

// Start launches the polling loop in a goroutine.
// It returns immediately (non-blocking).
func (e *Engine) Start(context.Context) error {
	e.logger.Info("Engine starting...", zap.Duration("interval", e.interval))

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.runLoop(ctx)
	return nil
}

// runLoop runs one cycle right away, then one per interval measured from the end of the previous cycle
func (e *Engine) runLoop(ctx context.Context) {
	defer close(e.done)

	e.Reconcile(ctx)

	timer := time.NewTimer(e.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return
		case <-timer.C:
			e.Reconcile(ctx)
			timer.Reset(e.interval)
		}
	}
}

// Reconcile runs one scan → resolve → publish cycle. Every failure is logged
// and leaves the state untouched so the next cycle retries.
func (e *Engine) Reconcile(ctx context.Context) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Reconcile cycle panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
			outcome = OutcomePanicked
		}
	}()

	scanCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	refs, err := e.scanner.Scan(scanCtx)
	cancel()
	if err != nil {
		e.logger.Warn("Tab scan failed", zap.Error(err))
		return OutcomeScanFailed
	}
	if len(refs) == 0 {
		e.logger.Debug("No recognized tabs")
		return OutcomeNoTabs
	}

	// first in enumeration order wins
	top := refs[0]
	if len(refs) > 1 {
		e.logger.Debug("Several recognized tabs open, using the first",
			zap.Int("count", len(refs)),
			zap.String("mediaID", top.MediaID))
	}

	if current, ok := e.Current(); ok && current == top.MediaID {
		return OutcomeUnchanged
	}

	resolveCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	meta, err := e.resolver.Resolve(resolveCtx, top.MediaID)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.logger.Info("Media not in catalog, skipping", zap.String("mediaID", top.MediaID))
		} else {
			e.logger.Warn("Metadata lookup failed", zap.String("mediaID", top.MediaID), zap.Error(err))
		}
		return OutcomeResolveFailed
	}

	publishCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	err = e.publisher.Publish(publishCtx, meta, top.Variant)
	cancel()
	if err != nil {
		e.logger.Warn("Presence update failed", zap.String("mediaID", top.MediaID), zap.Error(err))
		return OutcomePublishFailed
	}

	e.mu.Lock()
	e.state = LoopState{mediaID: top.MediaID}
	e.mu.Unlock()

	e.logger.Info("Presence updated",
		zap.String("mediaID", meta.MediaID),
		zap.String("variant", string(top.Variant)),
		zap.String("title", meta.Title),
		zap.String("author", meta.Author))

	if e.notifier != nil {
		notifyCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		if err := e.notifier.Notify(notifyCtx, meta, top.Variant); err != nil {
			e.logger.Debug("Notification failed", zap.Error(err))
		}
		cancel()
	}

	return OutcomePublished
}

// Current returns the media id currently shown, or false while Idle
func (e *Engine) Current() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Tracking()
}

// Stop cancels the loop and waits for the in-flight cycle to return
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")
	if e.cancel == nil {
		return nil
	}
	e.cancel()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine did not stop in time")
		return ctx.Err()
	}
}
