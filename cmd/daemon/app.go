package main

import (
	"context"
	"errors"

	"github.com/genricoloni/ytpresence/internal/browser"
	"github.com/genricoloni/ytpresence/internal/catalog"
	"github.com/genricoloni/ytpresence/internal/classifier"
	"github.com/genricoloni/ytpresence/internal/config"
	"github.com/genricoloni/ytpresence/internal/domain"
	"github.com/genricoloni/ytpresence/internal/engine"
	"github.com/genricoloni/ytpresence/internal/fetcher"
	"github.com/genricoloni/ytpresence/internal/notifier"
	"github.com/genricoloni/ytpresence/internal/presence"
	"github.com/genricoloni/ytpresence/internal/processor"
	"github.com/genricoloni/ytpresence/internal/runlock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// runOptions carries the command line flags into the graph
type runOptions struct {
	ConfigPath string
	Verbose    bool
}

// AppOptions is the full dependency graph of the daemon
func AppOptions(opts runOptions) fx.Option {
	return fx.Options(
		fx.Supply(opts),
		fx.Provide(
			newLogger,
			newConfig,
			classifier.NewFromConfig,
			fx.Annotate(browser.NewCDPLink, fx.As(new(domain.BrowserLink))),
			fx.Annotate(browser.NewScanner, fx.As(new(domain.TabScanner))),
			catalog.NewYouTubeCatalog,
			func(c *catalog.YouTubeCatalog) domain.Catalog { return c },
			fx.Annotate(catalog.NewResolver, fx.As(new(domain.Resolver))),
			fx.Annotate(presence.NewIPCClient, fx.As(new(domain.PresenceService))),
			presence.NewPublisher,
			func(p *presence.Publisher) domain.Publisher { return p },
			fx.Annotate(fetcher.NewArtworkFetcher, fx.As(new(domain.Fetcher))),
			fx.Annotate(processor.NewIconProcessor, fx.As(new(domain.ImageProcessor))),
			notifier.New,
			func(n *notifier.DesktopNotifier) domain.Notifier { return n },
			runlock.New,
			engine.NewEngine,
		),
		fx.Invoke(registerHooks),
	)
}

// newLogger creates the process logger, with debug output when verbose
func newLogger(opts runOptions) (*zap.Logger, error) {
	if opts.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newConfig(logger *zap.Logger, opts runOptions) (domain.Config, error) {
	cfg, err := config.Load(logger, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

type hookParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.Logger
	Config    domain.Config
	Lock      *runlock.Lock
	Browser   domain.BrowserLink
	Catalog   *catalog.YouTubeCatalog
	Presence  domain.PresenceService
	Publisher *presence.Publisher
	Notifier  *notifier.DesktopNotifier
	Engine    *engine.Engine
}

// registerHooks wires startup and shutdown. fx runs OnStop hooks in reverse,
// so the loop stops before its collaborators are released.
func registerHooks(p hookParams) {
	timeout := p.Config.CallTimeout()

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return p.Lock.Acquire()
		},
		OnStop: func(context.Context) error {
			return p.Lock.Release()
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return p.Browser.Connect(ctx)
		},
		OnStop: func(context.Context) error {
			p.Logger.Info("Releasing browser link")
			return p.Browser.Close()
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			err := p.Catalog.Probe(ctx)
			if errors.Is(err, domain.ErrConfiguration) {
				return err
			}
			if err != nil {
				p.Logger.Warn("Catalog probe failed, continuing", zap.Error(err))
			}
			return nil
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return p.Presence.Connect(ctx)
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Clearing presence")
			return p.Publisher.Shutdown(ctx)
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return p.Notifier.Close()
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("ytpresence started")
			return p.Engine.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return p.Engine.Stop(ctx)
		},
	})
}
