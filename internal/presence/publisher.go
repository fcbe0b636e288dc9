package presence

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/genricoloni/ytpresence/internal/domain"
	"go.uber.org/zap"
)

// MaxFieldLength is the longest text the presence service accepts per field
const MaxFieldLength = 128

const reconnectAttempts = 3

type variantStyle struct {
	host     string
	icon     string
	status   string
	button   string
	activity domain.ActivityType
}

// Publisher turns resolved metadata into a presence payload and pushes it,
// reconnecting once per call when the service link has dropped.
type Publisher struct {
	logger  *zap.Logger
	service domain.PresenceService
	styles  map[domain.Variant]variantStyle

	now        func() time.Time
	newBackOff func() backoff.BackOff

	mu sync.Mutex
}

func NewPublisher(logger *zap.Logger, service domain.PresenceService, cfg domain.Config) *Publisher {
	name := cfg.ProviderName()
	host := cfg.ProviderDomain()

	return &Publisher{
		logger:  logger,
		service: service,
		styles: map[domain.Variant]variantStyle{
			domain.VariantVideo: {
				host:     host,
				icon:     cfg.VideoIcon(),
				status:   "Watching " + name,
				button:   "Watch on " + name,
				activity: domain.ActivityWatching,
			},
			domain.VariantAudio: {
				host:     "music." + host,
				icon:     cfg.AudioIcon(),
				status:   "Listening to " + name + " Music",
				button:   "Listen on " + name + " Music",
				activity: domain.ActivityListening,
			},
		},
		now:        time.Now,
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

// BuildPayload maps metadata and variant to the fields the service displays
func (p *Publisher) BuildPayload(meta domain.MediaMetadata, variant domain.Variant) domain.PresencePayload {
	style, ok := p.styles[variant]
	if !ok {
		style = p.styles[domain.VariantVideo]
	}

	largeImage := meta.ArtworkURL
	if largeImage == "" {
		largeImage = style.icon
	}

	return domain.PresencePayload{
		Details:    truncate(meta.Title, MaxFieldLength),
		State:      truncate("by "+meta.Author, MaxFieldLength),
		LargeImage: largeImage,
		LargeText:  truncate(meta.Title, MaxFieldLength),
		SmallImage: style.icon,
		SmallText:  style.status,
		Start:      p.now(),
		Buttons: []domain.Button{
			{Label: style.button, URL: watchURL(style.host, meta.MediaID)},
		},
		Activity: style.activity,
	}
}

// Publish pushes the payload. A lost link is re-established with backoff and the update retried once.
func (p *Publisher) Publish(ctx context.Context, meta domain.MediaMetadata, variant domain.Variant) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	payload := p.BuildPayload(meta, variant)

	err := p.service.Update(ctx, payload)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrConnection) {
		return domain.Wrap(domain.ErrPublish, component, "update", err)
	}

	p.logger.Warn("Presence link down, reconnecting", zap.Error(err))
	if rerr := p.reconnect(ctx); rerr != nil {
		return domain.Wrap(domain.ErrPublish, component, "reconnect", rerr)
	}

	if err := p.service.Update(ctx, payload); err != nil {
		return domain.Wrap(domain.ErrPublish, component, "update", err)
	}
	p.logger.Info("Presence link restored")
	return nil
}

func (p *Publisher) reconnect(ctx context.Context) error {
	b := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), reconnectAttempts), ctx)
	return backoff.Retry(func() error {
		return p.service.Connect(ctx)
	}, b)
}

// Shutdown clears the displayed activity and closes the link
func (p *Publisher) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.service.Clear(ctx); err != nil {
		p.logger.Debug("Could not clear presence", zap.Error(err))
	}
	return p.service.Close()
}

func watchURL(host, mediaID string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/watch",
		RawQuery: url.Values{"v": {mediaID}}.Encode(),
	}
	return u.String()
}

// truncate cuts s to at most n runes, so multi-byte characters are never split
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
