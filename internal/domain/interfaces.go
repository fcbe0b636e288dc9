package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/domain_mock.go -package=mocks github.com/genricoloni/ytpresence/internal/domain BrowserLink,Catalog,PresenceService,TabScanner,Resolver,Publisher,Notifier,Fetcher,ImageProcessor

// BrowserLink is the connection to a running browser.
// Implementations talk to the browser's remote debugging endpoint
type BrowserLink interface {
	// Connect attaches to the browser. It fails if the browser is unreachable
	Connect(ctx context.Context) error

	// ListTabs returns the handles of every open page, in browser order
	ListTabs(ctx context.Context) ([]TabHandle, error)

	// CurrentURL returns the URL of a tab.
	// It fails with ErrTabUnavailable when the tab has been closed
	CurrentURL(ctx context.Context, tab TabHandle) (string, error)

	// Close releases the connection without closing the browser
	Close() error
}

// Catalog is the remote metadata API
type Catalog interface {
	// GetItem returns the catalog entry for a media id.
	// It fails with ErrNotFound or ErrTransient
	GetItem(ctx context.Context, mediaID string) (CatalogItem, error)
}

// PresenceService is the social status service session
type PresenceService interface {
	// Connect opens a session. It fails with ErrConnection
	Connect(ctx context.Context) error

	// Update replaces the current presence. It fails with ErrPublish
	Update(ctx context.Context, payload PresencePayload) error

	// Clear removes the current presence
	Clear(ctx context.Context) error

	// Close ends the session
	Close() error
}

// TabScanner finds recognized media tabs
type TabScanner interface {
	// Scan returns the recognized media references in browser tab order
	Scan(ctx context.Context) ([]MediaReference, error)
}

// Resolver turns a media id into normalized metadata
type Resolver interface {
	Resolve(ctx context.Context, mediaID string) (MediaMetadata, error)
}

// Publisher pushes metadata to the presence service
type Publisher interface {
	Publish(ctx context.Context, meta MediaMetadata, variant Variant) error
}

// Notifier announces a newly published item on the desktop
type Notifier interface {
	Notify(ctx context.Context, meta MediaMetadata, variant Variant) error
}

// Fetcher defines the interface for retrieving artwork
type Fetcher interface {
	// Fetch downloads image data from a URL
	// Returns the raw image bytes or an error
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageProcessor turns raw artwork into a notification icon
type ImageProcessor interface {
	// Process transforms image data into a square PNG icon
	Process(ctx context.Context, imageData []byte) ([]byte, error)

	// Generate processes image data and stores it under a name derived from key.
	// Returns the absolute file path
	Generate(ctx context.Context, imageData []byte, key string) (string, error)
}

// Config defines the interface for application configuration
type Config interface {
	// PollInterval is the wait between two reconciliation cycles
	PollInterval() time.Duration

	// CallTimeout bounds every blocking collaborator call
	CallTimeout() time.Duration

	// ProviderDomain is the bare domain of the streaming site, e.g. "youtube.com"
	ProviderDomain() string

	// ProviderName is the display name of the streaming site, e.g. "YouTube"
	ProviderName() string

	// VideoIcon and AudioIcon are the presence asset keys for each variant
	VideoIcon() string
	AudioIcon() string

	// StateDir holds the lock file and cached icons
	StateDir() string

	// DebugURL is the browser's remote debugging endpoint
	DebugURL() string

	// DiscordClientID and YouTubeAPIKey are the two secrets
	DiscordClientID() string
	YouTubeAPIKey() string

	// CacheSize is the metadata cache capacity, 0 disables caching
	CacheSize() int

	// NotifyEnabled toggles desktop notifications
	NotifyEnabled() bool
}
