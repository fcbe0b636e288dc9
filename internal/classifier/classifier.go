package classifier

import (
	"net/url"
	"strings"

	"github.com/genricoloni/ytpresence/internal/domain"
)

const watchPath = "/watch"

// Classifier recognizes watch pages of a single streaming provider
type Classifier struct {
	videoHosts map[string]struct{}
	audioHost  string
}

// New creates a classifier for a bare provider domain such as "youtube.com".
// The music site is expected on the "music." subdomain.
func New(providerDomain string) *Classifier {
	d := strings.ToLower(strings.TrimSpace(providerDomain))
	return &Classifier{
		videoHosts: map[string]struct{}{
			d:          {},
			"www." + d: {},
		},
		audioHost: "music." + d,
	}
}

// NewFromConfig creates a classifier for the configured provider
func NewFromConfig(cfg domain.Config) *Classifier {
	return New(cfg.ProviderDomain())
}

// Classify returns the media reference for rawURL.
// ok is false for anything that is not a watch page with a non-empty "v" parameter.
func (c *Classifier) Classify(rawURL string) (ref domain.MediaReference, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path != watchPath {
		return domain.MediaReference{}, false
	}

	var variant domain.Variant
	host := strings.ToLower(u.Hostname())
	switch {
	case host == c.audioHost:
		variant = domain.VariantAudio
	case c.isVideoHost(host):
		variant = domain.VariantVideo
	default:
		return domain.MediaReference{}, false
	}

	id := u.Query().Get("v")
	if id == "" {
		return domain.MediaReference{}, false
	}

	return domain.MediaReference{MediaID: id, Variant: variant}, true
}

func (c *Classifier) isVideoHost(host string) bool {
	_, ok := c.videoHosts[host]
	return ok
}
