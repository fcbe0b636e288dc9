package domain

import "time"

// Variant identifies which flavour of the streaming service a tab belongs to
type Variant string

const (
	// VariantVideo is the regular video site
	VariantVideo Variant = "video"
	// VariantAudio is the audio-focused music site
	VariantAudio Variant = "audio"
)

// TabHandle is an opaque identifier for a browser tab
type TabHandle string

// MediaReference identifies playable content found in a browser tab
type MediaReference struct {
	// MediaID is the value of the "v" query parameter
	MediaID string
	// Variant tells video and music tabs apart
	Variant Variant
	// Tab is the handle of the tab the reference was read from
	Tab TabHandle
}

// CatalogItem is the raw catalog entry for a media id
type CatalogItem struct {
	Title  string
	Author string
	// Thumbnails maps a tier name (e.g. "maxres", "high") to an image URL
	Thumbnails map[string]string
}

// MediaMetadata contains normalized information about a media item
type MediaMetadata struct {
	MediaID    string
	Title      string
	Author     string
	ArtworkURL string
}

// ActivityType is the presence verb shown by the status service
type ActivityType int

const (
	ActivityListening ActivityType = 2
	ActivityWatching  ActivityType = 3
)

// Button is a clickable link attached to a presence
type Button struct {
	Label string
	URL   string
}

// PresencePayload is the "now playing" status pushed to the presence service
type PresencePayload struct {
	Details    string
	State      string
	LargeImage string
	LargeText  string
	SmallImage string
	SmallText  string
	Start      time.Time
	Buttons    []Button
	Activity   ActivityType
}
