package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/genricoloni/ytpresence/internal/domain"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const (
	appName = "ytpresence"

	defaultDebugURL       = "http://127.0.0.1:9222"
	defaultPollSeconds    = 15
	defaultTimeoutSeconds = 10
	defaultProviderDomain = "youtube.com"
	defaultProviderName   = "YouTube"
	defaultVideoIcon      = "youtube"
	defaultAudioIcon      = "youtube_music"
	defaultCacheSize      = 64
)

// Environment overrides
const (
	EnvDiscordClientID = "YTPRESENCE_DISCORD_CLIENT_ID"
	EnvYouTubeAPIKey   = "YTPRESENCE_YOUTUBE_API_KEY"
	EnvDebugURL        = "YTPRESENCE_DEBUG_URL"
	EnvStateDir        = "YTPRESENCE_STATE_DIR"
)

// Discord holds the presence service settings
type Discord struct {
	ClientID  string `toml:"client_id"`
	VideoIcon string `toml:"video_icon"`
	AudioIcon string `toml:"audio_icon"`
}

// YouTube holds the catalog API settings
type YouTube struct {
	APIKey    string `toml:"api_key"`
	CacheSize int    `toml:"cache_size"`
}

// Browser holds the remote debugging endpoint
type Browser struct {
	DebugURL string `toml:"debug_url"`
}

// Engine holds the reconciliation loop timing
type Engine struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	CallTimeoutSeconds  int `toml:"call_timeout_seconds"`
}

// Provider describes the streaming site recognized in tabs
type Provider struct {
	Domain string `toml:"domain"`
	Name   string `toml:"name"`
}

// Notify toggles desktop notifications
type Notify struct {
	Enabled bool `toml:"enabled"`
}

// Settings is the on-disk configuration layout
type Settings struct {
	StateDir string   `toml:"state_dir"`
	Discord  Discord  `toml:"discord"`
	YouTube  YouTube  `toml:"youtube"`
	Browser  Browser  `toml:"browser"`
	Engine   Engine   `toml:"engine"`
	Provider Provider `toml:"provider"`
	Notify   Notify   `toml:"notify"`
}

// Default returns settings with every optional value filled in
func Default() Settings {
	return Settings{
		StateDir: defaultStateDir(),
		Discord: Discord{
			VideoIcon: defaultVideoIcon,
			AudioIcon: defaultAudioIcon,
		},
		YouTube: YouTube{CacheSize: defaultCacheSize},
		Browser: Browser{DebugURL: defaultDebugURL},
		Engine: Engine{
			PollIntervalSeconds: defaultPollSeconds,
			CallTimeoutSeconds:  defaultTimeoutSeconds,
		},
		Provider: Provider{
			Domain: defaultProviderDomain,
			Name:   defaultProviderName,
		},
	}
}

// DefaultPath returns the config file location under the user config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appName+".toml")
	}
	return filepath.Join(dir, appName, "config.toml")
}

// AppConfig holds application configuration
type AppConfig struct {
	settings Settings
}

// FromSettings wraps already validated settings
func FromSettings(s Settings) *AppConfig {
	return &AppConfig{settings: s}
}

// Load reads the TOML file at path (a missing file is fine), applies
// environment overrides and validates the result
func Load(logger *zap.Logger, path string) (*AppConfig, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, domain.Wrap(domain.ErrConfiguration, "config", "parse "+path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("No config file, using defaults and environment", zap.String("path", path))
	default:
		return nil, domain.Wrap(domain.ErrConfiguration, "config", "read "+path, err)
	}

	applyEnv(&s)
	s.StateDir = expandPath(s.StateDir)

	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		zap.String("path", path),
		zap.String("debugURL", s.Browser.DebugURL),
		zap.String("provider", s.Provider.Domain),
		zap.Int("pollSeconds", s.Engine.PollIntervalSeconds),
		zap.String("stateDir", s.StateDir),
		zap.Bool("notify", s.Notify.Enabled))

	return &AppConfig{settings: s}, nil
}

// Validate checks required secrets and timing constraints
func (s Settings) Validate() error {
	var problems []string
	if strings.TrimSpace(s.Discord.ClientID) == "" {
		problems = append(problems, "discord client id is required ("+EnvDiscordClientID+")")
	}
	if strings.TrimSpace(s.YouTube.APIKey) == "" {
		problems = append(problems, "youtube api key is required ("+EnvYouTubeAPIKey+")")
	}
	if strings.TrimSpace(s.Browser.DebugURL) == "" {
		problems = append(problems, "browser debug url must not be empty")
	}
	if strings.TrimSpace(s.Provider.Domain) == "" {
		problems = append(problems, "provider domain must not be empty")
	}
	if s.Engine.PollIntervalSeconds <= 0 {
		problems = append(problems, "poll interval must be positive")
	}
	if s.Engine.CallTimeoutSeconds <= 0 {
		problems = append(problems, "call timeout must be positive")
	} else if s.Engine.CallTimeoutSeconds >= s.Engine.PollIntervalSeconds {
		problems = append(problems, "call timeout must be shorter than the poll interval")
	}
	if s.YouTube.CacheSize < 0 {
		problems = append(problems, "cache size must not be negative")
	}
	if len(problems) > 0 {
		return domain.Wrap(domain.ErrConfiguration, "config", "validate", errors.New(strings.Join(problems, "; ")))
	}
	return nil
}

func applyEnv(s *Settings) {
	if v := os.Getenv(EnvDiscordClientID); v != "" {
		s.Discord.ClientID = v
	}
	if v := os.Getenv(EnvYouTubeAPIKey); v != "" {
		s.YouTube.APIKey = v
	}
	if v := os.Getenv(EnvDebugURL); v != "" {
		s.Browser.DebugURL = v
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		s.StateDir = v
	}
}

// expandPath resolves environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

// PollInterval returns the wait between reconciliation cycles
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.settings.Engine.PollIntervalSeconds) * time.Second
}

// CallTimeout returns the per-call deadline for collaborators
func (c *AppConfig) CallTimeout() time.Duration {
	return time.Duration(c.settings.Engine.CallTimeoutSeconds) * time.Second
}

func (c *AppConfig) ProviderDomain() string  { return c.settings.Provider.Domain }
func (c *AppConfig) ProviderName() string    { return c.settings.Provider.Name }
func (c *AppConfig) VideoIcon() string       { return c.settings.Discord.VideoIcon }
func (c *AppConfig) AudioIcon() string       { return c.settings.Discord.AudioIcon }
func (c *AppConfig) StateDir() string        { return c.settings.StateDir }
func (c *AppConfig) DebugURL() string        { return c.settings.Browser.DebugURL }
func (c *AppConfig) DiscordClientID() string { return c.settings.Discord.ClientID }
func (c *AppConfig) YouTubeAPIKey() string   { return c.settings.YouTube.APIKey }
func (c *AppConfig) CacheSize() int          { return c.settings.YouTube.CacheSize }
func (c *AppConfig) NotifyEnabled() bool     { return c.settings.Notify.Enabled }
