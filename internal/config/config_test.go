package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/genricoloni/ytpresence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDiscordClientID, EnvYouTubeAPIKey, EnvDebugURL, EnvStateDir} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	stateDir := t.TempDir()
	path := writeConfig(t, `
state_dir = "`+stateDir+`"

[discord]
client_id = "123456"
video_icon = "yt"

[youtube]
api_key = "AIza-test"
cache_size = 8

[browser]
debug_url = "http://127.0.0.1:9333"

[engine]
poll_interval_seconds = 20
call_timeout_seconds = 5

[provider]
domain = "example.com"
name = "Example"

[notify]
enabled = true
`)

	cfg, err := Load(zap.NewNop(), path)
	require.NoError(t, err)

	assert.Equal(t, "123456", cfg.DiscordClientID())
	assert.Equal(t, "AIza-test", cfg.YouTubeAPIKey())
	assert.Equal(t, "http://127.0.0.1:9333", cfg.DebugURL())
	assert.Equal(t, 20*time.Second, cfg.PollInterval())
	assert.Equal(t, 5*time.Second, cfg.CallTimeout())
	assert.Equal(t, "example.com", cfg.ProviderDomain())
	assert.Equal(t, "Example", cfg.ProviderName())
	assert.Equal(t, "yt", cfg.VideoIcon())
	assert.Equal(t, defaultAudioIcon, cfg.AudioIcon(), "unset keys keep their default")
	assert.Equal(t, 8, cfg.CacheSize())
	assert.True(t, cfg.NotifyEnabled())
	assert.Equal(t, stateDir, cfg.StateDir())
}

func TestLoad_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDiscordClientID, "env-client")
	t.Setenv(EnvYouTubeAPIKey, "env-key")
	t.Setenv(EnvDebugURL, "http://localhost:9229")

	cfg, err := Load(zap.NewNop(), filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "env-client", cfg.DiscordClientID())
	assert.Equal(t, "env-key", cfg.YouTubeAPIKey())
	assert.Equal(t, "http://localhost:9229", cfg.DebugURL())
	assert.Equal(t, 15*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Second, cfg.CallTimeout())
	assert.Equal(t, "youtube.com", cfg.ProviderDomain())
	assert.Equal(t, "YouTube", cfg.ProviderName())
	assert.Equal(t, 64, cfg.CacheSize())
	assert.False(t, cfg.NotifyEnabled())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[discord]
client_id = "from-file"

[youtube]
api_key = "from-file"
`)
	t.Setenv(EnvYouTubeAPIKey, "from-env")

	cfg, err := Load(zap.NewNop(), path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DiscordClientID())
	assert.Equal(t, "from-env", cfg.YouTubeAPIKey())
}

func TestLoad_StateDirExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDiscordClientID, "c")
	t.Setenv(EnvYouTubeAPIKey, "k")
	base := t.TempDir()
	t.Setenv("YTPRESENCE_TEST_BASE", base)
	t.Setenv(EnvStateDir, "$YTPRESENCE_TEST_BASE/state")

	cfg, err := Load(zap.NewNop(), filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, base+"/state", cfg.StateDir())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "Missing Secrets",
			content: ``,
			errText: "discord client id is required",
		},
		{
			name: "Timeout Not Shorter Than Interval",
			content: `
[discord]
client_id = "c"
[youtube]
api_key = "k"
[engine]
poll_interval_seconds = 10
call_timeout_seconds = 10
`,
			errText: "call timeout must be shorter than the poll interval",
		},
		{
			name: "Negative Cache",
			content: `
[discord]
client_id = "c"
[youtube]
api_key = "k"
cache_size = -1
`,
			errText: "cache size must not be negative",
		},
		{
			name:    "Malformed TOML",
			content: `[discord`,
			errText: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := writeConfig(t, tt.content)

			cfg, err := Load(zap.NewNop(), path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestAppConfig_ImplementsDomainConfig(t *testing.T) {
	var _ domain.Config = FromSettings(Default())
}
