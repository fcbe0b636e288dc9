package runlock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/genricoloni/ytpresence/internal/config"
	"github.com/genricoloni/ytpresence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLock(t *testing.T, dir string) *Lock {
	t.Helper()
	s := config.Default()
	s.StateDir = dir
	s.Browser.DebugURL = "http://127.0.0.1:9333"
	return New(zap.NewNop(), config.FromSettings(s))
}

func TestLock_AcquireRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	l := newTestLock(t, dir)

	require.NoError(t, l.Acquire())

	marker, err := os.ReadFile(filepath.Join(dir, markerName))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9333\n", string(marker))
	assert.FileExists(t, filepath.Join(dir, lockName))

	require.NoError(t, l.Release())
	assert.NoFileExists(t, filepath.Join(dir, markerName))
	assert.NoFileExists(t, filepath.Join(dir, lockName))

	assert.NoError(t, l.Release(), "second release is a no-op")
}

func TestLock_SecondInstanceRejected(t *testing.T) {
	dir := t.TempDir()
	first := newTestLock(t, dir)
	second := newTestLock(t, dir)

	require.NoError(t, first.Acquire())
	t.Cleanup(func() { _ = first.Release() })

	err := second.Acquire()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyRunning))
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	require.NoError(t, first.Release())
	require.NoError(t, second.Acquire(), "lock is free once the first instance releases")
	require.NoError(t, second.Release())
}

func TestLock_ReleaseWithoutAcquire(t *testing.T) {
	assert.NoError(t, newTestLock(t, t.TempDir()).Release())
}
