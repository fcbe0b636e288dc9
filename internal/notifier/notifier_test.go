package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/genricoloni/ytpresence/internal/config"
	"github.com/genricoloni/ytpresence/internal/domain"
	"github.com/genricoloni/ytpresence/internal/domain/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeBus struct {
	sent   []Message
	nextID uint32
	err    error
	closed bool
}

func (b *fakeBus) Notify(_ context.Context, msg Message) (uint32, error) {
	if b.err != nil {
		return 0, b.err
	}
	b.sent = append(b.sent, msg)
	b.nextID++
	return b.nextID, nil
}

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

var song = domain.MediaMetadata{MediaID: "xyz789", Title: "Song", Author: "Band", ArtworkURL: "https://img/xyz.jpg"}

func newTestNotifier(t *testing.T, bus Bus) (*DesktopNotifier, *mocks.MockFetcher, *mocks.MockImageProcessor) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	processor := mocks.NewMockImageProcessor(ctrl)
	return &DesktopNotifier{logger: zap.NewNop(), bus: bus, fetcher: fetcher, processor: processor}, fetcher, processor
}

func TestDesktopNotifier_Notify(t *testing.T) {
	t.Run("Success - Icon From Artwork", func(t *testing.T) {
		bus := &fakeBus{}
		n, fetcher, processor := newTestNotifier(t, bus)
		fetcher.EXPECT().Fetch(gomock.Any(), song.ArtworkURL).Return([]byte("jpeg"), nil)
		processor.EXPECT().Generate(gomock.Any(), []byte("jpeg"), song.ArtworkURL).Return("/state/icons/1.png", nil)

		require.NoError(t, n.Notify(context.Background(), song, domain.VariantAudio))
		require.Len(t, bus.sent, 1)
		assert.Equal(t, Message{
			AppName:   appName,
			Icon:      "/state/icons/1.png",
			Summary:   "Now listening",
			Body:      "Song\nby Band",
			TimeoutMS: displayTimeMS,
		}, bus.sent[0])
	})

	t.Run("Artwork Failure Still Notifies", func(t *testing.T) {
		bus := &fakeBus{}
		n, fetcher, _ := newTestNotifier(t, bus)
		fetcher.EXPECT().Fetch(gomock.Any(), song.ArtworkURL).Return(nil, errors.New("404"))

		require.NoError(t, n.Notify(context.Background(), song, domain.VariantVideo))
		require.Len(t, bus.sent, 1)
		assert.Empty(t, bus.sent[0].Icon)
		assert.Equal(t, "Now watching", bus.sent[0].Summary)
	})

	t.Run("Icon Failure Still Notifies", func(t *testing.T) {
		bus := &fakeBus{}
		n, fetcher, processor := newTestNotifier(t, bus)
		fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]byte("x"), nil)
		processor.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("decode"))

		require.NoError(t, n.Notify(context.Background(), song, domain.VariantVideo))
		assert.Empty(t, bus.sent[0].Icon)
	})

	t.Run("No Artwork Skips Download", func(t *testing.T) {
		bus := &fakeBus{}
		n, _, _ := newTestNotifier(t, bus)

		meta := song
		meta.ArtworkURL = ""
		require.NoError(t, n.Notify(context.Background(), meta, domain.VariantVideo))
		assert.Empty(t, bus.sent[0].Icon)
	})

	t.Run("Replaces Previous Notification", func(t *testing.T) {
		bus := &fakeBus{}
		n, _, _ := newTestNotifier(t, bus)

		meta := song
		meta.ArtworkURL = ""
		require.NoError(t, n.Notify(context.Background(), meta, domain.VariantVideo))
		require.NoError(t, n.Notify(context.Background(), meta, domain.VariantVideo))

		require.Len(t, bus.sent, 2)
		assert.Equal(t, uint32(0), bus.sent[0].ReplacesID)
		assert.Equal(t, uint32(1), bus.sent[1].ReplacesID)
	})

	t.Run("Bus Error Returned", func(t *testing.T) {
		n, _, _ := newTestNotifier(t, &fakeBus{err: errors.New("ServiceUnknown")})

		meta := song
		meta.ArtworkURL = ""
		assert.Error(t, n.Notify(context.Background(), meta, domain.VariantVideo))
	})
}

func TestDesktopNotifier_Disabled(t *testing.T) {
	n := New(zap.NewNop(), config.FromSettings(config.Default()), nil, nil)

	assert.NoError(t, n.Notify(context.Background(), song, domain.VariantVideo))
	assert.NoError(t, n.Close())
}

func TestDesktopNotifier_Close(t *testing.T) {
	bus := &fakeBus{}
	n, _, _ := newTestNotifier(t, bus)

	require.NoError(t, n.Close())
	assert.True(t, bus.closed)
}
