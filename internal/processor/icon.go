package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/genricoloni/ytpresence/internal/domain"
	_ "golang.org/x/image/webp" // WebP format support
	"go.uber.org/zap"
)

const (
	iconSize   = 128
	iconSubdir = "icons"
)

// IconProcessor crops artwork into a square notification icon and caches it on disk
type IconProcessor struct {
	logger *zap.Logger
	dir    string
}

func NewIconProcessor(logger *zap.Logger, cfg domain.Config) *IconProcessor {
	return &IconProcessor{
		logger: logger,
		dir:    filepath.Join(cfg.StateDir(), iconSubdir),
	}
}

// Process center-crops the image to a 128x128 PNG
func (p *IconProcessor) Process(ctx context.Context, imageData []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	// YouTube thumbnails are letterboxed 4:3 or 16:9, Fill keeps the middle
	icon := imaging.Fill(img, iconSize, iconSize, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, icon, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}

	p.logger.Debug("Icon rendered", zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// Generate returns the cached icon for key, rendering it from imageData on a miss
func (p *IconProcessor) Generate(ctx context.Context, imageData []byte, key string) (string, error) {
	path := p.pathFor(key)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	data, err := p.Process(ctx, imageData)
	if err != nil {
		return "", fmt.Errorf("failed to process image: %w", err)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create icon directory: %w", err)
	}

	// write-then-rename so a reader never sees a partial file
	tmp, err := os.CreateTemp(p.dir, ".icon-*")
	if err != nil {
		return "", fmt.Errorf("failed to create icon file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write icon file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write icon file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store icon file: %w", err)
	}

	p.logger.Debug("Icon cached", zap.String("path", path), zap.String("key", key))
	return path, nil
}

func (p *IconProcessor) pathFor(key string) string {
	name := fmt.Sprintf("%016x.png", xxhash.Sum64String(key))
	if abs, err := filepath.Abs(filepath.Join(p.dir, name)); err == nil {
		return abs
	}
	return filepath.Join(p.dir, name)
}
