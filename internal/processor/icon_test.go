package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/genricoloni/ytpresence/internal/config"
	"go.uber.org/zap"
)

func newTestProcessor(t *testing.T) *IconProcessor {
	t.Helper()
	s := config.Default()
	s.StateDir = t.TempDir()
	return NewIconProcessor(zap.NewNop(), config.FromSettings(s))
}

func TestIconProcessor_Process(t *testing.T) {
	tests := []struct {
		name          string
		imageData     []byte
		expectedError string
	}{
		{"Success - 16:9 Thumbnail", createTestJPEG(480, 270, color.RGBA{R: 255, A: 255}), ""},
		{"Success - Portrait", createTestJPEG(90, 160, color.RGBA{G: 255, A: 255}), ""},
		{"Success - Upscale Tiny Image", createTestJPEG(1, 1, color.RGBA{R: 128, G: 128, B: 128, A: 255}), ""},
		{"Error - Invalid Image Data", []byte("not-an-image"), "failed to decode image"},
		{"Error - Empty Data", []byte{}, "failed to decode image"},
		{"Error - Corrupted JPEG", []byte{0xFF, 0xD8, 0xFF, 0x00, 0x00}, "failed to decode image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestProcessor(t).Process(context.Background(), tt.imageData)

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("expected error containing '%s', got nil", tt.expectedError)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			img, err := png.Decode(bytes.NewReader(result))
			if err != nil {
				t.Fatalf("result is not a PNG: %v", err)
			}
			if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
				t.Errorf("expected %dx%d, got %dx%d", iconSize, iconSize, b.Dx(), b.Dy())
			}
		})
	}
}

func TestIconProcessor_Generate(t *testing.T) {
	p := newTestProcessor(t)
	data := createTestJPEG(320, 180, color.RGBA{B: 255, A: 255})

	path, err := p.Generate(context.Background(), data, "https://i.ytimg.com/vi/abc123/maxresdefault.jpg")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if filepath.Dir(path) != p.dir || filepath.Ext(path) != ".png" {
		t.Errorf("unexpected icon path %s", path)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("icon not written: %v", err)
	}

	t.Run("Cache Hit Skips Decoding", func(t *testing.T) {
		again, err := p.Generate(context.Background(), []byte("garbage"), "https://i.ytimg.com/vi/abc123/maxresdefault.jpg")
		if err != nil {
			t.Fatalf("expected cached icon, got %v", err)
		}
		if again != path {
			t.Errorf("expected %s, got %s", path, again)
		}
	})

	t.Run("Different Key Different File", func(t *testing.T) {
		other, err := p.Generate(context.Background(), data, "https://i.ytimg.com/vi/xyz789/maxresdefault.jpg")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if other == path {
			t.Error("expected a distinct file per key")
		}
	})

	t.Run("No Temp Files Left", func(t *testing.T) {
		entries, err := os.ReadDir(p.dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".icon-") {
				t.Errorf("leftover temp file %s", e.Name())
			}
		}
	})
}

// createTestJPEG generates a simple JPEG image for testing
func createTestJPEG(width, height int, col color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, col)
		}
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 80}); err != nil {
		panic("failed to create test JPEG: " + err.Error())
	}
	return buf.Bytes()
}
