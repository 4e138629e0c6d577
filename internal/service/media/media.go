package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/mamadbah2/telelbirds/pkg/clients/storage"
)

const (
	// TargetWidth is the width every stored photo is scaled to.
	TargetWidth = 1280
	// JPEGQuality is the re-encoding quality of stored photos.
	JPEGQuality = 70
	// MaxUploadBytes bounds the accepted upload size.
	MaxUploadBytes = 15 << 20
	// MaxPixels bounds the decoded size; compressed uploads can be tiny yet
	// declare huge dimensions.
	MaxPixels = 50_000_000
)

// ErrUnsupportedImage is returned when the upload is not a JPEG, PNG or GIF.
var ErrUnsupportedImage = errors.New("unsupported image")

// Service normalises uploaded photos and stores them as media objects.
type Service struct {
	store  storage.ObjectStore
	logger *zap.Logger
}

func NewService(store storage.ObjectStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// UploadPhoto converts the image and stores it under dir, returning its URL.
func (s *Service) UploadPhoto(ctx context.Context, dir string, r io.Reader) (string, error) {
	data, err := Process(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		return "", err
	}

	url, err := s.store.PutMedia(ctx, dir, ".jpg", "image/jpeg", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}

	s.logger.Info("photo stored", zap.String("dir", dir), zap.Int("bytes", len(data)))
	return url, nil
}

// Process scales the image to TargetWidth keeping its aspect ratio and
// re-encodes it as JPEG.
func Process(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, MaxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	dst := Resize(src, TargetWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Resize returns src scaled to the given width.
func Resize(src image.Image, width int) image.Image {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dx() == width {
		return src
	}

	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
