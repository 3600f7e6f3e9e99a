package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMaxWidth    = 2048
	DefaultJPEGQuality = 80
	DefaultMaxOutput   = 10 << 20

	// maxPixels bounds the decoded canvas so a tiny file cannot expand into gigabytes.
	maxPixels = 80_000_000
)

// Normalizer re-encodes every accepted upload as a JPEG no wider than MaxWidth.
type Normalizer struct {
	MaxWidth       int
	Quality        int
	MaxOutputBytes int64
}

var _ contract.IImageNormalizer = (*Normalizer)(nil)

// NewNormalizer falls back to the defaults for non-positive arguments.
func NewNormalizer(maxWidth, quality int, maxOutputBytes int64) *Normalizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if maxOutputBytes <= 0 {
		maxOutputBytes = DefaultMaxOutput
	}
	return &Normalizer{MaxWidth: maxWidth, Quality: quality, MaxOutputBytes: maxOutputBytes}
}

// Normalize decodes raw, shrinks it to MaxWidth keeping the aspect ratio and
// encodes it as JPEG.
func (n *Normalizer) Normalize(raw []byte) (*entity.NormalizedImage, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrUnsupportedPayload, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty canvas", contract.ErrUnsupportedPayload)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds the pixel limit", contract.ErrPayloadTooLarge, cfg.Width, cfg.Height)
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrUnsupportedPayload, err)
	}

	out := flatten(resizeToWidth(decoded, n.MaxWidth))
	data, err := encodeJPEG(out, n.Quality)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > n.MaxOutputBytes {
		return nil, fmt.Errorf("%w: %d bytes", contract.ErrPayloadTooLarge, len(data))
	}

	b := out.Bounds()
	return &entity.NormalizedImage{
		Data:     data,
		MimeType: "image/jpeg",
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

func resizeToWidth(src image.Image, maxWidth int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= maxWidth {
		return src
	}

	newH := int(float64(h) * float64(maxWidth) / float64(w))
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// flatten composites src onto white since JPEG has no alpha channel.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	if buf.Len() == 0 {
		return nil, errors.New("failed to encode jpeg: empty output")
	}
	return buf.Bytes(), nil
}
