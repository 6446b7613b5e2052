package filter

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"lightbox/internal/services"
	"lightbox/internal/stage"
)

// DefaultIntensity matches the tint the photo browser has always used.
const DefaultIntensity = 0.8

// Sepia tints images toward brown. Intensity 0 returns the image unchanged
// apart from re-encoding; 1 applies the full sepia matrix.
type Sepia struct {
	intensity float64
	maxEdge   int
}

// Option customises a Sepia filter.
type Option func(*Sepia)

// WithMaxEdge downscales images whose longest edge exceeds edge pixels.
func WithMaxEdge(edge int) Option {
	return func(s *Sepia) {
		if edge > 0 {
			s.maxEdge = edge
		}
	}
}

// NewSepia constructs a filter. Intensity is clamped to [0, 1].
func NewSepia(intensity float64, opts ...Option) *Sepia {
	s := &Sepia{intensity: clamp01(intensity)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Intensity reports the configured blend factor.
func (s *Sepia) Intensity() float64 {
	return s.intensity
}

// Transform implements stage.Transformer.
func (s *Sepia) Transform(ctx context.Context, artifact []byte) ([]byte, error) {
	if len(artifact) == 0 {
		return nil, services.Wrap(services.ErrTransform, "transform", "decode", "empty artifact", nil)
	}
	src, format, err := image.Decode(bytes.NewReader(artifact))
	if err != nil {
		return nil, services.Wrap(services.ErrTransform, "transform", "decode", "unrecognised image", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransform, "transform", "decode", format, err)
	}

	canvas := s.canvas(src)
	s.tint(canvas)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, services.Wrap(services.ErrTransform, "transform", "encode", format, err)
	}
	return buf.Bytes(), nil
}

// HealthCheck reports the filter settings.
func (s *Sepia) HealthCheck(context.Context) stage.Health {
	detail := fmt.Sprintf("sepia %.2f", s.intensity)
	if s.maxEdge > 0 {
		detail += fmt.Sprintf(", max edge %dpx", s.maxEdge)
	}
	return stage.HealthyWithDetail("sepia filter", detail)
}

func (s *Sepia) canvas(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	width, height := scaledSize(bounds.Dx(), bounds.Dy(), s.maxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

func (s *Sepia) tint(img *image.RGBA) {
	if s.intensity == 0 {
		return
	}
	keep := 1 - s.intensity
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])
		sr := 0.393*r + 0.769*g + 0.189*b
		sg := 0.349*r + 0.686*g + 0.168*b
		sb := 0.272*r + 0.534*g + 0.131*b
		pix[i] = channel(keep*r + s.intensity*sr)
		pix[i+1] = channel(keep*g + s.intensity*sg)
		pix[i+2] = channel(keep*b + s.intensity*sb)
	}
}

func scaledSize(width, height, maxEdge int) (int, int) {
	longest := max(width, height)
	if maxEdge <= 0 || longest <= maxEdge {
		return width, height
	}
	scale := float64(maxEdge) / float64(longest)
	return max(1, int(float64(width)*scale+0.5)), max(1, int(float64(height)*scale+0.5))
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
