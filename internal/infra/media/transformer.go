package media

import (
	"context"
	"fmt"
	"io"

	"character-match-service/internal/domain"
	"github.com/disintegration/imaging"
)

// PortraitTransformer crops the selfie to portrait framing and gives it a
// punchy studio look. Output is always PNG.
type PortraitTransformer struct {
	Width  int
	Height int
}

func NewPortraitTransformer(width, height int) *PortraitTransformer {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 640
	}
	return &PortraitTransformer{Width: width, Height: height}
}

func (t *PortraitTransformer) Transform(ctx context.Context, dst io.Writer, src io.Reader, _ *domain.Character) error {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: decode selfie: %v", domain.ErrUnsupportedMediaType, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	out := imaging.Fill(img, t.Width, t.Height, imaging.Center, imaging.Lanczos)
	out = imaging.AdjustSaturation(out, 35)
	out = imaging.AdjustContrast(out, 20)
	out = imaging.Blur(out, 0.6)
	return imaging.Encode(dst, out, imaging.PNG)
}

// CopyTransformer passes the selfie through unchanged.
type CopyTransformer struct{}

func (CopyTransformer) Transform(_ context.Context, dst io.Writer, src io.Reader, _ *domain.Character) error {
	_, err := io.Copy(dst, src)
	return err
}
