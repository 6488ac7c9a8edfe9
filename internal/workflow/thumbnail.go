package workflow

import (
	"bytes"
	"image"
	"image/jpeg"
	"log/slog"

	_ "image/gif"  // register GIF decoder
	_ "image/png"  // register PNG decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// thumbMaxWidth is the maximum stored thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for downscaled thumbnails.
	thumbQuality = 80

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// processThumbnail downscales an uploaded thumbnail image to thumbMaxWidth,
// re-encoding it as JPEG. Images already small enough, and images that
// cannot be decoded (animated GIFs, SVGs), are stored as uploaded. The
// function never fails: on any processing error the original bytes come
// back unchanged.
func processThumbnail(thumb *FileUpload) ([]byte, string) {
	resized, err := downscale(thumb.Data, thumbMaxWidth)
	if err != nil {
		slog.Warn("thumbnail downscale failed, storing original", "error", err, "name", thumb.Name)
		return thumb.Data, thumb.ContentType
	}
	if resized == nil {
		// Already within bounds.
		return thumb.Data, thumb.ContentType
	}
	return resized, "image/jpeg"
}

// downscale creates a JPEG constrained to maxWidth while preserving aspect
// ratio. Returns nil if the image is already at most maxWidth wide.
func downscale(data []byte, maxWidth int) ([]byte, error) {
	// Decode config first to check dimensions without full decode.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	// Check for image bombs.
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, &ValidationError{Msg: "image dimensions too large"}
	}

	if cfg.Width <= maxWidth {
		return nil, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	// Calculate target dimensions preserving aspect ratio.
	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newHeight := int(float64(bounds.Dy()) * ratio)

	// Resize using CatmullRom (high quality).
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
