// Package imaging handles format-sniffed image decoding and the shared
// preprocessing step (resize + grayscale) that the feature extractor and
// the perceptual hasher both require to agree on descriptors across the
// ingestion and query paths.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/webp"
)

// ErrDecode is returned when image bytes cannot be recognized or decoded
// by any registered format.
var ErrDecode = fmt.Errorf("imaging: failed to decode image")

func init() {
	image.RegisterFormat("webp", "RIFF", webp.Decode, webp.DecodeConfig)
}

// Decode sniffs the format of raw image bytes (PNG, JPEG, or WebP) and
// decodes them. It returns ErrDecode, wrapping the underlying cause, on
// any failure.
func Decode(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return img, nil
}
