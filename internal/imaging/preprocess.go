package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// MaxDimension is the longest-side cap applied before feature extraction
// and perceptual hashing. Both ingestion and the query path must run the
// exact same preprocessing, or descriptors computed at index time become
// incomparable with descriptors computed at request time.
const MaxDimension = 500

// Preprocess resizes img so its longest side is at most MaxDimension pixels
// (Lanczos3 resampling, aspect ratio preserved) and converts it to 8-bit
// grayscale. It is a pure function: identical input bytes always produce a
// byte-identical *image.Gray.
func Preprocess(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	resized := img
	if w > MaxDimension || h > MaxDimension {
		if w >= h {
			resized = imaging.Resize(img, MaxDimension, 0, imaging.Lanczos)
		} else {
			resized = imaging.Resize(img, 0, MaxDimension, imaging.Lanczos)
		}
	}

	gray := imaging.Grayscale(resized)

	out := image.NewGray(gray.Bounds())
	for y := gray.Bounds().Min.Y; y < gray.Bounds().Max.Y; y++ {
		for x := gray.Bounds().Min.X; x < gray.Bounds().Max.X; x++ {
			out.Set(x, y, gray.At(x, y))
		}
	}
	return out
}
