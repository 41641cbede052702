package phash

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func gradientImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(255 - x*255/w)})
		}
	}
	return img
}

func TestComputeDeterministicAndLength(t *testing.T) {
	img := gradientImage(200, 200)

	a := Compute(img)
	b := Compute(img)
	require.Equal(t, a, b)
	require.Len(t, Hex(a), NumBytes*2)
}

func TestComputeDistinguishesImages(t *testing.T) {
	solid := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range solid.Pix {
		solid.Pix[i] = 128
	}
	gradient := gradientImage(64, 64)

	require.NotEqual(t, Compute(solid), Compute(gradient))
}
