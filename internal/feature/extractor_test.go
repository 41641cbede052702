package feature

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knight-ops/inkwell/internal/descriptor"
)

func checkerboard(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	rng := rand.New(rand.NewSource(42))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			// A noisy checkerboard gives FAST/Sobel-style corner
			// detectors plenty of salient points to find.
			base := uint8(0)
			if (x/10+y/10)%2 == 0 {
				base = 255
			}
			noise := uint8(rng.Intn(20))
			img.SetGray(x, y, color.Gray{Y: base ^ noise})
		}
	}
	return img
}

func TestExtractFindsFeaturesOnTexturedImage(t *testing.T) {
	img := checkerboard(200)
	kps, mat, err := Extract(img)
	require.NoError(t, err)
	require.NotEmpty(t, kps)
	require.Equal(t, len(kps), mat.Rows())
	for _, row := range mat {
		require.Len(t, row, descriptor.RowWidth)
	}
}

func TestExtractBlankImageYieldsNoError(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	kps, mat, err := Extract(img)
	require.NoError(t, err)
	require.Empty(t, kps)
	require.Equal(t, 0, mat.Rows())
}

func TestExtractDeterministic(t *testing.T) {
	img := checkerboard(150)
	_, mat1, err := Extract(img)
	require.NoError(t, err)
	_, mat2, err := Extract(img)
	require.NoError(t, err)
	require.Equal(t, mat1, mat2)
}
