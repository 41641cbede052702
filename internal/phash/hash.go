// Package phash computes a 12x12 gradient-based perceptual hash: a compact
// global fingerprint retained as an auxiliary verifier and for migration
// tooling, but never consulted by the primary AKAZE-style matcher (see
// internal/match). No perceptual-hash library surfaced anywhere in the
// retrieval pack, so this is a direct, small, from-scratch implementation
// of the standard "gradient hash" algorithm over the shared preprocessed
// grayscale image.
package phash

import (
	"encoding/hex"
	"image"

	"golang.org/x/image/draw"
)

// GridSize is the hash's sample grid dimension: GridSize x GridSize
// gradient comparisons yield GridSize*GridSize bits.
const GridSize = 12

// NumBits is the total number of bits in the fingerprint (144).
const NumBits = GridSize * GridSize

// NumBytes is the fingerprint's packed byte length (18 bytes, 36 hex chars).
const NumBytes = (NumBits + 7) / 8

// Compute derives the 18-byte gradient-hash fingerprint of a preprocessed
// grayscale image: the image is resampled to a (GridSize+1) x GridSize grid
// of luminance samples, and each bit records whether a sample is brighter
// than its horizontal neighbor.
func Compute(img *image.Gray) [NumBytes]byte {
	const sampleW = GridSize + 1
	const sampleH = GridSize

	small := image.NewGray(image.Rect(0, 0, sampleW, sampleH))
	draw.NearestNeighbor.Scale(small, small.Bounds(), img, img.Bounds(), draw.Over, nil)

	var out [NumBytes]byte
	bit := 0
	for y := 0; y < sampleH; y++ {
		for x := 0; x < GridSize; x++ {
			left := small.GrayAt(x, y).Y
			right := small.GrayAt(x+1, y).Y
			if left > right {
				out[bit/8] |= 1 << uint(7-bit%8)
			}
			bit++
		}
	}
	return out
}

// Hex renders a fingerprint as a lowercase hex string (36 characters).
func Hex(fp [NumBytes]byte) string {
	return hex.EncodeToString(fp[:])
}
