// Package feature computes the local-feature keypoints and fixed-width
// binary descriptors the match engine compares by Hamming distance.
//
// No AKAZE/OpenCV binding appears anywhere in the retrieval pack backing
// this module (every go.mod under _examples/ was searched), so this is a
// from-scratch rotation- and scale-invariant binary descriptor pipeline in
// the spirit of the accelerated-KAZE/MLDB family the spec calls for: a
// small Gaussian-free image pyramid for scale coverage, FAST-style Sobel
// corner detection with non-max suppression, ORB-style intensity-centroid
// orientation for rotation invariance, and a fixed BRIEF-style sampling
// pattern (internal/feature/pattern.go) rotated per keypoint to produce the
// spec's 61-byte descriptor rows.
package feature

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/knight-ops/inkwell/internal/descriptor"
	imagingpre "github.com/knight-ops/inkwell/internal/imaging"
)

// ErrExtractionFailed signals an unrecoverable failure in the extraction
// pipeline. An image that simply yields no keypoints is not an error: it
// decodes to an empty descriptor matrix.
var ErrExtractionFailed = fmt.Errorf("feature: extraction failed")

// Keypoint is a salient image location a descriptor was computed at.
// Keypoints are not persisted; they exist only to drive descriptor
// computation and are discarded once Extract returns.
type Keypoint struct {
	X, Y  float64
	Scale float64
	Angle float64
}

const (
	numOctaves          = 3
	octaveScaleFactor   = 0.75
	maxKeypointsPerScale = 400
)

// Extract preprocesses img (resize + grayscale, shared with the perceptual
// hasher and identical for ingestion and query paths), builds a small
// scale pyramid, and computes keypoints and their aligned binary
// descriptors. An image with zero detected features yields a non-nil,
// zero-row matrix, not an error.
func Extract(img image.Image) ([]Keypoint, descriptor.Matrix, error) {
	if img == nil {
		return nil, nil, fmt.Errorf("%w: nil image", ErrExtractionFailed)
	}

	base := imagingpre.Preprocess(img)

	var keypoints []Keypoint
	var rows descriptor.Matrix

	scale := 1.0
	level := base
	for o := 0; o < numOctaves; o++ {
		b := level.Bounds()
		if b.Dx() < 2*patchMargin+1 || b.Dy() < 2*patchMargin+1 {
			break
		}

		candidates := detectKeypoints(level, maxKeypointsPerScale)
		for _, c := range candidates {
			angle := orientation(level, c.x, c.y)
			row, ok := computeRow(level, c.x, c.y, angle)
			if !ok {
				continue
			}
			keypoints = append(keypoints, Keypoint{
				X:     float64(c.x) / scale,
				Y:     float64(c.y) / scale,
				Scale: scale,
				Angle: angle,
			})
			rows = append(rows, row)
		}

		scale *= octaveScaleFactor
		nextW := int(float64(b.Dx()) * octaveScaleFactor)
		nextH := int(float64(b.Dy()) * octaveScaleFactor)
		if nextW < 2*patchMargin+1 || nextH < 2*patchMargin+1 {
			break
		}
		resized := imaging.Resize(level, nextW, nextH, imaging.Lanczos)
		next := image.NewGray(resized.Bounds())
		for y := resized.Bounds().Min.Y; y < resized.Bounds().Max.Y; y++ {
			for x := resized.Bounds().Min.X; x < resized.Bounds().Max.X; x++ {
				next.Set(x, y, resized.At(x, y))
			}
		}
		level = next
	}

	if rows == nil {
		rows = descriptor.Matrix{}
	}
	return keypoints, rows, nil
}

// ExtractFromBytes decodes raw image bytes and extracts their descriptor
// matrix in one step; match.Engine.Match uses it for raw query bytes.
func ExtractFromBytes(raw []byte) (descriptor.Matrix, error) {
	img, err := imagingpre.Decode(raw)
	if err != nil {
		return nil, err
	}
	_, rows, err := Extract(img)
	return rows, err
}

// computeRow samples the fixed pattern of intensity-comparison pairs around
// (cx, cy), rotated by angle, and packs the 488 comparison bits into a
// RowWidth-byte descriptor row.
func computeRow(img *image.Gray, cx, cy int, angle float64) ([]byte, bool) {
	b := img.Bounds()
	if cx-patchMargin < b.Min.X || cx+patchMargin >= b.Max.X ||
		cy-patchMargin < b.Min.Y || cy+patchMargin >= b.Max.Y {
		return nil, false
	}

	cosA, sinA := math.Cos(angle), math.Sin(angle)
	row := make([]byte, descriptor.RowWidth)
	for i, p := range samplePattern {
		x1, y1 := rotate(p.x1, p.y1, cosA, sinA)
		x2, y2 := rotate(p.x2, p.y2, cosA, sinA)

		v1 := img.GrayAt(cx+x1, cy+y1).Y
		v2 := img.GrayAt(cx+x2, cy+y2).Y
		if v1 < v2 {
			row[i/8] |= 1 << uint(7-i%8)
		}
	}
	return row, true
}

func rotate(dx, dy int8, cosA, sinA float64) (int, int) {
	fx, fy := float64(dx), float64(dy)
	rx := fx*cosA - fy*sinA
	ry := fx*sinA + fy*cosA
	return int(math.Round(rx)), int(math.Round(ry))
}
