package feature

import (
	"math/rand"

	"github.com/knight-ops/inkwell/internal/descriptor"
)

// PatchRadius is the half-width of the square patch a descriptor is sampled
// from, in pixels, at whatever pyramid scale a keypoint was detected at.
const PatchRadius = 15

// patchMargin is the border a keypoint must keep from the image edge: a
// sample offset of PatchRadius on both axes can rotate to roughly
// PatchRadius*sqrt(2) from center, so detection and sampling both need the
// larger margin to avoid silently zero-sampling off the edge of the image.
const patchMargin = 23

// numPairs is the number of intensity-comparison pairs packed into a
// descriptor row: RowWidth bytes * 8 bits == 488 pairs.
const numPairs = descriptor.RowWidth * 8

type samplePair struct {
	x1, y1, x2, y2 int8
}

// samplePattern is the fixed set of (p1, p2) offset pairs the binary
// descriptor compares, generated once from a fixed seed so that every
// process — ingestion and query alike — samples identical offsets. This
// mirrors the role of a BRIEF/ORB pattern table: without a fixed pattern,
// descriptors computed in different runs would not be comparable by
// Hamming distance.
var samplePattern = generatePattern()

func generatePattern() [numPairs]samplePair {
	rng := rand.New(rand.NewSource(1337))
	var pattern [numPairs]samplePair
	for i := range pattern {
		pattern[i] = samplePair{
			x1: randOffset(rng),
			y1: randOffset(rng),
			x2: randOffset(rng),
			y2: randOffset(rng),
		}
	}
	return pattern
}

func randOffset(rng *rand.Rand) int8 {
	// Gaussian-ish offset within the patch radius, biased toward the
	// center the way the classic BRIEF pattern is (isotropic Gaussian,
	// sigma = radius/2), clamped to stay inside the patch.
	v := rng.NormFloat64() * (PatchRadius / 2.0)
	if v > PatchRadius {
		v = PatchRadius
	}
	if v < -PatchRadius {
		v = -PatchRadius
	}
	return int8(v)
}
