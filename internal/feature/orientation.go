package feature

import (
	"image"
	"math"
)

// orientation computes a keypoint's dominant gradient direction via the
// intensity-centroid method (the ORB/moment-based approach AKAZE's MLDB
// descriptor also relies on for rotation invariance): the patch's first
// moments give a vector from the patch center toward its "center of mass"
// of intensity, and that vector's angle is the keypoint orientation.
func orientation(img *image.Gray, cx, cy int) float64 {
	var m01, m10 float64
	b := img.Bounds()
	for dy := -PatchRadius; dy <= PatchRadius; dy++ {
		y := cy + dy
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		for dx := -PatchRadius; dx <= PatchRadius; dx++ {
			x := cx + dx
			if x < b.Min.X || x >= b.Max.X {
				continue
			}
			intensity := float64(img.GrayAt(x, y).Y)
			m10 += float64(dx) * intensity
			m01 += float64(dy) * intensity
		}
	}
	if m01 == 0 && m10 == 0 {
		return 0
	}
	return math.Atan2(m01, m10)
}
