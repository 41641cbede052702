package feature

import (
	"image"
	"sort"
)

// cornerResponse computes a FAST-style corner strength map over a grayscale
// image using Sobel gradient magnitude, the same signal an accelerated
// KAZE-family detector thresholds against when locating salient points.
func cornerResponse(img *image.Gray) [][]float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	resp := make([][]float64, h)
	for y := range resp {
		resp[y] = make([]float64, w)
	}

	px := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= h {
			y = h - 1
		}
		return float64(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1) +
				px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1)
			gy := -px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1) +
				px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)
			resp[y][x] = gx*gx + gy*gy
		}
	}
	return resp
}

type candidate struct {
	x, y  int
	score float64
}

// detectKeypoints finds local maxima of the corner-response map, excluding a
// patchMargin border (descriptors need a full rotated patch around each keypoint),
// and returns at most maxKeypoints candidates ordered by descending score.
func detectKeypoints(img *image.Gray, maxKeypoints int) []candidate {
	resp := cornerResponse(img)
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	const nmsWindow = 5
	var candidates []candidate
	for y := patchMargin; y < h-patchMargin; y++ {
		for x := patchMargin; x < w-patchMargin; x++ {
			v := resp[y][x]
			if v <= 0 {
				continue
			}
			if isLocalMax(resp, x, y, w, h, nmsWindow) {
				candidates = append(candidates, candidate{x: x, y: y, score: v})
			}
		}
	}

	sortCandidatesDesc(candidates)
	if len(candidates) > maxKeypoints {
		candidates = candidates[:maxKeypoints]
	}
	return candidates
}

func isLocalMax(resp [][]float64, x, y, w, h, window int) bool {
	v := resp[y][x]
	for dy := -window; dy <= window; dy++ {
		ny := y + dy
		if ny < 0 || ny >= h {
			continue
		}
		for dx := -window; dx <= window; dx++ {
			nx := x + dx
			if nx < 0 || nx >= w {
				continue
			}
			if dx == 0 && dy == 0 {
				continue
			}
			if resp[ny][nx] > v {
				return false
			}
		}
	}
	return true
}

func sortCandidatesDesc(c []candidate) {
	sort.Slice(c, func(i, j int) bool { return c[i].score > c[j].score })
}
