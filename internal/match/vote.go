package match

// loweRatio is Lowe's ratio test threshold from the SIFT/AKAZE matching
// literature: a query descriptor is only "good" if its nearest neighbor is
// meaningfully closer than its second nearest, which rejects ambiguous
// matches against repetitive or low-texture regions.
const loweRatio = 0.75

// minGoodMatches is the minimum vote count a reference must accumulate
// before it is returned as a match at all (§4.7, §9).
const minGoodMatches = 50

// neighbor is one entry of a k=2 brute-force Hamming search result.
type neighbor struct {
	imgIdx   int
	distance int
}

// trainingRow is one flattened descriptor row tagged with the reference
// image it belongs to, pooled across every reference in the snapshot so a
// single k=2 search covers the whole catalog in one pass.
type trainingRow struct {
	imgIdx int
	row    []byte
}

// knn2 finds the best and second-best training row for a single query
// descriptor by brute-force Hamming distance. ok is false if fewer than two
// training rows exist.
func knn2(query []byte, pool []trainingRow) (best, second neighbor, ok bool) {
	best = neighbor{distance: -1}
	second = neighbor{distance: -1}

	for _, t := range pool {
		d := HammingDistance(query, t.row)
		switch {
		case best.distance == -1 || d < best.distance:
			second = best
			best = neighbor{imgIdx: t.imgIdx, distance: d}
		case second.distance == -1 || d < second.distance:
			second = neighbor{imgIdx: t.imgIdx, distance: d}
		}
	}

	if best.distance == -1 || second.distance == -1 {
		return best, second, false
	}
	return best, second, true
}

// tallyVotes runs every query row through knn2 against pool and returns a
// vote count per imgIdx for rows that pass the Lowe ratio test.
func tallyVotes(queryRows [][]byte, pool []trainingRow) map[int]int {
	votes := make(map[int]int)
	for _, q := range queryRows {
		best, second, ok := knn2(q, pool)
		if !ok {
			continue
		}
		if second.distance == 0 {
			continue
		}
		if float64(best.distance) >= loweRatio*float64(second.distance) {
			continue
		}
		votes[best.imgIdx]++
	}
	return votes
}

// winner picks the imgIdx with the most votes, breaking ties by the lowest
// imgIdx so results are deterministic across runs. ok is false if no
// reference reached minGoodMatches.
func winner(votes map[int]int) (imgIdx int, count int, ok bool) {
	bestIdx, bestCount := -1, -1
	for idx, c := range votes {
		if c > bestCount || (c == bestCount && idx < bestIdx) {
			bestIdx, bestCount = idx, c
		}
	}
	if bestIdx == -1 || bestCount < minGoodMatches {
		return 0, 0, false
	}
	return bestIdx, bestCount, true
}
