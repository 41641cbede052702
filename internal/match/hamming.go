// Package match implements the k-nearest-neighbor descriptor match: a
// Hamming-distance brute-force search over the current IndexSnapshot's
// descriptor stack, Lowe ratio filtering, and per-reference vote
// aggregation (§4.7). The batched form — one KNN call against every
// reference's descriptors pooled together — is authoritative; the
// per-reference re-initialized-matcher form the original implementation
// used is superseded and is not reproduced here (§9).
package match

import "math/bits"

// HammingDistance returns the number of differing bits between two
// descriptor rows of equal length (up to 488 for the spec's 61-byte rows).
func HammingDistance(a, b []byte) int {
	dist := 0
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dist += bits.OnesCount8(a[i] ^ b[i])
	}
	return dist
}
