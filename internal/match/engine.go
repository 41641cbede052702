package match

import (
	"context"

	"github.com/knight-ops/inkwell/internal/catalog"
	"github.com/knight-ops/inkwell/internal/descriptor"
	"github.com/knight-ops/inkwell/internal/feature"
	"github.com/knight-ops/inkwell/internal/index"
)

// Result is the outcome of an identification attempt. Card is nil when no
// reference cleared minGoodMatches; Confidence is 0 in that case.
type Result struct {
	Card       *catalog.CardRecord
	Confidence float64
	Votes      int
}

// Engine runs the k=2 KNN + Lowe-ratio + vote-aggregation match described
// in §4.7. It holds no state of its own: every call builds its training
// pool fresh from whatever Snapshot the caller passes, so a concurrent
// index.Publish never affects a match already in flight.
type Engine struct{}

// NewEngine returns a ready-to-use Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Match extracts local features from img and matches them against snap in
// a single batched KNN pass, returning a no-match Result (Card == nil) when
// the image yields no features, the snapshot is empty, or no reference
// reaches minGoodMatches.
func (e *Engine) Match(ctx context.Context, img []byte, snap *index.Snapshot) (Result, error) {
	queryMatrix, err := extractQuery(img)
	if err != nil {
		return Result{}, err
	}
	return e.MatchDescriptors(ctx, queryMatrix, snap)
}

// MatchDescriptors runs the match against an already-extracted descriptor
// matrix, letting callers that already hold features (e.g. ingestion-time
// self-checks, tests) skip re-decoding and re-extracting an image.
func (e *Engine) MatchDescriptors(_ context.Context, query descriptor.Matrix, snap *index.Snapshot) (Result, error) {
	if query.Rows() == 0 || snap.Len() == 0 {
		return Result{}, nil
	}

	pool := flattenPool(snap)
	if len(pool) == 0 {
		return Result{}, nil
	}

	votes := tallyVotes(query, pool)
	idx, count, ok := winner(votes)
	if !ok {
		return Result{}, nil
	}

	rec := snap.Records[idx]
	confidence := float64(count) / 100.0
	if confidence > 1.0 {
		confidence = 1.0
	}
	return Result{Card: &rec, Confidence: confidence, Votes: count}, nil
}

// flattenPool pools every reference's descriptor rows into one slice tagged
// by imgIdx, the position of that reference in the snapshot, so a single
// brute-force search covers the whole catalog.
func flattenPool(snap *index.Snapshot) []trainingRow {
	total := 0
	for _, m := range snap.Matrices {
		total += m.Rows()
	}
	pool := make([]trainingRow, 0, total)
	for imgIdx, m := range snap.Matrices {
		for _, row := range m {
			pool = append(pool, trainingRow{imgIdx: imgIdx, row: row})
		}
	}
	return pool
}

// extractQuery decodes and preprocesses a raw image then extracts its
// AKAZE-style descriptor matrix, the same pipeline ingestion uses so query
// and reference descriptors are directly comparable.
func extractQuery(raw []byte) (descriptor.Matrix, error) {
	return feature.ExtractFromBytes(raw)
}
