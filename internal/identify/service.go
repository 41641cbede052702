// Package identify orchestrates a single scan request: decode the
// submitted image, extract descriptors, match against the current index,
// and update the scan counter (§4.9).
package identify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"

	"github.com/knight-ops/inkwell/internal/catalog"
	"github.com/knight-ops/inkwell/internal/feature"
	imagingpre "github.com/knight-ops/inkwell/internal/imaging"
	"github.com/knight-ops/inkwell/internal/index"
	"github.com/knight-ops/inkwell/internal/match"
	"github.com/knight-ops/inkwell/internal/metrics"
	"github.com/knight-ops/inkwell/internal/scan"
)

// Result is the service's response: ScanResult from §3, with Card nil on
// any failure transition (decode, extract, match, or an empty index).
type Result struct {
	Card             *catalog.CardRecord
	Confidence       float64
	GlobalTotalScans uint64
}

// Index is the subset of *index.Index the service needs.
type Index interface {
	Current() *index.Snapshot
}

// Service wires together decode, feature extraction, matching, and the
// scan counter. CPU-bound work runs on a dedicated Pool so the
// request-accepting path stays responsive (§4.9, §5).
type Service struct {
	Index           Index
	Engine          *match.Engine
	Counter         *scan.Counter
	Pool            *Pool
	CapturedImagesDir string
}

// NewService wires the identification pipeline. capturedImagesDir may be
// empty, disabling the debug snapshot toggle.
func NewService(idx Index, engine *match.Engine, counter *scan.Counter, pool *Pool, capturedImagesDir string) *Service {
	return &Service{Index: idx, Engine: engine, Counter: counter, Pool: pool, CapturedImagesDir: capturedImagesDir}
}

// Identify runs the full pipeline for one submitted image. It never
// returns an error for a failed match: every failure transition in §4.7's
// state machine degrades to a no-match Result, matching §7's "handlers
// always return 200" contract. A pool submission failure (such as a
// canceled context) also degrades to no-match, so the returned error is
// always nil.
func (s *Service) Identify(ctx context.Context, raw []byte) (Result, error) {
	s.maybeCaptureDebugImage(raw)

	start := time.Now()
	res, err := s.Pool.Submit(ctx, func() (match.Result, error) {
		return s.runPipeline(raw)
	})
	metrics.MatchDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		klog.Warningf("identify: pipeline failed: %s", err)
		res = match.Result{}
	}

	if res.Card != nil {
		metrics.ScansTotal.WithLabelValues("match").Inc()
		s.Counter.RecordMatch(ctx)
	} else {
		metrics.ScansTotal.WithLabelValues("no_match").Inc()
	}

	total, err := s.Counter.Total(ctx)
	if err != nil {
		klog.Warningf("identify: failed to read scan counter: %s", err)
	}

	return Result{Card: res.Card, Confidence: res.Confidence, GlobalTotalScans: total}, nil
}

// runPipeline implements the Init -> Decoded -> Extracted -> Matched state
// machine; any stage failure returns a zero-value match.Result rather than
// propagating, so a single bad request never surfaces an HTTP error.
func (s *Service) runPipeline(raw []byte) (match.Result, error) {
	img, err := imagingpre.Decode(raw)
	if err != nil {
		klog.Infof("identify: decode failed: %s", err)
		return match.Result{}, nil
	}

	_, descriptors, err := feature.Extract(img)
	if err != nil {
		klog.Infof("identify: extraction failed: %s", err)
		return match.Result{}, nil
	}

	snap := s.Index.Current()
	res, err := s.Engine.MatchDescriptors(context.Background(), descriptors, snap)
	if err != nil {
		klog.Infof("identify: match failed: %s", err)
		return match.Result{}, nil
	}
	return res, nil
}

// maybeCaptureDebugImage writes raw to CapturedImagesDir when configured,
// for offline debugging of misidentifications. Failures are logged, never
// propagated: the debug snapshot is never load-bearing for the response.
func (s *Service) maybeCaptureDebugImage(raw []byte) {
	if s.CapturedImagesDir == "" {
		return
	}
	name := fmt.Sprintf("img_%d.jpg", time.Now().UnixMilli())
	path := filepath.Join(s.CapturedImagesDir, name)
	if err := os.MkdirAll(s.CapturedImagesDir, 0o755); err != nil {
		klog.Warningf("identify: failed to create captured images dir: %s", err)
		return
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		klog.Warningf("identify: failed to write captured image: %s", err)
	}
}
