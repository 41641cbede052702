package ingest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/knight-ops/inkwell/internal/catalog"
	"github.com/knight-ops/inkwell/internal/descriptor"
	"github.com/knight-ops/inkwell/internal/feature"
	imagingpre "github.com/knight-ops/inkwell/internal/imaging"
	"github.com/knight-ops/inkwell/internal/phash"
)

// concurrencyLimit bounds in-flight per-item ingestion tasks (§4.5,
// CONCURRENCY_LIMIT = 10). The bound is enforced by errgroup.Group.SetLimit,
// the same jobs-in-flight idea as the teacher's channel-fed worker pool
// (downloader/downloader.go) expressed with the stdlib-adjacent errgroup
// helper rather than a hand-rolled jobs channel.
const concurrencyLimit = 10

// Store is the subset of catalog.Store ingestion needs.
type Store interface {
	Upsert(ctx context.Context, rec catalog.CardRecord) error
	UpsertMetadataOnly(ctx context.Context, id, name, subtitle, rarity, setCode string, cardNumber uint32) error
	HasComplete(ctx context.Context, id string) (bool, error)
}

// Job runs one ingestion pass over a fetched catalog against a single
// image directory, isolating per-item failures so one bad reference image
// never aborts the run (§4.5, §7).
type Job struct {
	Store     Store
	ImageDir  string
	Client    *http.Client

	// ShowProgress renders an mpb progress bar for interactive CLI runs
	// (the `ingest` subcommand). The scheduled background run leaves this
	// false; a bar on a server's stdout would just be log noise.
	ShowProgress bool
}

// NewJob returns a Job ready to Run against store, writing reference images
// under imageDir. A nil client defaults to http.DefaultClient.
func NewJob(store Store, imageDir string, client *http.Client) *Job {
	if client == nil {
		client = http.DefaultClient
	}
	return &Job{Store: store, ImageDir: imageDir, Client: client}
}

// Run processes every item under concurrencyLimit in-flight tasks. It
// returns an error only on a setup failure; per-item failures are logged
// and skipped, and are also aggregated into a multierr.Error so the run
// summary reports how many items failed without aborting on any one of
// them.
func (j *Job) Run(ctx context.Context, items []Item) error {
	runID := uuid.New().String()
	klog.Infof("ingest[%s]: starting run over %d catalog items", runID, len(items))

	var progress *mpb.Progress
	var bar *mpb.Bar
	if j.ShowProgress {
		progress = mpb.New()
		bar = progress.AddBar(int64(len(items)),
			mpb.PrependDecorators(decor.Name("ingest")),
			mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyLimit)

	var mu sync.Mutex
	var errs error

	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := j.processItem(gctx, item); err != nil {
				klog.Warningf("ingest[%s]: skipping %s: %s", runID, item.ID, err)
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", item.ID, err))
				mu.Unlock()
			}
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("ingest[%s]: run: %w", runID, err)
	}
	if progress != nil {
		progress.Wait()
	}

	failed := len(multierr.Errors(errs))
	klog.Infof("ingest[%s]: run complete, %d/%d items failed", runID, failed, len(items))
	return nil
}

// processItem implements the per-card steps of §4.5: construct the image
// path, download if absent, and either fully reprocess (decode, hash,
// extract, upsert) or refresh metadata only.
func (j *Job) processItem(ctx context.Context, item Item) error {
	localPath := filepath.Join(j.ImageDir, item.ID+".jpg")
	dbImageURL := path.Join("card_images", item.ID+".jpg")

	downloaded := false
	if !fileExists(localPath) {
		result, err := downloadImage(ctx, j.Client, item.ImageURL, localPath)
		if err != nil {
			return err
		}
		klog.V(3).Infof("ingest: %s wrote %d bytes (hash %x)", item.ID, result.bytesWritten, result.contentHash)
		downloaded = true
	}

	complete, err := j.Store.HasComplete(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("check existing record: %w", err)
	}

	if downloaded || !complete {
		return j.processFull(ctx, item, localPath, dbImageURL)
	}
	return j.Store.UpsertMetadataOnly(ctx, item.ID, item.Name, item.Subtitle, item.Rarity, item.SetCode, item.CardNumber)
}

func (j *Job) processFull(ctx context.Context, item Item, localPath, dbImageURL string) error {
	raw, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	img, err := imagingpre.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	processed := imagingpre.Preprocess(img)
	hash := phash.Compute(processed)

	_, descriptors, err := feature.Extract(img)
	if err != nil {
		return fmt.Errorf("extract features: %w", err)
	}

	rec := catalog.CardRecord{
		ID:         item.ID,
		Name:       item.Name,
		Subtitle:   item.Subtitle,
		SetCode:    item.SetCode,
		CardNumber: item.CardNumber,
		Rarity:     item.Rarity,
		ImageURL:   dbImageURL,
		PHash:      phash.Hex(hash),
		AkazeData:  descriptor.Encode(descriptors),
	}

	if err := j.Store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	klog.Infof("ingest: processed %s: %s [%s]", item.ID, item.Name, rec.PHash)
	return nil
}
