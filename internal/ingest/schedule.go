package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"k8s.io/klog/v2"

	"github.com/knight-ops/inkwell/internal/metrics"
)

// cronSpec runs once every 24 hours (§4.5: "the job re-runs on a 24-hour
// periodic cadence").
const cronSpec = "@every 24h"

// Publisher rebuilds and publishes the in-memory index after a successful
// ingestion run (§4.5: "after each successful run, the Index is rebuilt and
// published").
type Publisher interface {
	Rebuild(ctx context.Context) error
}

// Scheduler drives the recurring ingestion job: fetch the catalog source,
// run the job, and rebuild the index on success.
type Scheduler struct {
	CatalogURL string
	Job        *Job
	Index      Publisher
	Client     *http.Client

	cron *cron.Cron
}

// NewScheduler wires catalogURL, a ready-to-run ingestion Job, and an index
// Publisher into a cron-driven scheduler.
func NewScheduler(catalogURL string, job *Job, index Publisher, client *http.Client) *Scheduler {
	if client == nil {
		client = http.DefaultClient
	}
	return &Scheduler{CatalogURL: catalogURL, Job: job, Index: index, Client: client, cron: cron.New()}
}

// Start registers the periodic run and starts the cron scheduler's own
// goroutine loop; it returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(cronSpec, func() {
		if err := s.RunOnce(ctx); err != nil {
			klog.Errorf("ingest: scheduled run failed: %s", err)
		}
	})
	if err != nil {
		return fmt.Errorf("ingest: register schedule: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any in-progress run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce fetches the catalog source, runs the ingestion job, and rebuilds
// the index on success — the same sequence Start schedules every 24 hours.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.IngestionDurationSeconds.Observe(time.Since(start).Seconds()) }()

	items, err := s.fetchItems(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog source: %w", err)
	}

	if err := s.Job.Run(ctx, items); err != nil {
		return fmt.Errorf("run ingestion job: %w", err)
	}

	if err := s.Index.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	return nil
}

func (s *Scheduler) fetchItems(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.CatalogURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, body)
	}
	return DecodeSource(resp.Body)
}
