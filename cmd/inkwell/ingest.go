package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/knight-ops/inkwell/internal/catalog"
	"github.com/knight-ops/inkwell/internal/config"
	"github.com/knight-ops/inkwell/internal/index"
	"github.com/knight-ops/inkwell/internal/ingest"
)

func newCmdIngest() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "run a single catalog ingestion pass and rebuild the index",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "progress", Usage: "show a progress bar on stdout", Value: true},
		},
		Action: func(c *cli.Context) error {
			return runIngestOnce(c.Context, c.Bool("progress"))
		},
	}
}

func runIngestOnce(ctx context.Context, showProgress bool) error {
	cfg := config.Load()
	if cfg.CatalogURL == "" {
		return fmt.Errorf("ingest: CATALOG_URL is not set")
	}

	store, err := catalog.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	idx := index.New()
	job := ingest.NewJob(store, cfg.CardImagesDir, http.DefaultClient)
	job.ShowProgress = showProgress
	sched := ingest.NewScheduler(cfg.CatalogURL, job, indexPublisher{store: store, idx: idx}, http.DefaultClient)

	if err := sched.RunOnce(ctx); err != nil {
		return err
	}
	klog.Infof("ingest: run complete, %d records indexed", idx.Current().Len())
	return nil
}
