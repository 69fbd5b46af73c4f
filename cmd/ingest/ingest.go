package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"

	"school-assist-be/internal/bootstrap"
	"school-assist-be/internal/config"
	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/pkg/database"
	"school-assist-be/pkg/retrieval"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type ingestOptions struct {
	Corpus string
	File   string
	Limit  int
}

// NewIngestCmd creates the command that embeds a dataset into the corpus store
func NewIngestCmd() *cobra.Command {
	opts := &ingestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed a CSV dataset into a retrieval corpus",
		Long: `Reads a CSV dataset, embeds every row and upserts it into the corpus store.

Rows are keyed by their position in the file, so running the command again
replaces the stored rows instead of duplicating them.

Corpora:
  ` + strings.Join(retrieval.Corpora(), "\n  ") + `

Examples:
  ingest --corpus karnataka_schools
  ingest --corpus ncert_books --file ./NCERT.csv --limit 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Corpus, "corpus", "", "Corpus to ingest into")
	cmd.Flags().StringVar(&opts.File, "file", "", "CSV file to read (defaults to the corpus dataset under INGEST_DATA_DIR)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of rows to ingest (0 for all)")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}

func runIngest(ctx context.Context, opts *ingestOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := retrieval.CheckCorpus(opts.Corpus); err != nil {
		return fmt.Errorf("%w: %s", err, opts.Corpus)
	}

	cfg := config.Load()

	path := opts.File
	if path == "" {
		path = filepath.Join(cfg.Ingest.DataDir, retrieval.DatasetPaths[opts.Corpus])
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	var stored, failed atomic.Int64
	pipeline, err := bootstrap.NewIngestPipeline(db, cfg, sysLogger, func(row dto.PublishCorpusRowMessage, err error) {
		if err != nil {
			failed.Add(1)
			return
		}
		if n := stored.Add(1); n%100 == 0 {
			color.Cyan("  %d rows stored", n)
		}
	})
	if err != nil {
		return err
	}

	if err := pipeline.Start(ctx); err != nil {
		return err
	}

	color.Yellow("Ingesting %s into %s...", path, opts.Corpus)
	queued, ingestErr := pipeline.Ingest.IngestCSV(ctx, opts.Corpus, file, opts.Limit)

	if err := pipeline.Close(); err != nil {
		color.Red("Warn: Failed to close pipeline: %v", err)
	}
	if ingestErr != nil {
		return ingestErr
	}

	color.Green("✅ Queued %d rows: %d stored, %d failed", queued, stored.Load(), failed.Load())
	if failed.Load() > 0 {
		return fmt.Errorf("%d rows failed to ingest", failed.Load())
	}
	return nil
}
