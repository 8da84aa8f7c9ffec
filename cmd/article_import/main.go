// Command article_import loads a CSV dataset into the articles table and,
// when Elasticsearch is configured, mirrors every row into the index.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DjordjeVuckovic/apikit/internal/domain"
	"github.com/DjordjeVuckovic/apikit/internal/ingest"
	"github.com/DjordjeVuckovic/apikit/internal/storage/es"
	"github.com/DjordjeVuckovic/apikit/internal/storage/factory"
	"github.com/DjordjeVuckovic/apikit/internal/storage/pg"
	"github.com/DjordjeVuckovic/apikit/pkg/config/env"
	"github.com/DjordjeVuckovic/apikit/pkg/jsonconv"
)

func main() {
	mappingPath := flag.String("mapping", env.String("MAPPING_CONFIG_PATH", ""), "Path to the YAML column mapping")
	datasetPath := flag.String("dataset", env.String("DATASET_PATH", ""), "Path to the CSV dataset")
	batchSize := flag.Int("batch", 1000, "Articles written per batch")
	index := flag.Bool("index", true, "Mirror imported articles into Elasticsearch when configured")
	flag.Parse()

	if *mappingPath == "" || *datasetPath == "" {
		slog.Error("Both -mapping and -dataset are required")
		flag.Usage()
		os.Exit(2)
	}

	if err := env.LoadDotEnv(env.AppEnv(), ".env"); err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *mappingPath, *datasetPath, *batchSize, *index); err != nil {
		slog.Error("Import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, mappingPath, datasetPath string, batchSize int, index bool) error {
	cfg, err := factory.LoadEnv()
	if err != nil {
		return err
	}

	mappingFile, err := os.Open(mappingPath)
	if err != nil {
		return err
	}
	defer mappingFile.Close()
	mapping, err := ingest.LoadMapping(mappingFile)
	if err != nil {
		return err
	}

	dataFile, err := os.Open(datasetPath)
	if err != nil {
		return err
	}
	defer dataFile.Close()

	pool, err := factory.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	articles, err := pg.NewManager[domain.Article](pool.GetConn(), "articles",
		pg.WithEntity[domain.Article]("article"))
	if err != nil {
		return err
	}

	opts := []ingest.PipelineOption{
		ingest.WithBatchSize(batchSize),
		ingest.WithValidator(jsonconv.New()),
	}
	if index && cfg.Es != nil {
		finder, err := es.NewFinder[domain.Article](*cfg.Es)
		if err != nil {
			return err
		}
		opts = append(opts, ingest.WithIndexer(finder))
	}

	records, err := ingest.NewCSVReader(dataFile).Stream(ctx)
	if err != nil {
		return err
	}

	_, err = ingest.NewPipeline(mapping, articles, opts...).Run(ctx, records)
	return err
}
