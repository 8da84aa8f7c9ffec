// Package ingest imports article datasets into storage in batches.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/apikit/internal/domain"
)

const defaultBatchSize = 1000

// Validator checks an input before it is written. jsonconv.Converter
// satisfies it.
type Validator interface {
	Validate(i any) error
}

// Store inserts articles. *pg.Manager[domain.Article] satisfies it.
type Store interface {
	Insert(ctx context.Context, values map[string]any) (int64, error)
	GetByID(ctx context.Context, id any) (*domain.Article, error)
}

// Indexer mirrors stored articles into a search index.
// *es.Finder[domain.Article] satisfies it.
type Indexer interface {
	Index(ctx context.Context, id string, doc domain.Article) error
}

type Stats struct {
	Read     int
	Imported int
	Indexed  int
	Failed   int
	Batches  int
}

type Pipeline struct {
	name      string
	mapping   *Mapping
	validator Validator
	store     Store
	indexer   Indexer
	batchSize int
}

type PipelineOption func(*Pipeline)

func WithBatchSize(size int) PipelineOption {
	return func(p *Pipeline) {
		if size > 0 {
			p.batchSize = size
		}
	}
}

func WithIndexer(ix Indexer) PipelineOption {
	return func(p *Pipeline) {
		p.indexer = ix
	}
}

func WithValidator(v Validator) PipelineOption {
	return func(p *Pipeline) {
		p.validator = v
	}
}

func NewPipeline(m *Mapping, store Store, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		name:      m.Dataset,
		mapping:   m,
		store:     store,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drains records, writing valid articles batch by batch. Bad rows are
// logged and counted, never fatal. It returns ctx.Err() when cancelled.
func (p *Pipeline) Run(ctx context.Context, records <-chan Record) (Stats, error) {
	start := time.Now()
	slog.Info("Starting import", "dataset", p.name, "batch_size", p.batchSize, "indexing", p.indexer != nil)

	var stats Stats
	batch := make([]domain.ArticleInput, 0, p.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		p.write(ctx, batch, &stats)
		stats.Batches++
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Import cancelled", "dataset", p.name, "imported", stats.Imported, "pending", len(batch))
			return stats, ctx.Err()
		case rec, ok := <-records:
			if !ok {
				flush()
				slog.Info("Import completed",
					"dataset", p.name,
					"read", stats.Read,
					"imported", stats.Imported,
					"indexed", stats.Indexed,
					"failed", stats.Failed,
					"batches", stats.Batches,
					"duration", time.Since(start),
				)
				return stats, nil
			}
			stats.Read++

			in, err := p.prepare(rec)
			if err != nil {
				slog.Warn("Skipping record", "dataset", p.name, "line", rec.Line, "error", err)
				stats.Failed++
				continue
			}
			batch = append(batch, in)
			if len(batch) >= p.batchSize {
				flush()
			}
		}
	}
}

func (p *Pipeline) prepare(rec Record) (domain.ArticleInput, error) {
	if rec.Err != nil {
		return domain.ArticleInput{}, rec.Err
	}
	in, err := p.mapping.Map(rec.Fields)
	if err != nil {
		return domain.ArticleInput{}, err
	}
	if p.validator != nil {
		if err := p.validator.Validate(in); err != nil {
			return domain.ArticleInput{}, err
		}
	}
	return in, nil
}

func (p *Pipeline) write(ctx context.Context, batch []domain.ArticleInput, stats *Stats) {
	for _, in := range batch {
		id, err := p.store.Insert(ctx, in.Columns())
		if err != nil {
			slog.Error("Error saving article", "dataset", p.name, "title", in.Title, "error", err)
			stats.Failed++
			continue
		}
		stats.Imported++

		if p.indexer == nil {
			continue
		}
		if err := p.index(ctx, id); err != nil {
			slog.Error("Error indexing article", "dataset", p.name, "id", id, "error", err)
			continue
		}
		stats.Indexed++
	}
	slog.Debug("Batch written", "dataset", p.name, "size", len(batch), "imported", stats.Imported)
}

func (p *Pipeline) index(ctx context.Context, id int64) error {
	a, err := p.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("article %d vanished before indexing", id)
	}
	return p.indexer.Index(ctx, strconv.FormatInt(id, 10), *a)
}
