package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/apikit/pkg/criteria"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/refresh"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
)

// maxResultWindow is the default index.max_result_window; from+size past it
// is rejected by the cluster.
const maxResultWindow = 10_000

// Finder searches one index with criteria and decodes hit sources into T.
type Finder[T any] struct {
	client    *elasticsearch.TypedClient
	indexName string
	sortField string
}

func NewFinder[T any](config ClientConfig) (*Finder[T], error) {
	client, err := NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return NewFinderWithClient[T](client, config.IndexName), nil
}

func NewFinderWithClient[T any](client *elasticsearch.TypedClient, indexName string) *Finder[T] {
	return &Finder[T]{client: client, indexName: indexName, sortField: "id"}
}

// SortBy sets the field hits are ordered by, ascending. Empty keeps
// relevance order.
func (f *Finder[T]) SortBy(field string) *Finder[T] {
	f.sortField = field
	return f
}

// Search returns up to size documents matching cs, skipping from, and the
// total number of matches. A size of zero or less fetches every match.
func (f *Finder[T]) Search(ctx context.Context, cs criteria.Criteria, size, from int) ([]T, int64, error) {
	q, err := BuildQuery(cs)
	if err != nil {
		return nil, 0, err
	}

	if size <= 0 {
		total, err := f.Count(ctx, cs)
		if err != nil {
			return nil, 0, err
		}
		size = max(int(total)-from, 0)
		if from+size > maxResultWindow {
			slog.Warn("Unbounded search capped at result window", "index", f.indexName, "total", total, "window", maxResultWindow)
			size = max(maxResultWindow-from, 0)
		}
	}

	req := f.client.Search().
		Index(f.indexName).
		Query(q).
		From(from).
		Size(size)
	if f.sortField != "" {
		asc := sortorder.Asc
		req = req.Sort(&types.SortOptions{
			SortOptions: map[string]types.FieldSort{f.sortField: {Order: &asc}},
		})
	}

	res, err := req.Do(ctx)
	if err != nil {
		slog.Error("Elasticsearch query failed", "error", err, "index", f.indexName)
		return nil, 0, fmt.Errorf("failed to execute search: %w", err)
	}

	items := make([]T, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc T
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		items = append(items, doc)
	}

	var total int64
	if res.Hits.Total != nil {
		total = res.Hits.Total.Value
	}
	slog.Info("Es search results fetched", "index", f.indexName, "total_matches", total, "returned_count", len(items))
	return items, total, nil
}

// Count returns the number of documents matching cs.
func (f *Finder[T]) Count(ctx context.Context, cs criteria.Criteria) (int64, error) {
	q, err := BuildQuery(cs)
	if err != nil {
		return 0, err
	}
	res, err := f.client.Count().Index(f.indexName).Query(q).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return res.Count, nil
}

// Index stores doc under id and makes it visible to searches right away.
func (f *Finder[T]) Index(ctx context.Context, id string, doc T) error {
	res, err := f.client.Index(f.indexName).Id(id).Document(doc).Refresh(refresh.True).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	slog.Info("document indexed successfully", "id", id, "index", f.indexName, "result", res.Result)
	return nil
}

func (f *Finder[T]) Healthy(ctx context.Context) bool {
	ok, err := f.client.Ping().Do(ctx)
	return err == nil && ok
}

// Source binds cs to the finder for paged listing.
func (f *Finder[T]) Source(cs criteria.Criteria) *Query[T] {
	return &Query[T]{f: f, criteria: cs}
}

// Query is a criteria search bound to a finder.
type Query[T any] struct {
	f        *Finder[T]
	criteria criteria.Criteria
}

func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	return q.f.Count(ctx, q.criteria)
}

func (q *Query[T]) Fetch(ctx context.Context, limit, offset int) ([]T, error) {
	items, _, err := q.f.Search(ctx, q.criteria, limit, offset)
	return items, err
}
