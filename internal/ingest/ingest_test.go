package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/apikit/internal/domain"
	"github.com/DjordjeVuckovic/apikit/pkg/jsonconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mappingYAML = `
dataset: bbc-news
fields:
  - source: headline
    target: title
    required: true
  - source: body
    target: content
    required: true
  - source: lang
    target: language
  - source: byline
    target: author
`

const dataset = `headline,body,lang,byline
Go released,Fast compiles,English,Ann
,missing title,english,Bob
Too many,fields,english,Ann,extra
Rust news,Borrow checker,klingon,
Elixir,Actors,russian,
`

type memStore struct {
	rows    []domain.Article
	failOn  string
	lookups int
}

func (s *memStore) Insert(_ context.Context, values map[string]any) (int64, error) {
	if values["title"] == s.failOn {
		return 0, errors.New("insert failed")
	}
	a := domain.Article{
		ID:       int64(len(s.rows) + 1),
		Title:    values["title"].(string),
		Content:  values["content"].(string),
		Language: values["language"].(string),
	}
	if author, ok := values["author"].(*string); ok {
		a.Author = author
	}
	s.rows = append(s.rows, a)
	return a.ID, nil
}

func (s *memStore) GetByID(_ context.Context, id any) (*domain.Article, error) {
	s.lookups++
	for i := range s.rows {
		if s.rows[i].ID == id.(int64) {
			return &s.rows[i], nil
		}
	}
	return nil, nil
}

type memIndex map[string]domain.Article

func (ix memIndex) Index(_ context.Context, id string, doc domain.Article) error {
	ix[id] = doc
	return nil
}

func loadMapping(t *testing.T) *Mapping {
	t.Helper()
	m, err := LoadMapping(strings.NewReader(mappingYAML))
	require.NoError(t, err)
	return m
}

func stream(t *testing.T, data string) <-chan Record {
	t.Helper()
	records, err := NewCSVReader(strings.NewReader(data)).Stream(context.Background())
	require.NoError(t, err)
	return records
}

func TestLoadMapping_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "no dataset", yaml: "fields: [{source: a, target: title}]"},
		{name: "no fields", yaml: "dataset: x"},
		{name: "no source", yaml: "dataset: x\nfields: [{target: title}]"},
		{name: "unknown target", yaml: "dataset: x\nfields: [{source: a, target: views}]"},
		{name: "not yaml", yaml: "dataset: [x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMapping(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestMapping_Map(t *testing.T) {
	m := loadMapping(t)

	in, err := m.Map(map[string]string{"headline": " Go ", "body": "b", "lang": "Serbian", "byline": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Go", in.Title)
	assert.Equal(t, "serbian", in.Language)
	require.NotNil(t, in.Author)
	assert.Equal(t, "Ann", *in.Author)

	in, err = m.Map(map[string]string{"headline": "Go", "body": "b"})
	require.NoError(t, err)
	assert.Nil(t, in.Author)

	_, err = m.Map(map[string]string{"body": "b"})
	assert.ErrorContains(t, err, "headline")
}

func TestCSVReader_Stream(t *testing.T) {
	var recs []Record
	for rec := range stream(t, dataset) {
		recs = append(recs, rec)
	}

	require.Len(t, recs, 5)
	assert.Equal(t, 2, recs[0].Line)
	assert.Equal(t, "Go released", recs[0].Fields["headline"])
	assert.Error(t, recs[2].Err)

	_, err := NewCSVReader(strings.NewReader("")).Stream(context.Background())
	assert.Error(t, err)
}

func TestPipeline_Run(t *testing.T) {
	store := &memStore{failOn: "Elixir"}
	index := memIndex{}

	p := NewPipeline(loadMapping(t), store,
		WithBatchSize(2),
		WithValidator(jsonconv.New()),
		WithIndexer(index),
	)

	stats, err := p.Run(context.Background(), stream(t, dataset))
	require.NoError(t, err)

	assert.Equal(t, Stats{Read: 5, Imported: 1, Indexed: 1, Failed: 4, Batches: 1}, stats)
	require.Len(t, store.rows, 1)
	assert.Equal(t, "english", store.rows[0].Language)
	assert.Equal(t, "Go released", index["1"].Title)
}

func TestPipeline_DefaultsLanguage(t *testing.T) {
	store := &memStore{}
	m, err := LoadMapping(strings.NewReader("dataset: tiny\nfields:\n  - {source: t, target: title}\n  - {source: c, target: content}\n"))
	require.NoError(t, err)

	stats, err := NewPipeline(m, store, WithBatchSize(1)).Run(context.Background(), stream(t, "t,c\na,b\nc,d\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 2, stats.Batches)
	assert.Equal(t, domain.ArticleDefaultLanguage, store.rows[1].Language)
	assert.Zero(t, store.lookups, "nothing is read back without an indexer")
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(loadMapping(t), &memStore{}).Run(ctx, make(chan Record))
	assert.ErrorIs(t, err, context.Canceled)
}
