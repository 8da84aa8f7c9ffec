package es

import (
	"context"
	"strconv"
	"testing"

	"github.com/DjordjeVuckovic/apikit/pkg/criteria"
	pkgtesting "github.com/DjordjeVuckovic/apikit/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Language string `json:"language"`
}

func TestFinder_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping elasticsearch integration test in short mode")
	}
	ctx := context.Background()
	c := pkgtesting.NewESContainer(ctx, t)
	c.CreateIndex(ctx, t, "articles_test", pkgtesting.ArticleIndexMapping)

	f, err := NewFinder[doc](ClientConfig{Addresses: []string{c.Address}, IndexName: "articles_test"})
	require.NoError(t, err)
	require.True(t, f.Healthy(ctx))

	docs := []doc{
		{ID: 1, Title: "Go generics", Language: "english"},
		{ID: 2, Title: "Rust traits", Language: "english"},
		{ID: 3, Title: "Go каналы", Language: "russian"},
	}
	for _, d := range docs {
		require.NoError(t, f.Index(ctx, strconv.Itoa(d.ID), d))
	}

	english := criteria.Criteria{criteria.Eq("language", "english")}
	items, total, err := f.Search(ctx, english, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)

	count, err := f.Count(ctx, criteria.Criteria{criteria.Op("title", criteria.OpLike, "%GO%")})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	page, err := f.Source(criteria.Criteria{criteria.Op("id", criteria.OpIn, []int{2, 3})}).Fetch(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 3, page[0].ID)
}
