package testing

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/testcontainers/testcontainers-go"
	tces "github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultESImage = "docker.elastic.co/elasticsearch/elasticsearch:8.12.0"

// ArticleIndexMapping keeps the filterable article fields as keywords and
// title as text with a keyword sub-field.
const ArticleIndexMapping = `{
  "mappings": {
    "properties": {
      "id":        {"type": "long"},
      "title":     {"type": "keyword"},
      "content":   {"type": "text"},
      "author":    {"type": "keyword"},
      "language":  {"type": "keyword"},
      "category":  {"type": "keyword"},
      "createdAt": {"type": "date"}
    }
  }
}`

type ESContainer struct {
	Container testcontainers.Container
	Address   string
}

// NewESContainer starts a single-node cluster without security and
// terminates it when tb finishes.
func NewESContainer(ctx context.Context, tb testing.TB) *ESContainer {
	tb.Helper()

	c, err := tces.Run(ctx, defaultESImage,
		tces.WithPassword(""),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/").
				WithPort("9200").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		tb.Fatalf("failed to start elasticsearch container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c); err != nil {
			tb.Logf("failed to terminate elasticsearch container: %v", err)
		}
	})

	host, err := c.Host(ctx)
	if err != nil {
		tb.Fatalf("failed to get elasticsearch host: %v", err)
	}
	port, err := c.MappedPort(ctx, "9200")
	if err != nil {
		tb.Fatalf("failed to get elasticsearch port: %v", err)
	}

	return &ESContainer{
		Container: c,
		Address:   fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
}

// CreateIndex creates index with the given JSON body, e.g.
// ArticleIndexMapping.
func (c *ESContainer) CreateIndex(ctx context.Context, tb testing.TB, index, body string) {
	tb.Helper()

	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{Addresses: []string{c.Address}})
	if err != nil {
		tb.Fatalf("failed to create elasticsearch client: %v", err)
	}
	if _, err := client.Indices.Create(index).Raw(strings.NewReader(body)).Do(ctx); err != nil {
		tb.Fatalf("failed to create index %s: %v", index, err)
	}
}
