// Command apicheck runs smoke probes against a running articles API and
// exits non-zero when any probe misses its expected status.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/DjordjeVuckovic/apikit/internal/apicheck"
	"github.com/DjordjeVuckovic/apikit/pkg/config/env"
	"github.com/DjordjeVuckovic/apikit/pkg/httpclient"
)

func main() {
	baseURL := flag.String("url", env.String("API_URL", "http://localhost:8080"), "API base URL")
	token := flag.String("token", env.String("API_TOKEN", ""), "Bearer token for probes that need one")
	timeout := flag.Duration("timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()

	client, err := httpclient.New(*baseURL, httpclient.WithTimeout(*timeout))
	if err != nil {
		slog.Error("Invalid API URL", "url", *baseURL, "error", err)
		os.Exit(2)
	}

	results := apicheck.NewChecker(client, *token).Run(context.Background(), apicheck.DefaultProbes())
	if err := apicheck.Render(os.Stdout, results); err != nil {
		slog.Error("Failed to render report", "error", err)
		os.Exit(1)
	}

	if failed := apicheck.Failed(results); failed > 0 {
		slog.Error("Smoke check failed", "failed", failed, "total", len(results))
		os.Exit(1)
	}
}
