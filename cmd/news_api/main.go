// Package main News Hunter API
// @title News Hunter API
// @version 1.0
// @description Criteria-driven article listing and search over PostgreSQL or Elasticsearch
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.email support@newshunter.com
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/DjordjeVuckovic/apikit/docs"
	"github.com/DjordjeVuckovic/apikit/internal/domain"
	"github.com/DjordjeVuckovic/apikit/internal/router"
	"github.com/DjordjeVuckovic/apikit/internal/server"
	"github.com/DjordjeVuckovic/apikit/internal/storage/factory"
	"github.com/DjordjeVuckovic/apikit/internal/storage/pg"
	"github.com/DjordjeVuckovic/apikit/pkg/access"
	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	"github.com/DjordjeVuckovic/apikit/pkg/cache"
	"github.com/DjordjeVuckovic/apikit/pkg/i18n"
	"github.com/DjordjeVuckovic/apikit/pkg/jsonconv"
	"github.com/DjordjeVuckovic/apikit/pkg/rest"
	pkgserver "github.com/DjordjeVuckovic/apikit/pkg/server"
	"github.com/labstack/echo/v4"
)

func main() {
	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       sCfg.LogLevel,
		ReplaceAttr: apperr.ReplaceLevel,
	})))

	cfg, err := LoadAppConfig()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	translator, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		slog.Error("Failed to load translations", "error", err)
		os.Exit(1)
	}
	policy, err := access.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		slog.Error("Failed to load access policy", "path", cfg.PolicyPath, "error", err)
		os.Exit(1)
	}

	converter := jsonconv.New()
	svc := rest.NewService(translator, converter,
		rest.WithPolicy(policy),
		rest.WithUserResolver(cfg.Tokens.Resolve),
	)

	health := pkgserver.NewCompositeHealthChecker()
	s := server.New(sCfg, health).
		SetupMiddlewares().
		SetupErrorHandler(apperr.WithTranslator(svc.Trans)).
		SetupValidator(converter).
		SetupHealthChecks().
		SetupOpenApi()

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "News Hunter API is running")
	})

	pool, err := factory.NewPool(s.Context(), cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	health.Add("postgres", pkgserver.HealthFunc(pool.Healthy))

	articles, err := pg.NewManager[domain.Article](pool.GetConn(), "articles",
		pg.WithEntity[domain.Article]("article"),
		pg.WithOrderBy[domain.Article]("{alias}.created_at DESC, {alias}.id"),
	)
	if err != nil {
		slog.Error("Failed to create article manager", "error", err)
		os.Exit(1)
	}

	searcher, err := factory.NewSearcher(cfg.StorageConfig, articles, "a")
	if err != nil {
		slog.Error("Failed to create storage searcher", "error", err)
		os.Exit(1)
	}
	if hc, ok := searcher.(pkgserver.HealthChecker); ok {
		health.Add(string(searcher.Backend()), hc)
	}

	caches := cache.New(*cfg.CacheConfig)
	defer caches.Close()
	articleCache, err := cfg.openCache(caches)
	if err != nil {
		slog.Error("Failed to open cache", "driver", cfg.CacheDriver, "error", err)
		os.Exit(1)
	}
	if rp, ok := articleCache.(*cache.RedisPool); ok {
		health.Add("redis", pkgserver.HealthFunc(func(ctx context.Context) bool {
			return rp.Ping(ctx) == nil
		}))
	}

	router.NewArticlesRouter(s.Echo, svc, articles, searcher,
		router.WithCache(articleCache, cfg.CacheTTL),
	).Bind()

	slog.Info("Storage ready", "search", searcher.Backend(), "cache", cfg.CacheDriver, "env", cfg.Env)

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	if err := s.Start(); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
