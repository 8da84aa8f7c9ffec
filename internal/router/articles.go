package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/apikit/internal/domain"
	"github.com/DjordjeVuckovic/apikit/internal/storage"
	"github.com/DjordjeVuckovic/apikit/internal/storage/pg"
	"github.com/DjordjeVuckovic/apikit/pkg/cache"
	"github.com/DjordjeVuckovic/apikit/pkg/criteria"
	"github.com/DjordjeVuckovic/apikit/pkg/rest"
	"github.com/DjordjeVuckovic/apikit/pkg/stringsutil"
	"github.com/labstack/echo/v4"
)

const (
	RouteList   = "Articles.list"
	RouteShow   = "Articles.show"
	RouteCreate = "Articles.create"
	RouteSearch = "Articles.search"
	RouteDelete = "Articles.delete"

	MsgCriteriaInvalid = "api.criteria.invalid"
	MsgDeleted         = "api.deleted"

	groupDetail = "detail"
)

// ArticleStore is the write side of the article table. Reads that take
// criteria go through the configured searcher.
type ArticleStore interface {
	GetByID(ctx context.Context, id any) (*domain.Article, error)
	Insert(ctx context.Context, values map[string]any) (int64, error)
	Delete(ctx context.Context, id any) error
}

type ArticlesRouter struct {
	e        *echo.Echo
	svc      *rest.Service
	store    ArticleStore
	searcher storage.Searcher[domain.Article]
	cache    cache.Pool
	cacheTTL time.Duration
}

type ArticlesRouterOption func(*ArticlesRouter)

// WithCache caches article lookups by id in pool.
func WithCache(pool cache.Pool, ttl time.Duration) ArticlesRouterOption {
	return func(r *ArticlesRouter) {
		r.cache = pool
		r.cacheTTL = ttl
	}
}

func NewArticlesRouter(
	e *echo.Echo,
	svc *rest.Service,
	store ArticleStore,
	searcher storage.Searcher[domain.Article],
	opts ...ArticlesRouterOption,
) *ArticlesRouter {
	r := &ArticlesRouter{
		e:        e,
		svc:      svc,
		store:    store,
		searcher: searcher,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ArticlesRouter) Bind() {
	g := r.e.Group("/articles", rest.Middleware(r.svc), rest.AccessControl(r.svc))

	g.GET("", r.list).Name = RouteList
	g.POST("", r.create).Name = RouteCreate
	g.POST("/search", r.search).Name = RouteSearch
	g.GET("/:id", r.show).Name = RouteShow
	g.DELETE("/:id", r.delete).Name = RouteDelete
}

// list godoc
// @Summary List articles
// @Description Paginated article list filtered by title (substring), language and authors
// @Tags articles
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param title query string false "Title substring, case insensitive"
// @Param language query string false "Language"
// @Param author query string false "Comma separated authors"
// @Success 200 {object} pagination.Collection[domain.Article]
// @Failure 400 {object} envelope.Failure
// @Failure 404 {object} envelope.Failure
// @Router /articles [get]
func (r *ArticlesRouter) list(c echo.Context) error {
	rc := rest.From(c)
	return rest.List[domain.Article](rc, r.searcher.Search(listCriteria(rc)), RouteList)
}

// listCriteria builds the filters of the list query string.
func listCriteria(rc *rest.Context) criteria.Criteria {
	var cs criteria.Criteria
	if title := rc.GetQuery("title", ""); title != "" {
		cs = append(cs, criteria.Op("title", criteria.OpLike, "%"+title+"%"))
	}
	if lang := rc.GetQuery("language", ""); lang != "" {
		cs = append(cs, criteria.Eq("language", lang))
	}
	if authors := stringsutil.SplitTrim(rc.GetQuery("author", ""), ","); len(authors) > 0 {
		cs = append(cs, criteria.Op("author", criteria.OpIn, authors))
	}
	return cs
}

// show godoc
// @Summary Get an article
// @Tags articles
// @Produce json
// @Param id path int true "Article id"
// @Success 200 {object} domain.Article
// @Failure 404 {object} envelope.Failure
// @Router /articles/{id} [get]
func (r *ArticlesRouter) show(c echo.Context) error {
	rc := rest.From(c)
	a, err := rest.GetObject[domain.Article](rc, rest.DefaultObjectKey, r.lookup)
	if err != nil {
		return rc.FailWith(err)
	}
	return rc.RespondConverted(a, []string{groupDetail}, http.StatusOK)
}

func (r *ArticlesRouter) lookup(ctx context.Context, raw string) (*domain.Article, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return nil, nil
	}
	key := cacheKey(id)

	if r.cache != nil {
		if item := r.cache.GetItem(ctx, key); item.IsHit() {
			var a domain.Article
			if err := item.Decode(&a); err == nil {
				return &a, nil
			}
		}
	}

	a, err := r.store.GetByID(ctx, id)
	if err != nil || a == nil {
		return a, err
	}

	if r.cache != nil {
		if item, err := cache.NewItem(key).Set(a); err == nil {
			r.cache.Save(ctx, item.ExpiresAfter(r.cacheTTL))
		}
	}
	return a, nil
}

// create godoc
// @Summary Create an article
// @Tags articles
// @Accept json
// @Produce json
// @Param article body domain.ArticleInput true "Article"
// @Success 201 {object} domain.Article
// @Failure 400 {object} envelope.Failure
// @Failure 401 {object} envelope.Failure
// @Failure 403 {object} envelope.Failure
// @Security BearerAuth
// @Router /articles [post]
func (r *ArticlesRouter) create(c echo.Context) error {
	rc := rest.From(c)

	var in domain.ArticleInput
	if err := r.svc.Converter().FromJSON(rc.Body(), &in); err != nil {
		return rc.FailWith(err)
	}

	ctx := rc.Request().Context()
	id, err := r.store.Insert(ctx, in.Columns())
	if err != nil {
		return rc.FailWith(err)
	}
	a, err := r.store.GetByID(ctx, id)
	if err != nil {
		return rc.FailWith(err)
	}

	rc.LogInfo("created article " + strconv.FormatInt(id, 10))
	return rc.RespondConverted(a, []string{groupDetail}, http.StatusCreated)
}

// search godoc
// @Summary Search articles by criteria
// @Description Body is a criteria object, e.g. {"language": "english", "title": ["like", "%go%"]}
// @Tags articles
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param criteria body object true "Search criteria"
// @Success 200 {object} pagination.Collection[domain.Article]
// @Failure 400 {object} envelope.Failure
// @Router /articles/search [post]
func (r *ArticlesRouter) search(c echo.Context) error {
	rc := rest.From(c)

	cs, err := criteria.FromJSON(rc.Body())
	if err != nil {
		return rc.FailWith(err)
	}
	if cs.HasRaw() {
		return rc.BadRequest(MsgCriteriaInvalid, nil)
	}

	return rest.List[domain.Article](rc, r.searcher.Search(cs), RouteSearch)
}

// delete godoc
// @Summary Delete an article
// @Tags articles
// @Produce json
// @Param id path int true "Article id"
// @Success 200 {object} envelope.Success
// @Failure 401 {object} envelope.Failure
// @Failure 403 {object} envelope.Failure
// @Failure 404 {object} envelope.Failure
// @Security BearerAuth
// @Router /articles/{id} [delete]
func (r *ArticlesRouter) delete(c echo.Context) error {
	rc := rest.From(c)

	id, err := strconv.ParseInt(rc.Param("id"), 10, 64)
	if err != nil {
		return rc.NotFound(rest.MsgObjectNotFound)
	}

	if err := r.store.Delete(rc.Request().Context(), id); err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return rc.NotFound(rest.MsgObjectNotFound)
		}
		return rc.FailWith(err)
	}
	if r.cache != nil {
		r.cache.DeleteItem(rc.Request().Context(), cacheKey(id))
	}

	rc.LogInfo("deleted article " + strconv.FormatInt(id, 10))
	return rc.Respond(http.StatusOK, rc.Trans(MsgDeleted, nil))
}

func cacheKey(id int64) string {
	return "article." + strconv.FormatInt(id, 10)
}
