package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	"github.com/DjordjeVuckovic/apikit/pkg/pagination"
)

// GroupList is the serialization group list responses are filtered by.
const GroupList = "list"

// Source is a countable, pageable collection.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Fetch(ctx context.Context, limit, offset int) ([]T, error)
}

// SourceFuncs adapts two functions to Source.
type SourceFuncs[T any] struct {
	CountFunc func(ctx context.Context) (int64, error)
	FetchFunc func(ctx context.Context, limit, offset int) ([]T, error)
}

func (s SourceFuncs[T]) Count(ctx context.Context) (int64, error) {
	return s.CountFunc(ctx)
}

func (s SourceFuncs[T]) Fetch(ctx context.Context, limit, offset int) ([]T, error) {
	return s.FetchFunc(ctx, limit, offset)
}

// List reads page and limit from the query, counts src, builds page links
// for the named route and writes one page of items in the "list" group.
// When routeName is empty the links point at the request path.
func List[T any](rc *Context, src Source[T], routeName string, pathParams ...any) error {
	page, err := Page(rc, src, routeName, pathParams...)
	if err != nil {
		return rc.FailWith(err)
	}
	return rc.RespondConverted(page, []string{GroupList}, http.StatusOK)
}

// Page builds the collection List writes.
func Page[T any](rc *Context, src Source[T], routeName string, pathParams ...any) (*pagination.Collection[T], error) {
	query := rc.QueryParams()
	req, err := pagination.ParseOffsetRequest(query)
	if err != nil {
		return nil, err
	}

	ctx := rc.Request().Context()
	total, err := src.Count(ctx)
	if err != nil {
		return nil, internal(err)
	}

	links, err := pagination.Paginate(req.Page, total, req.Limit, query, rc.urlBuilder(routeName, pathParams...))
	if err != nil {
		return nil, err
	}

	items, err := src.Fetch(ctx, req.Limit, req.Offset())
	if err != nil {
		return nil, internal(err)
	}
	return pagination.NewCollection(items, total, req.Page, req.Limit, links), nil
}

func (rc *Context) urlBuilder(routeName string, pathParams ...any) pagination.URLBuilder {
	path := rc.Request().URL.Path
	if routeName != "" {
		if p := rc.Echo().Reverse(routeName, pathParams...); p != "" {
			path = p
		}
	}
	return func(page int, params url.Values) string {
		return pagination.PathBuilder(path)(page, params)
	}
}

// internal keeps errors that already carry a status, such as rejected
// criteria, and turns the rest into 500s.
func internal(err error) error {
	if apperr.CodeOf(err) != 0 {
		return err
	}
	return apperr.Internal(err)
}
