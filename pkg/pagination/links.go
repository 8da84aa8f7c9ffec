package pagination

import (
	"net/url"
	"strconv"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
)

// PageLink points at one page of a collection.
type PageLink struct {
	Number int    `json:"number" groups:"list"`
	Active bool   `json:"active" groups:"list"`
	URL    string `json:"url" groups:"list"`
}

// URLBuilder renders the URL of a page from its query parameters.
type URLBuilder func(page int, params url.Values) string

// PagesCount is ceil(total/limit), or 1 when limit is not positive.
func PagesCount(total int64, limit int) int {
	if limit <= 0 {
		return 1
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}

// CheckBounds fails with BadRequest for page < 1 and with NotFound when the
// page starts past the last row.
func CheckBounds(page int, total int64, limit int) error {
	if page < 1 {
		return apperr.BadRequest(MsgInvalidPage)
	}
	if limit <= 0 {
		return nil
	}
	offset := int64(page-1) * int64(limit)
	if offset > total {
		return apperr.NotFound(MsgPageNotFound).WithParams(map[string]string{
			"%page%": strconv.Itoa(page),
		})
	}
	return nil
}

// Links builds one link per page. Each link query has page, limit when it
// differs from DefaultLimit, and every parameter of extra except page and
// limit.
func Links(page int, total int64, limit int, extra url.Values, build URLBuilder) []PageLink {
	count := PagesCount(total, limit)
	links := make([]PageLink, 0, count)

	for n := 1; n <= count; n++ {
		params := url.Values{}
		for k, v := range extra {
			if k == ParamPage || k == ParamLimit {
				continue
			}
			params[k] = append([]string(nil), v...)
		}
		params.Set(ParamPage, strconv.Itoa(n))
		if limit != DefaultLimit {
			params.Set(ParamLimit, strconv.Itoa(limit))
		}

		links = append(links, PageLink{
			Number: n,
			Active: n == page,
			URL:    build(n, params),
		})
	}
	return links
}

// Paginate checks bounds and returns the page links. total must be counted
// before calling.
func Paginate(page int, total int64, limit int, extra url.Values, build URLBuilder) ([]PageLink, error) {
	if err := CheckBounds(page, total, limit); err != nil {
		return nil, err
	}
	return Links(page, total, limit, extra, build), nil
}

// PathBuilder returns a URLBuilder that appends the encoded query to path.
func PathBuilder(path string) URLBuilder {
	return func(_ int, params url.Values) string {
		if len(params) == 0 {
			return path
		}
		return path + "?" + params.Encode()
	}
}
