package pagination

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
)

// OffsetRequest is a page/limit request.
type OffsetRequest struct {
	Page  int `json:"page" query:"page"`
	Limit int `json:"limit" query:"limit"`
}

// ParseOffsetRequest reads page and limit from the query string. Missing
// values fall back to page 1 and DefaultLimit.
func ParseOffsetRequest(q url.Values) (OffsetRequest, error) {
	r := OffsetRequest{Page: 1, Limit: DefaultLimit}

	if raw := strings.TrimSpace(q.Get(ParamPage)); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return r, apperr.BadRequest(MsgInvalidPage)
		}
		r.Page = page
	}
	if raw := strings.TrimSpace(q.Get(ParamLimit)); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return r, apperr.BadRequest(MsgInvalidLimit)
		}
		r.Limit = limit
	}

	return r, r.Validate()
}

// Validate rejects pages below 1 and negative limits, and caps the limit at
// MaxLimit. A zero limit is allowed and means a single page holding every
// item; it is not capped.
func (r *OffsetRequest) Validate() error {
	if r.Page < 1 {
		return apperr.BadRequest(MsgInvalidPage)
	}
	if r.Limit < 0 {
		return apperr.BadRequest(MsgInvalidLimit)
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return nil
}

// Offset is the number of rows to skip.
func (r OffsetRequest) Offset() int {
	if r.Limit <= 0 {
		return 0
	}
	return (r.Page - 1) * r.Limit
}
