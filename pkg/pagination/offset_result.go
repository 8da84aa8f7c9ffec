package pagination

// Collection is the list response body. Every field belongs to the "list"
// serialization group.
type Collection[T any] struct {
	Total      int64      `json:"total" groups:"list"`
	Page       int        `json:"page" groups:"list"`
	Limit      int        `json:"limit" groups:"list"`
	Items      []T        `json:"items" groups:"list"`
	Pagination []PageLink `json:"pagination" groups:"list"`
}

func NewCollection[T any](items []T, total int64, page, limit int, links []PageLink) *Collection[T] {
	if items == nil {
		items = []T{}
	}
	if links == nil {
		links = []PageLink{}
	}
	return &Collection[T]{
		Total:      total,
		Page:       page,
		Limit:      limit,
		Items:      items,
		Pagination: links,
	}
}

// HasMore reports whether pages follow the current one.
func (c *Collection[T]) HasMore() bool {
	if c.Limit <= 0 {
		return false
	}
	return int64(c.Page*c.Limit) < c.Total
}
