package rest

import (
	"context"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
)

// MsgObjectNotFound is the message of a missing object.
const MsgObjectNotFound = "api.object.not_found"

// DefaultObjectKey is the parameter GetObject reads the identifier from.
const DefaultObjectKey = "id"

// Lookup loads one object. It returns (nil, nil) when nothing matches.
type Lookup[T any] func(ctx context.Context, id string) (*T, error)

// GetObject reads the identifier from the key query or path parameter and
// loads it. A missing identifier or object is a NotFound error.
func GetObject[T any](rc *Context, key string, lookup Lookup[T]) (*T, error) {
	if key == "" {
		key = DefaultObjectKey
	}
	id := rc.GetQuery(key, "")
	if id == "" {
		return nil, apperr.NotFound(MsgObjectNotFound)
	}

	obj, err := lookup(rc.Request().Context(), id)
	if err != nil {
		return nil, internal(err)
	}
	if obj == nil {
		return nil, apperr.NotFound(MsgObjectNotFound)
	}
	return obj, nil
}
