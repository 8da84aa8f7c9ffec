package pagination

// DefaultLimit is the page size used when the request does not carry one.
// Links omit the limit parameter while it equals this value.
const DefaultLimit = 10

// MaxLimit caps the page size a client may ask for.
const MaxLimit = 1_000

const (
	ParamPage  = "page"
	ParamLimit = "limit"
)

const (
	MsgInvalidPage  = "api.pagination.invalid_page"
	MsgInvalidLimit = "api.pagination.invalid_limit"
	MsgPageNotFound = "api.pagination.page_not_found"
)
