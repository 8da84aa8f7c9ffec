// Package envelope holds the wire shapes every API response is wrapped in.
package envelope

// Success is the body of every non-error response.
// Message is either a plain string or any JSON-serializable payload.
type Success struct {
	Code    int `json:"code"`
	Message any `json:"message"`
}

// Failure is the body of every error response.
type Failure struct {
	Error Detail `json:"error"`
}

type Detail struct {
	Code    int `json:"code"`
	Message any `json:"message"`
}

func NewSuccess(code int, message any) Success {
	return Success{Code: code, Message: message}
}

func NewFailure(code int, message any) Failure {
	return Failure{Error: Detail{Code: code, Message: message}}
}
