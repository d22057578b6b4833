package snowapi

import "fmt"

// kind identifies which of the documented error categories a Error
// value belongs to.
type kind string

const (
	kindConfig            kind = "config"
	kindConnection        kind = "connection"
	kindConnectionStarved kind = "connection_starved"
	kindBadResponse       kind = "bad_response"
	kindRequest           kind = "request"
)

// Error is the single error type returned across the package's public
// surface. Kind narrows the category; Context carries observability
// details (status codes, bodies, URIs) for downstream logging.
type Error struct {
	Kind    kind
	Message string
	Context map[string]any

	// Status and Body are populated for BadResponseError.
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("snowapi: %s: %s (status %d)", e.Kind, e.Message, e.Status)
	}
	return fmt.Sprintf("snowapi: %s: %s", e.Kind, e.Message)
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool { return isKind(err, kindConfig) }

// IsConnectionError reports whether err is a ConnectionError.
func IsConnectionError(err error) bool { return isKind(err, kindConnection) }

// IsConnectionStarvedError reports whether err is a ConnectionStarvedError.
func IsConnectionStarvedError(err error) bool { return isKind(err, kindConnectionStarved) }

// IsBadResponseError reports whether err is a BadResponseError.
func IsBadResponseError(err error) bool { return isKind(err, kindBadResponse) }

// IsRequestError reports whether err is a RequestError.
func IsRequestError(err error) bool { return isKind(err, kindRequest) }

func isKind(err error, k kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}

func newConfigError(msg string, ctx map[string]any) *Error {
	return &Error{Kind: kindConfig, Message: msg, Context: ctx}
}

func newConnectionError(msg string, ctx map[string]any) *Error {
	return &Error{Kind: kindConnection, Message: msg, Context: ctx}
}

func newConnectionStarvedError(msg string, ctx map[string]any) *Error {
	return &Error{Kind: kindConnectionStarved, Message: msg, Context: ctx}
}

func newBadResponseError(status int, body string, ctx map[string]any) *Error {
	return &Error{
		Kind:    kindBadResponse,
		Message: "the service returned a terminal or unrecoverable response",
		Status:  status,
		Body:    body,
		Context: ctx,
	}
}

func newRequestError(msg string, ctx map[string]any) *Error {
	return &Error{Kind: kindRequest, Message: msg, Context: ctx}
}
