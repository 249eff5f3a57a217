package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired means the upstream rejected the access token. The
	// caller decides whether to refresh and retry.
	ErrAuthExpired = errors.New("access token rejected")

	// ErrTimeout covers deadline and transport timeouts.
	ErrTimeout = errors.New("request timed out")

	// ErrMalformedResponse means a 2xx response carried a body that is
	// not valid JSON.
	ErrMalformedResponse = errors.New("malformed response body")

	// ErrInvalidGrant means the refresh token itself was rejected and
	// the account needs interactive re-authentication.
	ErrInvalidGrant = errors.New("refresh token rejected, re-authentication required")

	// ErrRateLimited is returned only when the retry cap for 429
	// responses is exhausted.
	ErrRateLimited = errors.New("rate limited")
)

// RequestError is any other non-success response, kept with enough
// context to log and debug.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("upstream request failed: status %d: %s", e.Status, e.Body)
}
