package github

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an API failure at the transport boundary so callers
// can branch on the kind instead of matching message text.
type ErrorKind string

// Error kinds produced by the client.
const (
	KindAuth        ErrorKind = "auth"
	KindNotFound    ErrorKind = "not_found"
	KindConflict    ErrorKind = "conflict"
	KindValidation  ErrorKind = "validation"
	KindRateLimited ErrorKind = "rate_limited"
	KindTransient   ErrorKind = "transient"
	KindOther       ErrorKind = "other"
)

// APIError is a classified GitHub API failure.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindAuth:
		return fmt.Sprintf("github access denied (HTTP %d) - check your token and repository permissions: %s", e.StatusCode, e.Detail)
	case KindNotFound:
		return fmt.Sprintf("github resource not found (HTTP %d) - check owner, repository and path: %s", e.StatusCode, e.Detail)
	case KindConflict:
		return fmt.Sprintf("github reports the remote file changed concurrently (HTTP %d conflict): %s", e.StatusCode, e.Detail)
	case KindValidation:
		return fmt.Sprintf("github rejected the request as malformed (HTTP %d) - check file path and content: %s", e.StatusCode, e.Detail)
	case KindRateLimited:
		return fmt.Sprintf("github rate limit hit (HTTP %d): %s", e.StatusCode, e.Detail)
	case KindTransient:
		if e.StatusCode > 0 {
			return fmt.Sprintf("github temporary failure (HTTP %d): %s", e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("github request failed: %s", e.Detail)
	default:
		return fmt.Sprintf("github API error (HTTP %d): %s", e.StatusCode, e.Detail)
	}
}

// kindForStatus maps an HTTP status code onto an error kind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	case status == 422:
		return KindValidation
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindTransient
	default:
		return KindOther
	}
}

// Retryable reports whether an error is worth retrying. Auth, not-found,
// conflict, and validation failures never recover on retry.
func Retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindTransient || apiErr.Kind == KindRateLimited
	}

	return false
}
