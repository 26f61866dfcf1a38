package ckan

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend action call.
type Kind int

const (
	// KindServiceUnavailable means the backend could not be reached at all
	// (network failure, connection refused, timeout).
	KindServiceUnavailable Kind = iota
	// KindBadRequest covers backend validation errors and any other
	// backend-reported API error without a more specific classification.
	KindBadRequest
	// KindForbidden means the backend rejected the caller's credentials for
	// the requested resource.
	KindForbidden
	// KindNotFound means the backend reported the resource absent.
	KindNotFound
	// KindUnexpectedResponse means the backend answered, but the response was
	// missing required fields or could not be parsed at all.
	KindUnexpectedResponse
)

func (k Kind) String() string {
	switch k {
	case KindServiceUnavailable:
		return "service unavailable"
	case KindBadRequest:
		return "bad request"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindUnexpectedResponse:
		return "unexpected response"
	default:
		return "unknown"
	}
}

// Error is a classified failure of a CKAN action call.
type Error struct {
	Kind    Kind
	Action  string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("ckan %s (%s): %s", e.Action, e.Kind, e.Message)
}

// NewError builds a classified error for the given action.
func NewError(kind Kind, action, format string, args ...any) *Error {
	return &Error{Kind: kind, Action: action, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a ckan.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

// MessageOf returns the backend-reported message of a classified error, or the
// plain error text for anything else.
func MessageOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
