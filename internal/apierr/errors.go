package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store-level sentinels. Repositories wrap these; From classifies them.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Kind is the failure taxonomy exposed to clients.
type Kind int

const (
	KindUnexpected Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindDuplicateKey
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_failed"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindBadRequest:
		return "bad_request"
	}
	return "unexpected"
}

// Error is a typed failure returned by services. Messages is only set for KindValidation.
type Error struct {
	Kind     Kind
	Message  string
	Messages []string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Kind == KindValidation {
		msg = strings.Join(e.Messages, "; ")
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindDuplicateKey, KindBadRequest:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Body is the uniform error envelope. message is a list only for validation failures.
func (e *Error) Body() map[string]interface{} {
	var msg interface{} = e.Message
	if e.Kind == KindValidation {
		msg = e.Messages
	}
	return map[string]interface{}{"success": false, "message": msg}
}

func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func BadRequest(msg string, cause error) *Error {
	return &Error{Kind: KindBadRequest, Message: msg, Cause: cause}
}

// Validation builds a ValidationFailed error; msgs must be non-empty.
func Validation(msgs ...string) *Error {
	return &Error{Kind: KindValidation, Messages: msgs}
}

func DuplicateKey(cause error) *Error {
	return &Error{Kind: KindDuplicateKey, Message: "Duplicate field value entered", Cause: cause}
}

func Unexpected(cause error) *Error {
	return &Error{Kind: KindUnexpected, Message: "Server Error", Cause: cause}
}

// From classifies any error into exactly one Kind. Unknown errors are Unexpected.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, ErrDuplicateKey), mongo.IsDuplicateKeyError(err):
		return DuplicateKey(err)
	case errors.Is(err, primitive.ErrInvalidHex), errors.Is(err, ErrNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return &Error{Kind: KindNotFound, Message: "Resource not found", Cause: err}
	}
	return Unexpected(err)
}

// Is reports whether err classifies as kind k.
func Is(err error, k Kind) bool {
	e := From(err)
	return e != nil && e.Kind == k
}
