package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Kind classifies an Error for the transport boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is the error value handed back to callers. Message is always safe to render;
// the wrapped cause never is.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
	Kind    Kind   `json:"-"`
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the internal cause for logging and errors.Is checks.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the internal error, if any. It must only be logged.
func (e *Error) Cause() error {
	return e.cause
}

// New creates an Error whose kind is derived from the HTTP status.
func New(message string, status int) *Error {
	return &Error{Message: message, Status: status, Kind: kindFromStatus(status)}
}

func Validation(message string) *Error {
	return &Error{Message: message, Status: http.StatusBadRequest, Kind: KindValidation}
}

// Unprocessable is a validation failure reported as 422, used for form style bodies.
func Unprocessable(message string) *Error {
	return &Error{Message: message, Status: http.StatusUnprocessableEntity, Kind: KindValidation}
}

func Auth(message string) *Error {
	return &Error{Message: message, Status: http.StatusUnauthorized, Kind: KindAuth}
}

func Forbidden(message string) *Error {
	return &Error{Message: message, Status: http.StatusForbidden, Kind: KindForbidden}
}

func NotFound(message string) *Error {
	return &Error{Message: message, Status: http.StatusNotFound, Kind: KindNotFound}
}

func Conflict(message string) *Error {
	return &Error{Message: message, Status: http.StatusConflict, Kind: KindConflict}
}

// Storage wraps a persistence failure. message is what the caller sees.
func Storage(message string, cause error) *Error {
	return &Error{Message: message, Status: http.StatusInternalServerError, Kind: KindStorage, cause: cause}
}

var (
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrUnauthorized        = New("Unauthorized", http.StatusUnauthorized)
	ErrInvalidPassword     = New("invalid password", http.StatusUnauthorized)
	ErrInvalidCredentials  = New("Login failed. Invalid credentials.", http.StatusForbidden)
	ErrMissingFields       = Validation("Missing fields")
	ErrNotFound            = New("not found", http.StatusNotFound)
	ErrTooManyRequests     = New("too many requests, try again later", http.StatusTooManyRequests)
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusOf maps err to an HTTP status, defaulting to 500 for foreign errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// GetUniqueContraintError turns a duplicate-key failure into a ConflictError.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return Conflict("User exists already, login instead")
	case strings.Contains(msg, "username"):
		return Conflict("username already in use")
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "UNIQUE constraint"), strings.Contains(msg, "already in use"):
		return Conflict(msg)
	default:
		return Storage("Something went wrong. Try again later.", err)
	}
}

// ErrorHandler renders a rejection issued by the rate limiter.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"message": fmt.Sprintf("%s, retry after %s", ErrTooManyRequests.Message, info.ResetTime.UTC().Format(http.TimeFormat)),
	})
}

func kindFromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusInternalServerError:
		return KindStorage
	default:
		return KindUnknown
	}
}
