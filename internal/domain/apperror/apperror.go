package apperror

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure classes surfaced by usecases.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Code is the stable machine readable identifier returned to clients.
type Code string

const (
	CodeUploadNoFile             Code = "UPLOAD_NO_FILE"
	CodeUploadInvalidType        Code = "UPLOAD_INVALID_TYPE"
	CodeUploadInvalidMetadata    Code = "UPLOAD_INVALID_METADATA"
	CodeUploadUnsupportedPayload Code = "UPLOAD_UNSUPPORTED_PAYLOAD"
	CodeUploadTooLarge           Code = "UPLOAD_TOO_LARGE"
	CodeUploadServerError        Code = "UPLOAD_SERVER_ERROR"

	CodeMediaNotFound      Code = "MEDIA_NOT_FOUND"
	CodeMediaInvalidID     Code = "MEDIA_INVALID_ID"
	CodeMediaInvalidType   Code = "MEDIA_INVALID_TYPE"
	CodeMediaInvalidUserID Code = "MEDIA_INVALID_USER_ID"
	CodeMediaForbidden     Code = "MEDIA_FORBIDDEN"
	CodeMediaServerError   Code = "MEDIA_SERVER_ERROR"

	CodePostMissingFields      Code = "POST_MISSING_FIELDS"
	CodePostInvalidMediaRef    Code = "POST_INVALID_MEDIA_REF"
	CodePostMediaNotFound      Code = "POST_MEDIA_NOT_FOUND"
	CodePostDuplicateID        Code = "POST_DUPLICATE_ID"
	CodePostNotFound           Code = "POST_NOT_FOUND"
	CodePostForbidden          Code = "POST_FORBIDDEN"
	CodePostDescriptionTooLong Code = "POST_DESCRIPTION_TOO_LONG"
	CodePostInvalidPagination  Code = "POST_INVALID_PAGINATION"
	CodePostServerError        Code = "POST_SERVER_ERROR"

	CodeAuthNoToken            Code = "AUTH_NO_TOKEN"
	CodeAuthInvalidFormat      Code = "AUTH_INVALID_FORMAT"
	CodeAuthInvalidToken       Code = "AUTH_INVALID_TOKEN"
	CodeAuthRequired           Code = "AUTH_REQUIRED"
	CodeAuthInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	CodeAuthEmailTaken         Code = "AUTH_EMAIL_TAKEN"
	CodeAuthInvalidInput       Code = "AUTH_INVALID_INPUT"
	CodeAuthServerError        Code = "AUTH_SERVER_ERROR"

	CodeUserInvalidID      Code = "USER_INVALID_ID"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeUserInvalidInput   Code = "USER_INVALID_INPUT"
	CodeUserInvalidPhoto   Code = "USER_INVALID_PHOTO"
	CodeUserServerError    Code = "USER_SERVER_ERROR"
	CodeSearchInvalidQuery Code = "SEARCH_INVALID_QUERY"
)

// Error carries the failure kind plus structured context about the
// resource involved. Err holds the underlying cause for operator logs and is
// never rendered to clients.
type Error struct {
	Kind     Kind
	Code     Code
	Message  string
	Resource string
	ID       string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Resource != "" {
		if e.ID != "" {
			msg = fmt.Sprintf("%s (%s %s)", msg, e.Resource, e.ID)
		} else {
			msg = fmt.Sprintf("%s (%s)", msg, e.Resource)
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and code so callers can compare against sentinels built
// with New.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

// New creates an error without an underlying cause.
func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an error around cause.
func Wrap(kind Kind, code Code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: cause}
}

// WithResource returns a copy annotated with the resource and its id.
func (e *Error) WithResource(resource, id string) *Error {
	cp := *e
	cp.Resource = resource
	cp.ID = id
	return &cp
}

func Validation(code Code, message string) *Error {
	return New(KindValidation, code, message)
}

func NotFound(code Code, resource, id string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: resource + " not found", Resource: resource, ID: id}
}

func Forbidden(code Code, resource, id string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: "not allowed to modify " + resource, Resource: resource, ID: id}
}

func Unauthorized(code Code, message string) *Error {
	return New(KindUnauthorized, code, message)
}

func Conflict(code Code, message string) *Error {
	return New(KindConflict, code, message)
}

func Internal(code Code, cause error) *Error {
	return Wrap(KindInternal, code, "internal server error", cause)
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// CodeOf reports the code of err, or "" for foreign errors.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
