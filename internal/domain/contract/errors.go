package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repository implementations.
var (
	ErrMediaNotFound        = errors.New("media not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateExternalRef = errors.New("post with this external reference already exists")
	ErrDuplicateEmail       = errors.New("user with this email already exists")
	ErrMediaRefChanged      = errors.New("post media reference changed concurrently")
	ErrUnsupportedPayload   = errors.New("payload is not a supported image")
	ErrPayloadTooLarge      = errors.New("payload exceeds the size limit")
	ErrInvalidIdentity      = errors.New("identity token is invalid")
)

// PostDecodeError reports a stored post whose document does not fit the post schema.
type PostDecodeError struct {
	PostID string
	Err    error
}

func (e *PostDecodeError) Error() string {
	return fmt.Sprintf("failed to decode post %s: %v", e.PostID, e.Err)
}

func (e *PostDecodeError) Unwrap() error { return e.Err }
