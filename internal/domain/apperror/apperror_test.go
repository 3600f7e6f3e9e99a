package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndCodeOf(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("create post: %w", Internal(CodePostServerError, cause))

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, CodePostServerError, CodeOf(err))
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestErrorsIsMatchesKindAndCode(t *testing.T) {
	err := NotFound(CodePostNotFound, "post", "ext-1")

	assert.ErrorIs(t, err, New(KindNotFound, CodePostNotFound, ""))
	assert.ErrorIs(t, err, New(KindNotFound, "", ""))
	assert.NotErrorIs(t, err, New(KindNotFound, CodeMediaNotFound, ""))
	assert.NotErrorIs(t, err, New(KindForbidden, "", ""))
}

func TestErrorMessageCarriesContext(t *testing.T) {
	err := Forbidden(CodePostForbidden, "post", "ext-9")
	assert.Equal(t, "not allowed to modify post (post ext-9)", err.Error())

	wrapped := Wrap(KindValidation, CodeUploadUnsupportedPayload, "unsupported image", errors.New("unknown format")).WithResource("media", "")
	assert.Equal(t, "unsupported image (media): unknown format", wrapped.Error())
}
