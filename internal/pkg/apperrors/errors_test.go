package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{NewValidationError("bad", nil), KindValidation},
		{NewForbiddenError("no"), KindForbidden},
		{fmt.Errorf("wrapped: %w", ErrClassNotFound), KindNotFound},
		{NewResourceNotFoundError("gone"), KindNotFound},
		{ErrAlreadyEnrolled, KindConflict},
		{NewConflictError("dup"), KindConflict},
		{ErrTokenExpired, KindAuth},
		{errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err), "%v", tt.err)
	}
}

func TestMessageAndFields(t *testing.T) {
	err := fmt.Errorf("submit: %w", NewValidationError("Validation failed", map[string]string{"class_id": "class_id is required"}))

	assert.Equal(t, "Validation failed", Message(err))
	assert.Equal(t, map[string]string{"class_id": "class_id is required"}, FieldErrors(err))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Nil(t, FieldErrors(errors.New("plain")))
	assert.True(t, Is(ErrReportNotFound, ErrConflict, ErrResourceNotFound))
}
