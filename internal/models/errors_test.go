package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"validation", NewValidationError("too big"), ErrKindValidation},
		{"not found", NewNotFoundError("images/u1/x.png"), ErrKindNotFound},
		{"content invalid", NewContentInvalidError("video/mp4"), ErrKindContentInvalid},
		{"infected", NewInfectedError([]string{"Eicar-Test-Signature"}), ErrKindInfected},
		{"storage", NewStorageError("put failed", errors.New("conn refused")), ErrKindStorage},
		{"wrapped", fmt.Errorf("pipeline: %w", NewNotFoundError("k")), ErrKindNotFound},
		{"plain error", errors.New("boom"), ErrKindProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, ErrorKindOf(tt.err))
			assert.True(t, IsKind(tt.err, tt.kind))
		})
	}
}

func TestInfectedErrorCarriesThreats(t *testing.T) {
	err := NewInfectedError([]string{"Eicar-Test-Signature", "Win.Trojan.Agent"})
	assert.Contains(t, err.Error(), "Eicar-Test-Signature")
	assert.Contains(t, err.Error(), "Win.Trojan.Agent")
	assert.Len(t, err.Threats, 2)
}

func TestStorageErrorPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewStorageError("error uploading object", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsKindOnNil(t *testing.T) {
	assert.False(t, IsKind(nil, ErrKindValidation))
}
