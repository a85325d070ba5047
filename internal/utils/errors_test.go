package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{
			name: "missing data",
			err:  NewMissingDataError("sales table is empty"),
			kind: KindMissingData,
		},
		{
			name: "insufficient data",
			err:  NewInsufficientDataError("need %d points, got %d", 10, 3),
			kind: KindInsufficientData,
		},
		{
			name: "external unavailable",
			err:  NewExternalUnavailableError("insight provider not configured"),
			kind: KindExternalUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := KindOf(tc.err)
			assert.True(t, ok)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("forecast failed: %w", NewInsufficientDataError("need 2 distinct dates"))
	assert.True(t, IsInsufficientData(err))
	assert.False(t, IsMissingData(err))
}

func TestKindOfPlainError(t *testing.T) {
	_, ok := KindOf(fmt.Errorf("plain error"))
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	err := NewValidationErrorf("horizon must be between 1 and %d", 365)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "horizon must be between 1 and 365", err.Error())

	_, engineKind := KindOf(err)
	assert.False(t, engineKind)
}
