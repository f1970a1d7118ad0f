package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		field    string
		message  string
		expected string
	}{
		{field: "interval", message: "must be hour", expected: "validation error on field 'interval': must be hour"},
		{field: "", message: "x", expected: "validation error on field '': x"},
	}
	for _, tt := range tests {
		err := &ValidationError{Field: tt.field, Message: tt.message}
		assert.Equal(t, tt.expected, err.Error())
	}
}

func TestSentinelErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("country details: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
}
