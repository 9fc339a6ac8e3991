package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := NotFound("Draft not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("loading draft: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "Draft not found", MessageOf(wrapped))
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Upstream("Error updating draft", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Error updating draft: connection reset", err.Error())
	assert.Equal(t, "Error updating draft", MessageOf(err))
}

func TestUnclassifiedErrors(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindUpstreamFailure, KindOf(err))
	assert.Equal(t, "Something went wrong", MessageOf(err))
}
