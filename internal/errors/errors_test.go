package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogErrorWrapping(t *testing.T) {
	err := Wrap(ErrUpstreamRequest, io.ErrUnexpectedEOF, "GET %s", "/movie/popular")
	wrapped := fmt.Errorf("popular movies: %w", err)

	assert.Equal(t, "GET /movie/popular: unexpected EOF", err.Error())
	assert.True(t, stderrors.Is(wrapped, io.ErrUnexpectedEOF))
	assert.Equal(t, ErrUpstreamRequest, CodeOf(wrapped))
	assert.True(t, IsUpstream(wrapped))
}

func TestInvalidArgumentIsNotUpstream(t *testing.T) {
	err := New(ErrInvalidArgument, "page must be >= 1, got %d", 0)

	assert.Equal(t, "page must be >= 1, got 0", err.Error())
	assert.False(t, IsUpstream(err))
	assert.Equal(t, ErrorCode(0), CodeOf(io.EOF))
	assert.Equal(t, "invalid_argument", ErrInvalidArgument.String())
}
