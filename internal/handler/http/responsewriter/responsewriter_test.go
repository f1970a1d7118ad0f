package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	wrapped := Wrap(httptest.NewRecorder())

	assert.Equal(t, http.StatusOK, wrapped.StatusCode())
	assert.Equal(t, 0, wrapped.BytesWritten())
	assert.False(t, wrapped.headerWritten)
	assert.Nil(t, wrapped.Body())
}

func TestResponseWriter_WriteHeaderOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := Wrap(rec)

	wrapped.WriteHeader(http.StatusNotFound)
	wrapped.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusNotFound, wrapped.StatusCode())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResponseWriter_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := Wrap(rec)

	n, err := wrapped.Write([]byte(`{"ok":true}`))

	assert.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, 11, wrapped.BytesWritten())
	assert.Equal(t, http.StatusOK, wrapped.StatusCode())
	assert.True(t, wrapped.headerWritten)
}

func TestWrapCapture(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := WrapCapture(rec)

	_, _ = wrapped.Write([]byte(`{"total":`))
	_, _ = wrapped.Write([]byte(`3}`))
	wrapped.Flush()

	assert.Equal(t, `{"total":3}`, string(wrapped.Body()))
	assert.Equal(t, `{"total":3}`, rec.Body.String())
	assert.True(t, rec.Flushed)
	assert.Same(t, rec, wrapped.Unwrap())
}
