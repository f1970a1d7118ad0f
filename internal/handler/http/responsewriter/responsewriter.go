// Package responsewriter wraps http.ResponseWriter to record the status, the
// size and, optionally, a copy of the body.
package responsewriter

import (
	"bytes"
	"net/http"
)

// ResponseWriter records what the handler wrote.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int
	headerWritten bool
	body          *bytes.Buffer
}

// Wrap records status and size.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WrapCapture also keeps a copy of the body, for the response cache.
func WrapCapture(w http.ResponseWriter) *ResponseWriter {
	rw := Wrap(w)
	rw.body = &bytes.Buffer{}
	return rw
}

// WriteHeader only forwards the first call.
func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.statusCode = statusCode
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	if w.body != nil {
		w.body.Write(b[:n])
	}
	return n, err
}

func (w *ResponseWriter) StatusCode() int { return w.statusCode }

func (w *ResponseWriter) BytesWritten() int { return w.bytesWritten }

// Body returns the captured body, or nil when created with Wrap.
func (w *ResponseWriter) Body() []byte {
	if w.body == nil {
		return nil
	}
	return w.body.Bytes()
}

// Flush implements http.Flusher when the underlying writer does.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap supports http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
