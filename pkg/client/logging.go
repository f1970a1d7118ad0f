package client

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/requester/middleware"
	"github.com/samber/lo"
)

// LoggingOpts configures LoggingRoundTripper.
type LoggingOpts struct {
	Level slog.Level
	// SecretHeaders are logged as "***". Names are canonical (e.g. "Authorization").
	SecretHeaders []string
}

// DefaultSecretHeaders are always masked.
var DefaultSecretHeaders = []string{"Authorization", "Cookie", "Set-Cookie"}

// LoggingRoundTripper logs every request and response with trimmed bodies.
func LoggingRoundTripper(lg *slog.Logger, opts LoggingOpts) middleware.RoundTripperHandler {
	secrets := lo.Uniq(append(append([]string{}, DefaultSecretHeaders...), opts.SecretHeaders...))
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			var reqBody string
			req.Body, reqBody = copyAndTrim(req.Body)

			lg.LogAttrs(req.Context(), opts.Level, "request sent",
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Any("headers", maskHeaders(req.Header, secrets)),
				slog.String("body", reqBody))

			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)
			if err != nil {
				lg.LogAttrs(req.Context(), opts.Level, "request failed",
					slog.Duration("elapsed", elapsed),
					slog.String("error", err.Error()))
				return resp, err
			}

			var respBody string
			resp.Body, respBody = copyAndTrim(resp.Body)
			lg.LogAttrs(req.Context(), opts.Level, "response received",
				slog.Int("status", resp.StatusCode),
				slog.Any("headers", maskHeaders(resp.Header, secrets)),
				slog.String("body", respBody),
				slog.Duration("elapsed", elapsed))
			return resp, nil
		})
	}
}

func maskHeaders(h http.Header, secrets []string) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		if lo.Contains(secrets, http.CanonicalHeaderKey(k)) {
			out[k] = "***"
			continue
		}
		out[k] = strings.Join(vals, ",")
	}
	return out
}

const trimBodyAt = 1024

// copyAndTrim returns a reader with the full body and its first trimBodyAt
// bytes for logging.
func copyAndTrim(r io.ReadCloser) (io.ReadCloser, string) {
	if r == nil || r == http.NoBody {
		return r, ""
	}
	buf := &bytes.Buffer{}
	n, err := io.CopyN(buf, r, trimBodyAt)
	portion := buf.String()
	if err == nil && n == trimBodyAt {
		portion += "..."
	}
	portion = strings.NewReplacer("\n", "", "\t", "").Replace(portion)
	if err != nil {
		_ = r.Close()
		return io.NopCloser(bytes.NewReader(buf.Bytes())), portion
	}
	return &multiCloser{rd: io.MultiReader(buf, r), closeFn: r.Close}, portion
}

type multiCloser struct {
	rd      io.Reader
	closeFn func() error
}

func (c *multiCloser) Read(p []byte) (int, error) { return c.rd.Read(p) }
func (c *multiCloser) Close() error               { return c.closeFn() }
