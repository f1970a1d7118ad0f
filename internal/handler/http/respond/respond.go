// Package respond writes JSON responses and maps domain errors to HTTP
// status codes without leaking internal details.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mediawatch/internal/domain/entity"
	"mediawatch/pkg/daterange"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are already sent
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// Error writes err.Error() as the message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, ErrorBody{Error: err.Error()})
}

// AppError carries a message that is safe to show to users.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// StatusFor maps an error to its HTTP status.
//   - validation and date range errors: 400
//   - entity.ErrNotFound: 404
//   - anything else: 500
func StatusFor(err error) int {
	var appErr *AppError
	var valErr *entity.ValidationError
	switch {
	case errors.As(err, &appErr):
		return appErr.Code
	case errors.As(err, &valErr),
		errors.Is(err, entity.ErrInvalidInput),
		daterange.IsRangeError(err):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// SafeError writes err with the status from StatusFor. Client errors keep
// their message. Server errors are logged (sanitized) and replaced by a
// generic message.
func SafeError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	code := StatusFor(err)

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			slog.Default().Error("application error",
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.String("error", SanitizeError(appErr.Err)))
		}
		JSON(w, code, ErrorBody{Error: appErr.UserMsg})
		return
	}

	if code < http.StatusInternalServerError {
		var valErr *entity.ValidationError
		if errors.As(err, &valErr) {
			JSON(w, code, ErrorBody{Error: valErr.Message})
			return
		}
		JSON(w, code, ErrorBody{Error: err.Error()})
		return
	}

	// 内部エラーはログのみに残す
	slog.Default().Error("internal server error",
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, ErrorBody{Error: "internal server error"})
}
