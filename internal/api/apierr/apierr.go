package apierr

import (
	"errors"
	"log/slog"
	"net/http"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/pkg/resp"
)

// Status - HTTP-статус и сообщение для доменной ошибки
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrNoMatchingSlot):
		return http.StatusServiceUnavailable, "no game available, try again later"
	case errors.Is(err, model.ErrAlreadyConsumed):
		return http.StatusConflict, "game already completed"
	case errors.Is(err, model.ErrNoActiveBatch):
		return http.StatusServiceUnavailable, "real-money play is paused"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, model.ErrInsufficientBalance):
		return http.StatusPaymentRequired, "insufficient balance"
	case errors.Is(err, model.ErrPersistence):
		// причину не раскрываем, запрос можно повторить
		return http.StatusServiceUnavailable, "temporary failure, try again later"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// retryAfterSeconds - подсказка клиенту для 503
const retryAfterSeconds = "1"

// Write - пишет ошибку сервиса клиенту, 5xx дополнительно логирует
func Write(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, msg := Status(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	resp.WriteError(w, status, msg)
}
