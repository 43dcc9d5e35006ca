package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/handsomefox/moodflix/internal/logger"
)

type HandlerWithErr func(w http.ResponseWriter, r *http.Request) error

// Error is a handler failure with the status and message the client sees.
// Cause is logged, never sent.
type Error struct {
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message + " code=" + strconv.FormatInt(int64(e.Status), 10)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

type errorResponse struct {
	Message string `json:"message"`
}

func Adapt(h HandlerWithErr) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		var statusErr *Error
		if errors.As(err, &statusErr) {
			if statusErr.Cause != nil {
				slog.WarnContext(r.Context(), statusErr.Message,
					slog.String("path", r.URL.Path),
					logger.Error(statusErr.Cause),
				)
			}
			writeJSON(w, statusErr.Status, &errorResponse{Message: statusErr.Message})
			return
		}
		slog.ErrorContext(r.Context(), "unhandled error", slog.String("path", r.URL.Path), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, &errorResponse{Message: "Internal server error"})
	})
}
