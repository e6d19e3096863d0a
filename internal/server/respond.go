package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lingocards/lingocards/internal/apperror"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

// errorBody is the uniform JSON error shape.
type errorBody struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Action  string `json:"action,omitempty"`
	KeyInfo any    `json:"apiKeyInfo,omitempty"`
}

// writeError maps a service error onto an HTTP status and the uniform error
// body. Anything that is not an *apperror.Error is an internal error and its
// detail stays out of the response.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		slog.Default().Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Internal Server Error"})
		return
	}

	slog.Default().Warn("request failed",
		"kind", string(appErr.Kind),
		"message", appErr.Message,
		"error", err,
	)

	writeJSON(w, statusForKind(appErr.Kind), errorBody{
		Message: appErr.Message,
		Details: appErr.Details,
		Action:  appErr.Action,
		KeyInfo: appErr.KeyInfo,
	})
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindClientInput, apperror.KindInvalidTTSRequest:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidCredential:
		return http.StatusUnauthorized
	case apperror.KindRateLimited:
		return http.StatusTooManyRequests
	case apperror.KindQuotaExceeded:
		return http.StatusPaymentRequired
	case apperror.KindProviderUnreachable:
		return http.StatusBadGateway
	default:
		// no-credential and credential-format failures are configuration
		// problems, not client mistakes
		return http.StatusInternalServerError
	}
}
