package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fixacareer/fixauth"
)

// envelope is the uniform response body: {"data": ..., "message": "..."} on
// success, {"message": "..."} on failure.
type envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data, Message: message})
}

func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
		// Internal causes never reach the client.
		respond(w, status, nil, http.StatusText(status))
		return
	}
	respond(w, status, nil, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, fixauth.ErrInvalidCredentials),
		errors.Is(err, fixauth.ErrInvalidCurrentPassword),
		errors.Is(err, fixauth.ErrTOTPInvalid),
		errors.Is(err, fixauth.ErrRefreshInvalid),
		errors.Is(err, fixauth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, fixauth.ErrSecondFactorMethod),
		errors.Is(err, fixauth.ErrSecondFactorPending):
		return http.StatusBadRequest
	case errors.Is(err, fixauth.ErrPrincipalNotFound):
		return http.StatusNotFound
	case errors.Is(err, fixauth.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, fixauth.ErrTOTPRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, fixauth.ErrEmailDispatch):
		return http.StatusBadGateway
	case errors.Is(err, fixauth.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respond(w, http.StatusBadRequest, nil, message)
}
