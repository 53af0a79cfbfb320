package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/andeanlabs/farmakiosk/internal/domain/checkout"
	"github.com/andeanlabs/farmakiosk/internal/domain/session"
	"github.com/andeanlabs/farmakiosk/internal/gateway"
)

type errorResponse struct {
	Error   string              `json:"error"`
	Missing []checkout.FieldTag `json:"missing,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// writeDomainError maps session and gateway failures onto the bridge's
// status codes. Backend errors keep their original status and message so
// the UI shows what the server actually said.
func (b *Bridge) writeDomainError(w http.ResponseWriter, err error) {
	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, session.ErrValidationFailed):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   err.Error(),
			Missing: b.ctrl.Snapshot().Missing,
		})
	case errors.Is(err, checkout.ErrUnknownWindow):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, session.ErrEmptyCart),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrSubmitInFlight),
		errors.Is(err, session.ErrSessionReset),
		errors.Is(err, session.ErrNoOrder):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &apiErr):
		writeError(w, apiErr.Code, apiErr.Message)
	default:
		b.lg.Warn("backend call failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
