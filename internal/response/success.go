package response

import (
	"encoding/json"
	"net/http"

	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

// SuccessEnvelope wraps every 2xx body except 204.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func (h *responseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(SuccessEnvelope{Success: true, Data: data})
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to encode success response", "error", err, "status", status)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error", "An error occurred")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.FromContext(r.Context()).Debug("client went away before response was written", "error", err)
	}
}

func (h *responseHandler) WriteNoContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
