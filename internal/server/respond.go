package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/certificate-verifier/internal/common"
)

// envelope is the shape of every JSON API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("failed to write response", "error", err)
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// writeError maps err to a status code and reports its AppError message,
// or fallback when it carries none.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := common.HTTPStatus(err)
	logger := common.LoggerFrom(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, "error", err)
	} else {
		logger.Info(fallback, "status", status, "error", err)
	}
	writeJSON(w, status, envelope{Success: false, Message: common.MessageOf(err, fallback)})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
}
