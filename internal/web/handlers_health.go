package web

import (
	"net/http"

	"github.com/JonMunkholm/employees/internal/core"
)

// HealthResponse reports liveness and import slot usage.
type HealthResponse struct {
	Status  string             `json:"status"`
	Imports core.LimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Imports: s.service.LimiterStatus(),
	})
}
