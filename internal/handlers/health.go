package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"dessertbox/internal/db"
	applog "dessertbox/internal/log"
)

type healthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health is a readiness handler for load balancers and orchestrators. It
// reports 503 when the database cannot be reached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status:   "ok",
		Database: "ok",
		Time:     time.Now().UTC(),
	}
	status := http.StatusOK
	if err := db.Ping(r.Context(), h.db); err != nil {
		applog.Error(r.Context(), "health check database ping failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		return
	}
	applog.Debug(r.Context(), "health check responded", "status", resp.Status)
}
