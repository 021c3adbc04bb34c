package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether the datastore is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	db      Pinger
	service string
	logger  *slog.Logger
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. db may be nil, in which case only
// process liveness is reported.
func NewHealthHandler(db Pinger, service string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, service: service, logger: logger, now: time.Now}
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Database  string `json:"database,omitempty"`
}

// HandleHealth reports service status.
//
// HTTP: GET /health
// RESPONSE: 200 {"status": "OK", "timestamp": "...", "service": "...", "database": "up"}
//
// An unreachable datastore turns the response into 503 with database "down".
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Service:   h.service,
	}

	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp.Database = "up"
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health check: database unreachable", slog.String("error", err.Error()))
			resp.Status = "DEGRADED"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}
