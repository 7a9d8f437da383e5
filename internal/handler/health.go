package handler

import (
	"net/http"
	"time"

	"dealerfeed/internal/domain"
)

type HealthHandler struct {
	feed    FeedStatus
	catalog CatalogReader
}

func NewHealthHandler(feed FeedStatus, c CatalogReader) *HealthHandler {
	return &HealthHandler{
		feed:    feed,
		catalog: c,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready        bool                  `json:"ready"`
	Source       domain.SnapshotSource `json:"source"`
	VehicleCount int                   `json:"vehicleCount"`
	ServerTime   time.Time             `json:"serverTime"`
}

// Readyz reports ready once any catalog, live or cached, is loaded.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := h.feed.IsReady()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, ReadyResponse{
		Ready:        ready,
		Source:       h.catalog.Source(),
		VehicleCount: h.catalog.Count(),
		ServerTime:   time.Now(),
	})
}
