package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"dealerfeed/internal/catalog"
	"dealerfeed/internal/domain"
	"dealerfeed/internal/ingestor"
	"dealerfeed/internal/metrics"
)

// CatalogReader is the read side of the catalog store.
type CatalogReader interface {
	Snapshot() []domain.Vehicle
	Get(adNumber int) (domain.Vehicle, bool)
	Count() int
	CountWithImages() int
	Makes() []string
	UpdatedAt() time.Time
	Fingerprint() string
	Source() domain.SnapshotSource
}

type FeedStatus interface {
	Status() ingestor.Status
	IsReady() bool
}

type HTTPHandler struct {
	catalog         CatalogReader
	feed            FeedStatus
	defaultPageSize int
	maxPageSize     int
}

func NewHTTPHandler(c CatalogReader, feed FeedStatus, defaultPageSize, maxPageSize int) *HTTPHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = 12
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &HTTPHandler{
		catalog:         c,
		feed:            feed,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

type CatalogResponse struct {
	domain.CatalogPage
	Source    domain.SnapshotSource `json:"source"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// ListVehicles runs a catalog query. Unparseable filter values are
// ignored, never rejected.
func (h *HTTPHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := catalog.ParseSelection(q)
	page := parsePositive(q.Get("page"), 1)
	pageSize := min(parsePositive(q.Get("page_size"), h.defaultPageSize), h.maxPageSize)

	start := time.Now()
	result := catalog.Query(h.catalog.Snapshot(), sel, page, pageSize)
	metrics.QueryDuration.Observe(time.Since(start).Seconds())

	respondJSON(w, http.StatusOK, CatalogResponse{
		CatalogPage: result,
		Source:      h.catalog.Source(),
		UpdatedAt:   h.catalog.UpdatedAt(),
	})
}

func (h *HTTPHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	adNumber, err := strconv.Atoi(chi.URLParam(r, "adNumber"))
	if err != nil || adNumber <= 0 {
		respondError(w, http.StatusBadRequest, "invalid ad number")
		return
	}

	vehicle, ok := h.catalog.Get(adNumber)
	if !ok {
		respondError(w, http.StatusNotFound, "vehicle not found")
		return
	}

	respondJSON(w, http.StatusOK, vehicle)
}

type FeedStatusResponse struct {
	Ready       bool                  `json:"ready"`
	Source      domain.SnapshotSource `json:"source"`
	Vehicles    int                   `json:"vehicles"`
	WithImages  int                   `json:"withImages"`
	Makes       []string              `json:"makes"`
	Fingerprint string                `json:"fingerprint,omitempty"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	LastFetch   ingestor.Status       `json:"lastFetch"`
}

func (h *HTTPHandler) GetFeedStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, FeedStatusResponse{
		Ready:       h.feed.IsReady(),
		Source:      h.catalog.Source(),
		Vehicles:    h.catalog.Count(),
		WithImages:  h.catalog.CountWithImages(),
		Makes:       h.catalog.Makes(),
		Fingerprint: h.catalog.Fingerprint(),
		UpdatedAt:   h.catalog.UpdatedAt(),
		LastFetch:   h.feed.Status(),
	})
}

func parsePositive(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
