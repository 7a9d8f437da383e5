package handler

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"dealerfeed/internal/domain"
	"dealerfeed/internal/middleware"
)

// Stats tracks server-wide counters
type Stats struct {
	startTime        time.Time
	requestCount     atomic.Int64
	wsConnections    atomic.Int64
	wsMessagesIn     atomic.Int64
	rateLimitBlocked atomic.Int64
}

func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

func (s *Stats) IncRequests()         { s.requestCount.Add(1) }
func (s *Stats) IncWSConnections()    { s.wsConnections.Add(1) }
func (s *Stats) DecWSConnections()    { s.wsConnections.Add(-1) }
func (s *Stats) IncWSMessagesIn()     { s.wsMessagesIn.Add(1) }
func (s *Stats) IncRateLimitBlocked() { s.rateLimitBlocked.Add(1) }

type StatsHandler struct {
	stats   *Stats
	catalog CatalogReader
	limiter *middleware.RateLimiter
	version string
}

// NewStatsHandler builds the /stats handler. limiter may be nil.
func NewStatsHandler(stats *Stats, c CatalogReader, limiter *middleware.RateLimiter, version string) *StatsHandler {
	return &StatsHandler{
		stats:   stats,
		catalog: c,
		limiter: limiter,
		version: version,
	}
}

type StatsResponse struct {
	Server    ServerStatsResponse    `json:"server"`
	Catalog   CatalogStatsResponse   `json:"catalog"`
	WebSocket WebSocketStatsResponse `json:"websocket"`
	RateLimit *middleware.Stats      `json:"rate_limit,omitempty"`
	Go        GoStatsResponse        `json:"go"`
}

type ServerStatsResponse struct {
	Uptime        string    `json:"uptime"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
	RequestCount  int64     `json:"request_count"`
	RateLimited   int64     `json:"rate_limited"`
	Version       string    `json:"version"`
}

type CatalogStatsResponse struct {
	Total      int                   `json:"total"`
	WithImages int                   `json:"with_images"`
	Makes      int                   `json:"makes"`
	Source     domain.SnapshotSource `json:"source"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

type WebSocketStatsResponse struct {
	Connections int64 `json:"connections"`
	MessagesIn  int64 `json:"messages_in"`
}

type GoStatsResponse struct {
	Goroutines  int     `json:"goroutines"`
	HeapAlloc   uint64  `json:"heap_alloc_bytes"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	NumGC       uint32  `json:"num_gc"`
	GoVersion   string  `json:"go_version"`
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.stats.startTime)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response := StatsResponse{
		Server: ServerStatsResponse{
			Uptime:        uptime.Round(time.Second).String(),
			UptimeSeconds: uptime.Seconds(),
			StartTime:     h.stats.startTime,
			RequestCount:  h.stats.requestCount.Load(),
			RateLimited:   h.stats.rateLimitBlocked.Load(),
			Version:       h.version,
		},
		Catalog: CatalogStatsResponse{
			Total:      h.catalog.Count(),
			WithImages: h.catalog.CountWithImages(),
			Makes:      len(h.catalog.Makes()),
			Source:     h.catalog.Source(),
			UpdatedAt:  h.catalog.UpdatedAt(),
		},
		WebSocket: WebSocketStatsResponse{
			Connections: h.stats.wsConnections.Load(),
			MessagesIn:  h.stats.wsMessagesIn.Load(),
		},
		Go: GoStatsResponse{
			Goroutines:  runtime.NumGoroutine(),
			HeapAlloc:   mem.HeapAlloc,
			HeapAllocMB: float64(mem.HeapAlloc) / 1024 / 1024,
			NumGC:       mem.NumGC,
			GoVersion:   runtime.Version(),
		},
	}
	if h.limiter != nil {
		rl := h.limiter.Stats()
		response.RateLimit = &rl
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, response)
}
