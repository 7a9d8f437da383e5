package ingestor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"dealerfeed/internal/cache"
	"dealerfeed/internal/domain"
	"dealerfeed/internal/metrics"
	"dealerfeed/internal/store"
	"dealerfeed/pkg/dealerapi"
	"dealerfeed/pkg/feed"
)

const cacheWriteTimeout = 10 * time.Second

type Fetcher interface {
	Fetch(ctx context.Context, q dealerapi.Query) (string, error)
}

type Broadcaster interface {
	Broadcast(deltas []domain.CatalogDelta)
}

type Options struct {
	EngineTypes  []string
	VisibleOnly  bool
	Limit        int
	Sort         string
	PollInterval time.Duration
}

// Status describes the most recent refresh attempt.
type Status struct {
	Result      dealerapi.Result `json:"result"`
	LastAttempt time.Time        `json:"lastAttempt"`
	LastSuccess time.Time        `json:"lastSuccess"`
}

type Ingestor struct {
	fetcher     Fetcher
	parser      *feed.Parser
	store       *store.Store
	broadcaster Broadcaster
	snapshots   cache.SnapshotCache
	opts        Options
	logger      *slog.Logger

	mu     sync.RWMutex
	ready  bool
	status Status
}

// New wires an ingestor. broadcaster and snapshots may be nil.
func New(fetcher Fetcher, st *store.Store, broadcaster Broadcaster, snapshots cache.SnapshotCache, opts Options, logger *slog.Logger) *Ingestor {
	if len(opts.EngineTypes) == 0 {
		opts.EngineTypes = []string{"car"}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Minute
	}
	return &Ingestor{
		fetcher:     fetcher,
		parser:      feed.NewParser(logger),
		store:       st,
		broadcaster: broadcaster,
		snapshots:   snapshots,
		opts:        opts,
		logger:      logger.With("component", "feed_ingestor"),
	}
}

func (i *Ingestor) Run(ctx context.Context) {
	if res := i.Refresh(ctx); !res.Success {
		if err := i.Restore(ctx); err != nil {
			i.logger.Error("no catalog available", "fetch_error", res.Error, "restore_error", err)
		}
	}

	ticker := time.NewTicker(i.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.Refresh(ctx)
		}
	}
}

// Refresh fetches every engine type, and when the combined document
// changed, parses it and installs it as the new catalog. A failure keeps
// the catalog already held. The returned Result never carries vehicles.
func (i *Ingestor) Refresh(ctx context.Context) dealerapi.Result {
	start := time.Now()

	bodies, err := i.fetchAll(ctx)
	if err != nil {
		i.logger.Error("feed refresh failed", "error", err)
		return i.record(dealerapi.Failure(err), start)
	}

	fingerprint := Fingerprint(bodies...)
	if fingerprint == i.store.Fingerprint() && i.store.Count() > 0 {
		i.store.MarkFetched(domain.SourceLive, start)
		i.logger.Debug("feed unchanged", "fingerprint", fingerprint)
		i.setReady()
		return i.record(dealerapi.Result{Success: true}, start)
	}

	var vehicles []domain.Vehicle
	for _, body := range bodies {
		parseStart := time.Now()
		parsed := i.parser.Parse(body)
		metrics.ParseDuration.Observe(time.Since(parseStart).Seconds())
		vehicles = append(vehicles, parsed.Vehicles...)
	}

	snap := domain.CatalogSnapshot{
		Vehicles:    vehicles,
		Fingerprint: fingerprint,
		FetchedAt:   start,
	}
	deltas := i.store.Replace(snap, domain.SourceLive)
	i.publish(deltas)
	i.persist(ctx)
	i.setReady()

	i.logger.Info("catalog refreshed",
		"vehicles", i.store.Count(),
		"deltas", len(deltas),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return i.record(dealerapi.Result{Success: true}, start)
}

// Restore loads the last persisted catalog, unless one is already held.
func (i *Ingestor) Restore(ctx context.Context) error {
	if i.snapshots == nil {
		return errors.New("no snapshot cache configured")
	}
	if i.store.Count() > 0 {
		return nil
	}

	snap, err := i.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return errors.New("snapshot cache is empty")
	}

	deltas := i.store.Replace(*snap, domain.SourceCache)
	i.publish(deltas)
	i.setReady()

	i.logger.Warn("serving cached catalog",
		"vehicles", i.store.Count(),
		"fetched_at", snap.FetchedAt,
	)
	return nil
}

func (i *Ingestor) fetchAll(ctx context.Context) ([]string, error) {
	bodies := make([]string, len(i.opts.EngineTypes))

	g, gctx := errgroup.WithContext(ctx)
	for idx, engine := range i.opts.EngineTypes {
		g.Go(func() error {
			start := time.Now()
			body, err := i.fetcher.Fetch(gctx, dealerapi.Query{
				EngineType:  engine,
				VisibleOnly: i.opts.VisibleOnly,
				Limit:       i.opts.Limit,
				Sort:        i.opts.Sort,
			})
			metrics.FeedFetchDuration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
			metrics.FeedFetches.WithLabelValues(engine, resultLabel(err)).Inc()
			if err != nil {
				return err
			}
			bodies[idx] = body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bodies, nil
}

func (i *Ingestor) publish(deltas []domain.CatalogDelta) {
	metrics.CatalogVehicles.Set(float64(i.store.Count()))
	for _, d := range deltas {
		metrics.CatalogDeltas.WithLabelValues(string(d.Type)).Inc()
	}
	if i.broadcaster != nil {
		i.broadcaster.Broadcast(deltas)
	}
}

func (i *Ingestor) persist(ctx context.Context) {
	if i.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheWriteTimeout)
	defer cancel()

	snap := i.store.CatalogSnapshot()
	if err := i.snapshots.SaveSnapshot(ctx, &snap); err != nil {
		i.logger.Error("failed to persist catalog snapshot", "error", err)
	}
}

func (i *Ingestor) record(res dealerapi.Result, at time.Time) dealerapi.Result {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status.Result = res
	i.status.LastAttempt = at
	if res.Success {
		i.status.LastSuccess = at
	}
	return res
}

func (i *Ingestor) Status() Status {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.status
}

// IsReady reports whether a catalog, live or cached, has been loaded.
func (i *Ingestor) IsReady() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.ready
}

func (i *Ingestor) setReady() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.ready {
		i.ready = true
		i.logger.Info("ingestor ready", "source", i.store.Source())
	}
}

// Fingerprint identifies a set of feed documents.
func Fingerprint(bodies ...string) string {
	h := sha256.New()
	for _, b := range bodies {
		h.Write([]byte(b))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var fe *dealerapi.FetchError
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
