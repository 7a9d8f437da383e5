package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dealerfeed/internal/domain"
)

// Layered writes to every backing cache and reads from the first one that
// has a snapshot. A failing layer is logged and skipped.
type Layered struct {
	layers []SnapshotCache
	logger *slog.Logger
}

func NewLayered(logger *slog.Logger, layers ...SnapshotCache) *Layered {
	return &Layered{
		layers: layers,
		logger: logger.With("component", "snapshot_cache"),
	}
}

func (l *Layered) SaveSnapshot(ctx context.Context, snap *domain.CatalogSnapshot) error {
	start := time.Now()
	var errs []error
	for i, layer := range l.layers {
		if err := layer.SaveSnapshot(ctx, snap); err != nil {
			l.logger.Error("failed to save snapshot", "layer", i, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) == len(l.layers) && len(errs) > 0 {
		return errors.Join(errs...)
	}

	l.logger.Info("snapshot saved",
		"vehicles", len(snap.Vehicles),
		"fingerprint", snap.Fingerprint,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (l *Layered) LoadSnapshot(ctx context.Context) (*domain.CatalogSnapshot, error) {
	var errs []error
	for i, layer := range l.layers {
		snap, err := layer.LoadSnapshot(ctx)
		if err != nil {
			l.logger.Warn("failed to load snapshot", "layer", i, "error", err)
			errs = append(errs, err)
			continue
		}
		if snap != nil {
			l.logger.Info("snapshot loaded", "layer", i, "vehicles", len(snap.Vehicles), "fetched_at", snap.FetchedAt)
			return snap, nil
		}
	}
	return nil, errors.Join(errs...)
}
