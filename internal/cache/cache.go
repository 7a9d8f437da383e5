package cache

import (
	"context"

	"dealerfeed/internal/domain"
)

// SnapshotCache persists the last good catalog so the service can serve
// something when the upstream feed is down at start-up. Load returns
// (nil, nil) when nothing has been stored yet.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, snap *domain.CatalogSnapshot) error
	LoadSnapshot(ctx context.Context) (*domain.CatalogSnapshot, error)
}
