package store

import (
	"slices"
	"sync"
	"time"

	"dealerfeed/internal/domain"
)

// Store holds the catalog currently being served. The vehicle slice is
// never modified after Replace installs it, so Snapshot can hand it out
// without copying and queries can run on it without holding the lock.
type Store struct {
	mu          sync.RWMutex
	vehicles    []domain.Vehicle
	byAd        map[int]int
	byMake      map[string]int
	withImages  int
	fingerprint string
	source      domain.SnapshotSource
	updatedAt   time.Time
}

func New() *Store {
	return &Store{
		byAd:   make(map[int]int),
		byMake: make(map[string]int),
		source: domain.SourceNone,
	}
}

// Replace swaps in a whole new catalog and returns what changed compared
// with the previous one: an update for every new or modified listing, in
// feed order, followed by a remove for every listing that disappeared.
// Repeated ad numbers keep their first occurrence.
func (s *Store) Replace(snap domain.CatalogSnapshot, source domain.SnapshotSource) []domain.CatalogDelta {
	vehicles := make([]domain.Vehicle, 0, len(snap.Vehicles))
	byAd := make(map[int]int, len(snap.Vehicles))
	byMake := make(map[string]int)
	withImages := 0

	for i := range snap.Vehicles {
		v := snap.Vehicles[i]
		if _, dup := byAd[v.AdNumber]; dup {
			continue
		}
		byAd[v.AdNumber] = len(vehicles)
		byMake[v.Make]++
		if v.HasImages() {
			withImages++
		}
		vehicles = append(vehicles, v)
	}

	updatedAt := snap.FetchedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deltas []domain.CatalogDelta
	for i := range vehicles {
		v := &vehicles[i]
		if idx, exists := s.byAd[v.AdNumber]; exists && !hasChanged(&s.vehicles[idx], v) {
			continue
		}
		deltas = append(deltas, domain.CatalogDelta{
			Type:     domain.DeltaUpdate,
			Vehicle:  v,
			AdNumber: v.AdNumber,
			Make:     v.Make,
		})
	}
	for i := range s.vehicles {
		old := &s.vehicles[i]
		if _, still := byAd[old.AdNumber]; still {
			continue
		}
		deltas = append(deltas, domain.CatalogDelta{
			Type:     domain.DeltaRemove,
			AdNumber: old.AdNumber,
			Make:     old.Make,
		})
	}

	s.vehicles = vehicles
	s.byAd = byAd
	s.byMake = byMake
	s.withImages = withImages
	s.fingerprint = snap.Fingerprint
	s.source = source
	s.updatedAt = updatedAt

	return deltas
}

// MarkFetched records a fetch that returned the catalog already held.
func (s *Store) MarkFetched(source domain.SnapshotSource, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
	s.updatedAt = at
}

// Snapshot returns the current catalog. Callers must treat it as read-only.
func (s *Store) Snapshot() []domain.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vehicles
}

// CatalogSnapshot returns the current catalog in its persisted form.
func (s *Store) CatalogSnapshot() domain.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CatalogSnapshot{
		Vehicles:    s.vehicles,
		Fingerprint: s.fingerprint,
		FetchedAt:   s.updatedAt,
	}
}

func (s *Store) Get(adNumber int) (domain.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byAd[adNumber]
	if !ok {
		return domain.Vehicle{}, false
	}
	return s.vehicles[idx], true
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vehicles)
}

func (s *Store) CountWithImages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withImages
}

// Makes lists the distinct makes in the catalog, sorted.
func (s *Store) Makes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	makes := make([]string, 0, len(s.byMake))
	for m := range s.byMake {
		if m != "" {
			makes = append(makes, m)
		}
	}
	slices.Sort(makes)
	return makes
}

func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func (s *Store) Fingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprint
}

func (s *Store) Source() domain.SnapshotSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

func hasChanged(old, new *domain.Vehicle) bool {
	if old.Price != new.Price || old.Mileage != new.Mileage {
		return true
	}
	if old.Title != new.Title || old.Make != new.Make || old.Model != new.Model || old.Version != new.Version {
		return true
	}
	if old.VehicleType != new.VehicleType || old.VehicleClass != new.VehicleClass || old.VehicleCategory != new.VehicleCategory {
		return true
	}
	if old.Color != new.Color || old.ColorType != new.ColorType || old.FuelType != new.FuelType {
		return true
	}
	if old.Gearbox != new.Gearbox || old.TransmissionType != new.TransmissionType || old.EmissionsClass != new.EmissionsClass {
		return true
	}
	if old.RegistrationDate != new.RegistrationDate || old.Description != new.Description {
		return true
	}
	if old.PowerKW != new.PowerKW || old.PowerCV != new.PowerCV || old.Warranty != new.Warranty {
		return true
	}
	if !equalOptional(old.NumSeats, new.NumSeats) || !equalOptional(old.OwnersCount, new.OwnersCount) ||
		!equalOptional(old.DoorsCount, new.DoorsCount) || !equalOptional(old.Weight, new.Weight) ||
		!equalOptional(old.CubicCapacity, new.CubicCapacity) {
		return true
	}
	if old.Damaged != new.Damaged || old.VATReclaimable != new.VATReclaimable || old.IsNew != new.IsNew {
		return true
	}
	if old.ImagesNumber != new.ImagesNumber || !slices.Equal(old.Images, new.Images) {
		return true
	}
	if old.DealerName != new.DealerName || old.DealerCity != new.DealerCity ||
		old.DealerRegion != new.DealerRegion || old.DealerPhone != new.DealerPhone {
		return true
	}
	return false
}

func equalOptional(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
