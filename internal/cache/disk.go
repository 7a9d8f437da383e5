package cache

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"dealerfeed/internal/domain"
)

const snapshotFile = "catalog_snapshot.gob.gz"

// DiskCache keeps the last snapshot as a gzipped gob file.
type DiskCache struct {
	dir    string
	logger *slog.Logger
}

func NewDiskCache(dir string, logger *slog.Logger) *DiskCache {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "dealerfeed-cache")
	}
	return &DiskCache{
		dir:    dir,
		logger: logger.With("component", "disk_cache"),
	}
}

func (c *DiskCache) Path() string {
	return filepath.Join(c.dir, snapshotFile)
}

func (c *DiskCache) SaveSnapshot(_ context.Context, snap *domain.CatalogSnapshot) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	path := c.Path()
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	zw, err := gzip.NewWriterLevel(f, gzip.BestSpeed)
	if err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	encErr := gob.NewEncoder(zw).Encode(snap)
	closeErr := zw.Close()
	fileCloseErr := f.Close()
	if err := errors.Join(encErr, closeErr, fileCloseErr); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming snapshot: %w", err)
	}

	c.logger.Debug("snapshot saved", "path", path, "vehicles", len(snap.Vehicles))
	return nil
}

func (c *DiskCache) LoadSnapshot(_ context.Context) (*domain.CatalogSnapshot, error) {
	f, err := os.Open(c.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer zr.Close()

	var snap domain.CatalogSnapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	// gob drops empty slices; listings without pictures carry an empty list.
	for i := range snap.Vehicles {
		if snap.Vehicles[i].Images == nil {
			snap.Vehicles[i].Images = []string{}
		}
	}
	return &snap, nil
}
