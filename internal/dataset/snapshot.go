// Package dataset loads locally stored routing datasets and keeps them
// fresh while the server runs.
package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
)

// SnapshotEngine serves precomputed route payloads from a dataset
// directory. Payloads are keyed by the rounded origin/destination pair;
// "default.json" answers pairs without a dedicated snapshot. Each payload
// file holds a JSON object shaped like the remote route-array response.
type SnapshotEngine struct {
	dir string
}

// OpenSnapshot validates the dataset directory and returns an engine
// over it.
func OpenSnapshot(dir string) (*SnapshotEngine, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset path %q is not a directory", dir)
	}
	return &SnapshotEngine{dir: dir}, nil
}

// Route returns the snapshot payload for the coordinate pair.
func (e *SnapshotEngine) Route(_ context.Context, origin, destination orb.Point) ([]byte, error) {
	name := snapshotKey(origin, destination) + ".json"
	b, err := os.ReadFile(filepath.Join(e.dir, name))
	if err == nil {
		return b, nil
	}
	b, fallbackErr := os.ReadFile(filepath.Join(e.dir, "default.json"))
	if fallbackErr == nil {
		return b, nil
	}
	return nil, fmt.Errorf("no snapshot for %s: %w", name, err)
}

func snapshotKey(origin, destination orb.Point) string {
	return fmt.Sprintf("%.3f,%.3f-%.3f,%.3f",
		origin.Lon(), origin.Lat(), destination.Lon(), destination.Lat())
}
