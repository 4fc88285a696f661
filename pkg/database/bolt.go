package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/timshannon/bolthold"
	bolt "go.etcd.io/bbolt"
)

// OpenBolt opens (creating if needed) the embedded document store at path.
func OpenBolt(path string) (*bolthold.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	store, err := bolthold.Open(path, 0o600, &bolthold.Options{
		Options: &bolt.Options{Timeout: 5 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	return store, nil
}
