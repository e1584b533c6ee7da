// Package bolt opens the single-file key/value database used for local sessions.
package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Open initializes the BoltDB file and ensures the given buckets exist.
func Open(path string, logger *zap.Logger, buckets ...string) (*bbolt.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating bolt directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bolt buckets: %w", err)
	}

	logger.Info("opened bolt database", zap.String("path", path))
	return db, nil
}
