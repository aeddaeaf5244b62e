package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// discardRatio is the minimum share of stale data a value log file must
// hold before badger rewrites it.
const discardRatio = 0.5

// StorageGCWorker periodically reclaims space from the message store's
// value log. Badger never runs this on its own; without it a long-lived
// server keeps every overwritten and deleted entry on disk.
type StorageGCWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewStorageGCWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *StorageGCWorker {
	return &StorageGCWorker{log: log, db: db, interval: interval}
}

func (w *StorageGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping storage GC")
			return nil
		case <-ticker.C:
			// One tick may free several files; keep going until badger
			// reports there is nothing left worth rewriting.
			for {
				err := w.db.RunValueLogGC(discardRatio)
				if err == nil {
					w.log.Debug("Value log file reclaimed")
					continue
				}
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				w.log.Warn("Value log GC failed", "error", err)
				break
			}
		}
	}
}
