package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// StoreGCWorker runs Badger's value-log garbage collection on a timer.
// Badger never reclaims value-log space on its own; the owner of the
// DB is expected to drive it.
type StoreGCWorker struct {
	db       *badger.DB
	log      *slog.Logger
	interval time.Duration
}

func NewStoreGCWorker(db *badger.DB, log *slog.Logger, interval time.Duration) *StoreGCWorker {
	return &StoreGCWorker{db: db, log: log, interval: interval}
}

func (w *StoreGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// One GC call rewrites at most one value-log file; repeat
			// until there is nothing left to reclaim.
			for {
				err := w.db.RunValueLogGC(0.5)
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					w.log.Warn("Value-log GC failed", "error", err)
					break
				}
				w.log.Debug("Value-log file reclaimed")
			}
		}
	}
}
