package media

import (
	"time"

	"github.com/crnlicp/chronolock/pkg/log"
	"github.com/crnlicp/chronolock/pkg/storage"
)

// DefaultUploadTTL is how long an unfinished upload may sit before the
// Reaper deletes it.
const DefaultUploadTTL = time.Hour

// Reaper periodically deletes unfinished uploads older than TTL.
type Reaper struct {
	store  storage.Store
	ttl    time.Duration
	stopCh chan struct{}
}

// NewReaper builds a Reaper bound to store. ttl <= 0 uses DefaultUploadTTL.
func NewReaper(store storage.Store, ttl time.Duration) *Reaper {
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}
	return &Reaper{store: store, ttl: ttl, stopCh: make(chan struct{})}
}

// Start begins the reaping loop on a fixed interval, grounded on the
// ticker-driven background loop used elsewhere for periodic maintenance.
func (r *Reaper) Start(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go r.run(interval)
}

// Stop ends the reaping loop.
func (r *Reaper) Stop() {
	close(r.stopCh)
}

func (r *Reaper) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := log.WithComponent("media_reaper")
	logger.Info().Msg("media reaper started")

	for {
		select {
		case <-ticker.C:
			if err := r.ReapOnce(time.Now()); err != nil {
				logger.Error().Err(err).Msg("reap cycle failed")
			}
		case <-r.stopCh:
			logger.Info().Msg("media reaper stopped")
			return
		}
	}
}

// ReapOnce runs a single reap pass against now, deleting unfinished
// uploads older than ttl. Exported so callers (and tests) can drive one
// pass deterministically instead of waiting on the ticker.
func (r *Reaper) ReapOnce(now time.Time) error {
	var stale []string
	err := r.store.View(func(tx storage.Tx) error {
		objects, err := tx.ListMediaObjects()
		if err != nil {
			return err
		}
		for _, obj := range objects {
			if !obj.Finalized && now.Sub(obj.CreatedAt) > r.ttl {
				stale = append(stale, obj.ID)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}
	return r.store.WithTx(func(tx storage.Tx) error {
		for _, id := range stale {
			if err := tx.DeleteMediaObject(id); err != nil {
				return err
			}
		}
		return nil
	})
}
