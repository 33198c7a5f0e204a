// Package watcher keeps the in-memory settings snapshot in sync with the
// settings table so every API instance sees admin changes.
package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/router-for-me/CourseMarket/internal/models"
	internalsettings "github.com/router-for-me/CourseMarket/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultQueryTimeout = 3 * time.Second
)

// SettingsWatcher polls the settings table and reloads the snapshot on change.
type SettingsWatcher struct {
	db           *gorm.DB
	pollInterval time.Duration

	// settings change marker
	latestAt  time.Time
	latestKey string
	hasLatest bool

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSettingsWatcher constructs a watcher. A non-positive interval uses the default.
func NewSettingsWatcher(db *gorm.DB, pollInterval time.Duration) *SettingsWatcher {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &SettingsWatcher{db: db, pollInterval: pollInterval}
}

// Start launches the polling goroutine.
func (w *SettingsWatcher) Start(ctx context.Context) error {
	if w == nil || w.db == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(runCtx)
	}()

	log.Infof("settings watcher started (poll_interval=%s)", w.pollInterval)
	return nil
}

// Stop cancels polling and waits for it to exit.
func (w *SettingsWatcher) Stop() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()
	w.wg.Wait()
	return nil
}

// run executes the periodic polling loop until the context is canceled.
func (w *SettingsWatcher) run(ctx context.Context) {
	w.Poll(ctx, true)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll(ctx, false)
		}
	}
}

// Poll reloads the snapshot when the newest settings row changed, or always
// when force is set. It reports whether a reload happened.
func (w *SettingsWatcher) Poll(ctx context.Context, force bool) bool {
	if w == nil || w.db == nil {
		return false
	}
	qctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	// latestRow captures the newest setting timestamp for change detection.
	type latestRow struct {
		Key       string     `gorm:"column:key"`        // Latest settings key.
		UpdatedAt *time.Time `gorm:"column:updated_at"` // Latest settings update time.
	}
	var latest latestRow
	hasLatest := false
	errLatest := w.db.WithContext(qctx).
		Model(&models.Setting{}).
		Select("key", "updated_at").
		Order("updated_at DESC, key DESC").
		Limit(1).
		Take(&latest).Error
	if errLatest != nil {
		if errors.Is(errLatest, context.Canceled) {
			return false
		}
		if !errors.Is(errLatest, gorm.ErrRecordNotFound) {
			log.WithError(errLatest).Warn("settings watcher: query latest row failed")
			return false
		}
	} else {
		hasLatest = latest.UpdatedAt != nil
	}

	latestKey := strings.TrimSpace(latest.Key)
	latestAt := time.Time{}
	if hasLatest {
		latestAt = latest.UpdatedAt.UTC()
	}

	if !force {
		if !hasLatest {
			if !w.hasLatest {
				return false
			}
		} else if w.hasLatest && latestAt.Equal(w.latestAt) && latestKey == w.latestKey {
			return false
		}
	}

	if errLoad := internalsettings.LoadDBConfig(qctx, w.db); errLoad != nil {
		if errors.Is(errLoad, context.Canceled) {
			return false
		}
		log.WithError(errLoad).Warn("settings watcher: reload failed")
		return false
	}
	log.Debugf("settings watcher: reloaded (latest_updated_at=%s latest_key=%s)", latestAt.Format(time.RFC3339Nano), latestKey)

	w.latestAt = latestAt
	w.latestKey = latestKey
	w.hasLatest = hasLatest && latestKey != ""
	return true
}
