package watcher

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	dbutil "github.com/router-for-me/CourseMarket/internal/db"
	"github.com/router-for-me/CourseMarket/internal/models"
	internalsettings "github.com/router-for-me/CourseMarket/internal/settings"
	"gorm.io/datatypes"
)

func TestPollReloadsOnlyOnChange(t *testing.T) {
	conn, err := dbutil.Open("file:" + filepath.Join(t.TempDir(), "watcher-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := dbutil.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Cleanup(func() { internalsettings.StoreDBConfig(nil) })

	w := NewSettingsWatcher(conn, time.Hour)
	ctx := context.Background()
	if !w.Poll(ctx, true) {
		t.Fatalf("expected forced poll to reload")
	}
	if w.Poll(ctx, false) {
		t.Fatalf("expected unchanged settings to skip reload")
	}

	res := conn.Model(&models.Setting{}).
		Where("key = ?", internalsettings.PurchaseRateLimitKey).
		Updates(map[string]any{
			"value":      datatypes.JSON(json.RawMessage(`7`)),
			"updated_at": time.Now().UTC().Add(time.Minute),
		})
	if res.Error != nil {
		t.Fatalf("update setting: %v", res.Error)
	}

	if !w.Poll(ctx, false) {
		t.Fatalf("expected changed settings to reload")
	}
	raw, ok := internalsettings.DBConfigValue(internalsettings.PurchaseRateLimitKey)
	if !ok || string(raw) != "7" {
		t.Fatalf("expected cached value 7, got %q", string(raw))
	}
}

func TestStartStop(t *testing.T) {
	conn, err := dbutil.Open("file:" + filepath.Join(t.TempDir(), "watcher-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := dbutil.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Cleanup(func() { internalsettings.StoreDBConfig(nil) })

	w := NewSettingsWatcher(conn, 10*time.Millisecond)
	if errStart := w.Start(context.Background()); errStart != nil {
		t.Fatalf("start: %v", errStart)
	}
	time.Sleep(30 * time.Millisecond)
	if errStop := w.Stop(); errStop != nil {
		t.Fatalf("stop: %v", errStop)
	}
	if _, ok := internalsettings.DBConfigValue(internalsettings.DefaultBalanceKey); !ok {
		t.Fatalf("expected settings snapshot loaded after start")
	}
}
