package app

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/router-for-me/CourseMarket/internal/db"
	"github.com/router-for-me/CourseMarket/internal/models"
	internalsettings "github.com/router-for-me/CourseMarket/internal/settings"
)

func TestCreateAdminUserWithConn_OpensBalance(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "market-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Cleanup(func() { internalsettings.StoreDBConfig(nil) })

	if errCreate := CreateAdminUserWithConn(context.Background(), conn, "Root@Example.com", "password", "Academy"); errCreate != nil {
		t.Fatalf("CreateAdminUserWithConn: %v", errCreate)
	}

	var admin models.User
	if errFind := conn.Preload("Balance").First(&admin).Error; errFind != nil {
		t.Fatalf("find admin: %v", errFind)
	}
	if !admin.IsAdmin || admin.Email != "root@example.com" || admin.Username != "root" {
		t.Fatalf("unexpected admin %+v", admin)
	}
	if admin.Balance == nil || admin.Balance.Amount.StringFixed(2) != internalsettings.DefaultBalance {
		t.Fatalf("expected opening balance %s, got %+v", internalsettings.DefaultBalance, admin.Balance)
	}

	var setting models.Setting
	if errFind := conn.Where("key = ?", internalsettings.SiteNameKey).First(&setting).Error; errFind != nil {
		t.Fatalf("find site name: %v", errFind)
	}
	var siteName string
	if errDecode := json.Unmarshal(setting.Value, &siteName); errDecode != nil || siteName != "Academy" {
		t.Fatalf("expected site name Academy, got %q (err=%v)", siteName, errDecode)
	}

	if errDup := CreateAdminUserWithConn(context.Background(), conn, "root@example.com", "password", ""); errDup == nil {
		t.Fatalf("expected duplicate admin email to fail")
	}
}
