package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL or SQLite depending on the DSN scheme.
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	lowered := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lowered, "postgres://"), strings.HasPrefix(lowered, "postgresql://"):
		dialector = postgres.Open(trimmed)
	default:
		dialector = sqlite.Open(withSQLitePragmas(trimmed))
	}

	conn, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("db: sql handle: %w", err)
	}
	if IsSQLite(conn) {
		// SQLite has a single writer; one connection keeps transactions serialized.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	log.Debugf("db: opened %s connection", DialectName(conn))
	return conn, nil
}

// withSQLitePragmas appends foreign key and busy timeout pragmas when absent.
func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + strings.Join([]string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
	}, "&")
}
