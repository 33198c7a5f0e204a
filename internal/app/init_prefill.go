package app

import (
	"net"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// dsnSummary describes a DSN without its credentials.
type dsnSummary struct {
	Type     string `json:"database_type"`
	Host     string `json:"database_host,omitempty"`
	Name     string `json:"database_name,omitempty"`
	Path     string `json:"database_path,omitempty"`
	Password bool   `json:"database_password_set"`
}

func summarizeDSN(dsn string) dsnSummary {
	trimmed := strings.TrimSpace(dsn)
	lowered := strings.ToLower(trimmed)
	if strings.HasPrefix(lowered, "postgres://") || strings.HasPrefix(lowered, "postgresql://") {
		summary := dsnSummary{Type: "postgres"}
		if cfg, errParse := pgconn.ParseConfig(trimmed); errParse == nil {
			summary.Host = net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
			summary.Name = cfg.Database
			summary.Password = cfg.Password != ""
		}
		return summary
	}
	path := strings.TrimPrefix(trimmed, "file:")
	path, _, _ = strings.Cut(path, "?")
	return dsnSummary{Type: "sqlite", Path: path}
}

// describeDSN renders a DSN for logs.
func describeDSN(dsn string) string {
	summary := summarizeDSN(dsn)
	if summary.Type == "postgres" {
		return "postgres://" + summary.Host + "/" + summary.Name
	}
	return "sqlite:" + summary.Path
}
