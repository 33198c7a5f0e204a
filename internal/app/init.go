package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/accounts"
	"github.com/router-for-me/CourseMarket/internal/config"
	"github.com/router-for-me/CourseMarket/internal/db"
	"github.com/router-for-me/CourseMarket/internal/http/api/middleware"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/router-for-me/CourseMarket/internal/security"
	internalsettings "github.com/router-for-me/CourseMarket/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InitRequest contains parameters for initial system setup.
type InitRequest struct {
	DatabaseType     string `json:"database_type"`
	DatabaseHost     string `json:"database_host"`
	DatabasePort     int    `json:"database_port"`
	DatabaseUser     string `json:"database_user"`
	DatabasePassword string `json:"database_password"`
	DatabaseName     string `json:"database_name"`
	DatabasePath     string `json:"database_path"`
	DatabaseSSLMode  string `json:"database_ssl_mode"`
	SiteName         string `json:"site_name"`
	AdminEmail       string `json:"admin_email" binding:"required,email"`
	AdminPassword    string `json:"admin_password" binding:"required,min=6"`
}

// InitStatusResponse reports whether initialization is complete.
type InitStatusResponse struct {
	Initialized bool `json:"initialized"`
}

// ConfigExists reports whether the config file exists at the path.
func ConfigExists(configPath string) bool {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return false
	}
	return true
}

// defaultSQLitePath is the default SQLite database file name.
const defaultSQLitePath = "market.db"

// BuildDSN builds a database DSN from the init request.
func BuildDSN(req InitRequest) (string, error) {
	switch strings.ToLower(strings.TrimSpace(req.DatabaseType)) {
	case "", "postgres":
		sslMode := req.DatabaseSSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			req.DatabaseUser,
			req.DatabasePassword,
			req.DatabaseHost,
			req.DatabasePort,
			req.DatabaseName,
			sslMode,
		), nil
	case "sqlite":
		return buildSQLiteDSN(req.DatabasePath), nil
	default:
		return "", fmt.Errorf("unsupported database type")
	}
}

// buildSQLiteDSN prefixes the path with file:. db.Open adds the pragmas.
func buildSQLiteDSN(path string) string {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		dsn = defaultSQLitePath
	}
	if !strings.HasPrefix(strings.ToLower(dsn), "file:") {
		dsn = "file:" + dsn
	}
	return dsn
}

// TestDatabaseConnection validates that the DSN can connect and ping.
func TestDatabaseConnection(dsn string) error {
	conn, err := db.Open(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	defer func() {
		if errClose := sqlDB.Close(); errClose != nil {
			log.Errorf("sql db close error: %v", errClose)
		}
	}()
	return sqlDB.Ping()
}

// validateInitRequest normalizes and validates init input data.
func validateInitRequest(req *InitRequest) error {
	dbType := strings.ToLower(strings.TrimSpace(req.DatabaseType))
	if dbType == "" {
		dbType = "postgres"
	}
	req.DatabaseType = dbType

	switch dbType {
	case "postgres":
		if strings.TrimSpace(req.DatabaseHost) == "" {
			return fmt.Errorf("database host is required")
		}
		if req.DatabasePort <= 0 {
			return fmt.Errorf("invalid database port")
		}
		if strings.TrimSpace(req.DatabaseUser) == "" {
			return fmt.Errorf("database username is required")
		}
		if strings.TrimSpace(req.DatabaseName) == "" {
			return fmt.Errorf("database name is required")
		}
	case "sqlite":
		if strings.TrimSpace(req.DatabasePath) == "" {
			req.DatabasePath = defaultSQLitePath
		}
	default:
		return fmt.Errorf("unsupported database type")
	}
	normalizeAdminInput(req)
	return nil
}

func normalizeAdminInput(req *InitRequest) {
	req.SiteName = strings.TrimSpace(req.SiteName)
	if req.SiteName == "" {
		req.SiteName = internalsettings.DefaultSiteName
	}
	req.AdminEmail = strings.TrimSpace(req.AdminEmail)
}

// generateJWTSecret creates a random JWT secret string.
func generateJWTSecret() string {
	secret, err := security.GenerateRandomString(32)
	if err != nil {
		return "change-me-to-a-secure-random-string"
	}
	return secret
}

// CreateAdminUser opens dsn, migrates it and creates the first admin.
func CreateAdminUser(ctx context.Context, dsn string, email, password, siteName string) error {
	conn, err := db.Open(dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("migrate database: %w", errMigrate)
	}
	return CreateAdminUserWithConn(ctx, conn, email, password, siteName)
}

// CreateAdminUserWithConn creates an admin account with an opening balance and
// seeds the site name.
func CreateAdminUserWithConn(ctx context.Context, conn *gorm.DB, email, password, siteName string) error {
	if conn == nil {
		return fmt.Errorf("open database: nil connection")
	}
	if errLoad := internalsettings.LoadDBConfig(ctx, conn); errLoad != nil {
		return errLoad
	}

	username, _, _ := strings.Cut(accounts.NormalizeEmail(email), "@")
	svc := NewServices(conn)
	if _, errCreate := svc.Accounts.CreateUser(ctx, accounts.NewUser{
		Email:    email,
		Username: username,
		Password: password,
		IsAdmin:  true,
	}); errCreate != nil {
		return fmt.Errorf("create admin: %w", errCreate)
	}
	return upsertSiteNameSetting(ctx, conn, siteName)
}

// upsertSiteNameSetting stores the SITE_NAME setting in the database.
func upsertSiteNameSetting(ctx context.Context, conn *gorm.DB, siteName string) error {
	normalized := strings.TrimSpace(siteName)
	if normalized == "" {
		normalized = internalsettings.DefaultSiteName
	}
	payload, errMarshal := json.Marshal(normalized)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal SITE_NAME setting: %w", errMarshal)
	}
	value := datatypes.JSON(payload)

	now := time.Now().UTC()
	res := conn.WithContext(ctx).Model(&models.Setting{}).Where("key = ?", internalsettings.SiteNameKey).
		Updates(map[string]any{
			"value":      value,
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("db: update SITE_NAME setting: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		internalsettings.SetDBConfigValue(internalsettings.SiteNameKey, json.RawMessage(payload))
		return nil
	}

	setting := models.Setting{
		Key:       internalsettings.SiteNameKey,
		Value:     value,
		UpdatedAt: now,
	}
	if errCreate := conn.WithContext(ctx).Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: create SITE_NAME setting: %w", errCreate)
	}
	internalsettings.SetDBConfigValue(internalsettings.SiteNameKey, json.RawMessage(payload))
	return nil
}

// registerInitRoutes exposes first-admin setup on the main server until an
// admin exists.
func registerInitRoutes(engine *gin.Engine, svc *Services, initState *atomic.Bool) {
	if initState == nil {
		initState = &atomic.Bool{}
		initState.Store(true)
	}
	engine.GET("/v0/init/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, InitStatusResponse{Initialized: initState.Load()})
	})
	engine.POST("/v0/init/setup", func(c *gin.Context) {
		if ok, errInit := HasAdminInitialized(svc.DB); errInit != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "check admin status failed"})
			return
		} else if ok {
			initState.Store(true)
			c.JSON(http.StatusBadRequest, gin.H{"error": "system already initialized"})
			return
		}

		var req InitRequest
		if !middleware.BindJSON(c, &req) {
			return
		}
		normalizeAdminInput(&req)

		if errAdmin := CreateAdminUserWithConn(c.Request.Context(), svc.DB, req.AdminEmail, req.AdminPassword, req.SiteName); errAdmin != nil {
			middleware.RespondError(c, errAdmin)
			return
		}
		initState.Store(true)
		c.JSON(http.StatusOK, gin.H{"message": "initialization successful"})
	})
}

// ErrInitCompleted signals that initialization finished and the server should restart.
var ErrInitCompleted = errors.New("init completed")

// corsMiddleware enables permissive CORS for the init server.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// newInitEngine builds the setup-only router used before a config file exists.
// done is closed after a successful setup.
func newInitEngine(configPath string, port int, done chan<- struct{}) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(corsMiddleware())

	var closed atomic.Bool
	engine.GET("/v0/init/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, InitStatusResponse{Initialized: ConfigExists(configPath)})
	})
	engine.POST("/v0/init/setup", func(c *gin.Context) {
		if ConfigExists(configPath) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "system already initialized"})
			return
		}

		var req InitRequest
		if !middleware.BindJSON(c, &req) {
			return
		}
		if errValidate := validateInitRequest(&req); errValidate != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errValidate.Error()})
			return
		}

		dsn, errBuild := BuildDSN(req)
		if errBuild != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errBuild.Error()})
			return
		}
		if errTest := TestDatabaseConnection(dsn); errTest != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("database connection failed: %v", errTest)})
			return
		}

		if errWrite := config.WriteConfigFile(configPath, dsn, port, generateJWTSecret()); errWrite != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to write config: %v", errWrite)})
			return
		}

		if errAdmin := CreateAdminUser(c.Request.Context(), dsn, req.AdminEmail, req.AdminPassword, req.SiteName); errAdmin != nil {
			if errRemove := os.Remove(configPath); errRemove != nil {
				log.Errorf("remove config file error: %v", errRemove)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to create admin: %v", errAdmin)})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "initialization successful",
			"database": summarizeDSN(dsn),
		})
		if closed.CompareAndSwap(false, true) {
			close(done)
		}
	})
	engine.NoRoute(func(c *gin.Context) {
		if ConfigExists(configPath) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "system initializing, please restart the server"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not initialized, POST /v0/init/setup"})
	})
	return engine
}

// RunInitServer starts the initialization server when config is missing.
func RunInitServer(ctx context.Context, cfg config.AppConfig, port int) error {
	gin.SetMode(gin.ReleaseMode)
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	initDone := make(chan struct{})
	addr := fmt.Sprintf(":%d", port)
	log.Infof("starting init server on %s (config not found at %s)", addr, configPath)

	srv := &http.Server{
		Addr:              addr,
		Handler:           newInitEngine(configPath, port, initDone),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-initDone:
			// let the setup response flush before closing the listener
			time.Sleep(500 * time.Millisecond)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("init server shutdown error: %v", errShutdown)
		}
	}()

	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return errListen
	}

	select {
	case <-initDone:
		return ErrInitCompleted
	default:
		return nil
	}
}
