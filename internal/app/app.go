package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/accounts"
	"github.com/router-for-me/CourseMarket/internal/catalog"
	"github.com/router-for-me/CourseMarket/internal/config"
	"github.com/router-for-me/CourseMarket/internal/db"
	"github.com/router-for-me/CourseMarket/internal/enrollment"
	"github.com/router-for-me/CourseMarket/internal/groups"
	"github.com/router-for-me/CourseMarket/internal/http/api/admin"
	"github.com/router-for-me/CourseMarket/internal/http/api/front"
	"github.com/router-for-me/CourseMarket/internal/http/api/middleware"
	"github.com/router-for-me/CourseMarket/internal/ledger"
	"github.com/router-for-me/CourseMarket/internal/ratelimit"
	internalsettings "github.com/router-for-me/CourseMarket/internal/settings"
	"github.com/router-for-me/CourseMarket/internal/store"
	"github.com/router-for-me/CourseMarket/internal/watcher"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var errMissingJWTSecret = errors.New("missing jwt secret (set `jwt.secret` in config file or env JWT_SECRET)")

// Services bundles the domain services built over one database connection.
type Services struct {
	DB          *gorm.DB
	Store       store.Store
	Accounts    *accounts.Service
	Catalog     *catalog.Service
	Coordinator *enrollment.Coordinator
	Limiter     *ratelimit.Manager
}

// NewServices wires the store, ledger, allocator and use cases over conn.
func NewServices(conn *gorm.DB) *Services {
	st := store.NewGormStore(conn)
	l := ledger.New(internalsettings.DefaultBalanceAmount)
	allocator := groups.NewAllocator(groups.DefaultGroupCount)
	return &Services{
		DB:          conn,
		Store:       st,
		Accounts:    accounts.NewService(st, l),
		Catalog:     catalog.NewService(st, allocator),
		Coordinator: enrollment.NewCoordinator(st, l, allocator),
		Limiter:     ratelimit.NewManager(nil, nil, nil),
	}
}

// NewEngine builds the HTTP router with every API mounted.
func NewEngine(svc *Services, jwtCfg config.JWTConfig, initState *atomic.Bool) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())

	admin.RegisterAdminRoutes(engine, admin.Deps{
		DB:       svc.DB,
		Store:    svc.Store,
		Accounts: svc.Accounts,
		Catalog:  svc.Catalog,
		JWT:      jwtCfg,
	})
	front.RegisterFrontRoutes(engine, front.Deps{
		Store:       svc.Store,
		Accounts:    svc.Accounts,
		Catalog:     svc.Catalog,
		Coordinator: svc.Coordinator,
		Limiter:     svc.Limiter,
		JWT:         jwtCfg,
	})
	registerInitRoutes(engine, svc, initState)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return engine
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn.WithContext(ctx))
}

// RunServer boots the marketplace API and blocks until ctx is canceled.
func RunServer(ctx context.Context, cfg config.AppConfig, defaultPort int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	log.SetLevel(config.LoadLogLevel(configPath))

	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	jwtConfig, _ := config.LoadJWTConfig(configPath)
	if strings.TrimSpace(jwtConfig.Secret) == "" {
		return errMissingJWTSecret
	}
	serverCfg, err := config.LoadServerConfig(configPath, defaultPort)
	if err != nil {
		return err
	}

	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errLoad := internalsettings.LoadDBConfig(ctx, conn); errLoad != nil {
		return errLoad
	}

	initialized, errInit := HasAdminInitialized(conn)
	if errInit != nil {
		return errInit
	}
	var initState atomic.Bool
	initState.Store(initialized)
	if !initialized {
		log.Warn("no admin account found; POST /v0/init/setup to create one")
	}

	svc := NewServices(conn)
	defer func() {
		if errClose := svc.Limiter.Close(); errClose != nil {
			log.WithError(errClose).Warn("rate limiter close failed")
		}
	}()

	settingsWatcher := watcher.NewSettingsWatcher(conn, 0)
	if errStart := settingsWatcher.Start(ctx); errStart != nil {
		return errStart
	}
	defer func() {
		_ = settingsWatcher.Stop()
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              serverCfg.Addr(),
		Handler:           NewEngine(svc, jwtConfig, &initState),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.WithFields(log.Fields{
		"addr":     srv.Addr,
		"database": describeDSN(dsn),
		"config":   configPath,
	}).Info("starting course market server")
	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", errListen)
	}
	return nil
}
