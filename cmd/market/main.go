package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/router-for-me/CourseMarket/internal/app"
	"github.com/router-for-me/CourseMarket/internal/config"
	log "github.com/sirupsen/logrus"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errRun := run(ctx, os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the init or main server.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("market", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", config.DefaultPort, "server port (used for init server and when config omits one)")
	migrateOnly := fs.Bool("migrate", false, "run database migrations and exit")
	adminEmail := fs.String("admin-email", "", "create an admin account with this email and exit")
	adminPassword := fs.String("admin-password", "", "password for -admin-email")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	if errValidate := validatePort(*port); errValidate != nil {
		return errValidate
	}

	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if strings.TrimSpace(*cfgPath) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(*cfgPath)
	}
	configPath := config.ResolveConfigPath(appCfg.ConfigPath)

	if *migrateOnly {
		return app.Migrate(ctx, appCfg)
	}
	if strings.TrimSpace(*adminEmail) != "" {
		return createAdmin(ctx, configPath, *adminEmail, *adminPassword)
	}

	if !app.ConfigExists(configPath) && strings.TrimSpace(os.Getenv(config.EnvDBConnection)) == "" {
		log.Info("config.yaml not found, starting init server...")
		errInit := app.RunInitServer(ctx, appCfg, *port)
		if errors.Is(errInit, app.ErrInitCompleted) {
			log.Info("initialization completed, starting main server...")
			return app.RunServer(ctx, appCfg, *port)
		}
		return errInit
	}

	return app.RunServer(ctx, appCfg, *port)
}

func createAdmin(ctx context.Context, configPath, email, password string) error {
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	if errCreate := app.CreateAdminUser(ctx, dsn, email, password, ""); errCreate != nil {
		return errCreate
	}
	log.WithField("email", email).Info("admin account created")
	return nil
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
