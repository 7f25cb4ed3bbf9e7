// Command iam runs the identity and access management service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/iam/authn"
	"github.com/skillsenselab/iam/config"
	"github.com/skillsenselab/iam/logger"
	"github.com/skillsenselab/iam/observability"
	"github.com/skillsenselab/iam/server"
	"github.com/skillsenselab/iam/server/api"
	"github.com/skillsenselab/iam/server/endpoint"
	"github.com/skillsenselab/iam/service"
	"github.com/skillsenselab/iam/snowflake"
	"github.com/skillsenselab/iam/store"
	"github.com/skillsenselab/iam/vault"
	"github.com/skillsenselab/iam/version"
)

const serviceName = "iam"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		logger.NewDefault(serviceName).Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Init(cfg.Logging)
	log := logger.New(&cfg.Logging, serviceName)

	v := version.GetVersionInfo()
	log.Info("Starting identity service", map[string]interface{}{
		"version":     v.Version,
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.Init(ctx, cfg.Observability, cfg.Name, v.Version, cfg.Environment)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", map[string]interface{}{
			"error": err.Error(),
		})
	}

	db, err := store.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	ids, err := snowflake.New(cfg.Snowflake)
	if err != nil {
		log.Fatal("Failed to create identifier generator", map[string]interface{}{
			"error": err.Error(),
		})
	}

	secrets, err := vault.New(cfg.Vault, log)
	if err != nil {
		log.Fatal("Failed to create vault", map[string]interface{}{
			"error": err.Error(),
		})
	}

	provider, err := authn.New(cfg.Authentication, log)
	if err != nil {
		log.Fatal("Failed to create authentication provider", map[string]interface{}{
			"error": err.Error(),
		})
	}
	handler := api.NewHandler(
		provider,
		service.NewUsers(db, ids, secrets, log),
		service.NewClients(db, ids, secrets, log),
		service.NewNotifications(db, ids, log),
		log,
	)

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, cfg.Environment, map[string]endpoint.CheckFunc{
		"database": db.Ping,
	})
	handler.RegisterRoutes(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		log.Fatal("Failed to start server", map[string]interface{}{
			"error": err.Error(),
		})
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Identity service stopped")
	os.Exit(0)
}
