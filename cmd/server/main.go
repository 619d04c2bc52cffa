package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/librarian/librarian-backend/internal/api"
	"github.com/librarian/librarian-backend/internal/config"
	"github.com/librarian/librarian-backend/internal/database"
	"github.com/librarian/librarian-backend/internal/providers"
	"github.com/librarian/librarian-backend/internal/providers/anthropic"
	"github.com/librarian/librarian-backend/internal/providers/openai"
	"github.com/librarian/librarian-backend/internal/retrieval"
	"github.com/librarian/librarian-backend/internal/services"
	"github.com/librarian/librarian-backend/internal/skills"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	// The document store is Postgres when configured, in-memory otherwise.
	documents := buildDocumentStore(cfg, log)

	skillManager := skills.Load(cfg.Skills.Dir, log)

	registry := providers.NewRegistry()
	registerProviders(registry, cfg, log)

	svc := services.NewServices(cfg, log, registry, skillManager, documents)

	app := fiber.New(fiber.Config{
		AppName:      "Librarian Backend",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	api.SetupRoutes(app, svc)

	startReaper(svc, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.WithField("addr", addr).Info("librarian backend starting")
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// buildDocumentStore connects to Postgres and runs migrations when a database
// host is configured. Without one, retrieval falls back to the in-memory
// store so the server still runs for local development.
func buildDocumentStore(cfg *config.Config, log *logrus.Logger) retrieval.Store {
	if cfg.Database.Host == "" {
		log.Info("no database configured, using in-memory document store")
		return retrieval.NewMemoryStore()
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	log.WithField("host", cfg.Database.Host).Info("using postgres document store")
	return retrieval.NewPostgresStore(db.DB)
}

// registerProviders builds a provider client for every configured entry that
// has credentials. A misconfigured provider is skipped, not fatal.
func registerProviders(registry *providers.Registry, cfg *config.Config, log *logrus.Logger) {
	for id, providerCfg := range cfg.Providers {
		var provider providers.Provider
		var err error

		switch providerCfg.Type {
		case "anthropic":
			provider, err = anthropic.NewProvider(id, providerCfg)
		case "openai":
			provider, err = openai.NewProvider(id, providerCfg)
		default:
			log.WithField("provider", id).Warn("unknown provider type, skipping")
			continue
		}
		if err != nil {
			log.WithError(err).WithField("provider", id).Warn("provider unavailable, skipping")
			continue
		}

		registry.Register(id, provider)
		log.WithField("provider", id).Info("provider registered")
	}
}

// startReaper sweeps idle sessions on the configured interval.
func startReaper(svc *services.Services, log *logrus.Logger) {
	interval := time.Duration(svc.Config.Cache.ReapIntervalSeconds) * time.Second
	if interval <= 0 {
		return
	}
	maxIdle := time.Duration(svc.Config.Cache.SessionMaxIdleSeconds) * time.Second

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if reaped := svc.Orchestrator.Reap(maxIdle); reaped > 0 {
				log.WithField("reaped", reaped).Info("reaped idle sessions")
			}
		}
	}()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
