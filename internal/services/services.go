// Package services wires the conversation core, providers, and supporting
// collaborators into the instances the transport layer talks to.
package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/librarian/librarian-backend/internal/analytics"
	"github.com/librarian/librarian-backend/internal/config"
	"github.com/librarian/librarian-backend/internal/conversation"
	"github.com/librarian/librarian-backend/internal/cost"
	"github.com/librarian/librarian-backend/internal/providers"
	"github.com/librarian/librarian-backend/internal/retrieval"
	"github.com/librarian/librarian-backend/internal/skills"
)

// Services holds all service instances.
type Services struct {
	Config       *config.Config
	Log          *logrus.Logger
	Orchestrator *conversation.Orchestrator
	Providers    *providers.Registry
	Analytics    *analytics.Service
	Skills       *skills.Manager
	Documents    retrieval.Store
	Chat         *ChatService
}

// NewServices builds the conversation core from configuration and wires the
// chat service on top of it.
func NewServices(
	cfg *config.Config,
	log *logrus.Logger,
	registry *providers.Registry,
	skillManager *skills.Manager,
	documents retrieval.Store,
) *Services {
	rates := cost.Rates{
		InputPerMTok:      cfg.Pricing.InputPerMTok,
		CacheWritePerMTok: cfg.Pricing.CacheWritePerMTok,
		CacheReadPerMTok:  cfg.Pricing.CacheReadPerMTok,
		OutputPerMTok:     cfg.Pricing.OutputPerMTok,
	}

	turns := conversation.NewTurnStore()
	sideCache := conversation.NewSideCache(time.Duration(cfg.Cache.SideTTLSeconds) * time.Second)
	manager := conversation.NewManager(turns, sideCache, log)
	ledger := cost.NewLedger(rates)
	orchestrator := conversation.NewOrchestrator(manager, turns, sideCache, ledger, cfg.Cache.FreshnessWindow, log)

	analyticsService := analytics.NewService()

	chat := NewChatService(ChatDeps{
		Orchestrator:    orchestrator,
		Providers:       registry,
		Analytics:       analyticsService,
		Skills:          skillManager,
		Documents:       documents,
		DefaultProvider: cfg.DefaultProvider,
		DefaultModel:    cfg.DefaultModel,
		Log:             log,
	})

	return &Services{
		Config:       cfg,
		Log:          log,
		Orchestrator: orchestrator,
		Providers:    registry,
		Analytics:    analyticsService,
		Skills:       skillManager,
		Documents:    documents,
		Chat:         chat,
	}
}
