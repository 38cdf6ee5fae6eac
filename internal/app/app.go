// Package app wires the stores, caches, upstream clients and services from
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/account"
	"github.com/agenthands/automationvault/internal/assistant"
	"github.com/agenthands/automationvault/internal/auth"
	"github.com/agenthands/automationvault/internal/billing"
	"github.com/agenthands/automationvault/internal/cache"
	"github.com/agenthands/automationvault/internal/catalog"
	"github.com/agenthands/automationvault/internal/config"
	"github.com/agenthands/automationvault/internal/downloads"
	"github.com/agenthands/automationvault/internal/generator"
	"github.com/agenthands/automationvault/internal/intake"
	"github.com/agenthands/automationvault/internal/llm"
	"github.com/agenthands/automationvault/internal/storage"
	"github.com/agenthands/automationvault/internal/store"
)

// App holds every service the HTTP layer and the CLI commands use. The
// caller must call Close when done.
type App struct {
	Config *config.Config
	Log    *zap.Logger
	Store  store.Store
	Cache  cache.Cache

	Verifier  *auth.Verifier
	Catalog   *catalog.Service
	Recorder  *downloads.Recorder
	History   *downloads.History
	Account   *account.Service
	Generator *generator.Proxy
	Assistant *assistant.Service
	Intake    *intake.Service
	Billing   *billing.Service
}

// New opens the configured store and cache and builds the services on top.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	s, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(ctx, cfg.Cache, cfg.Redis, log)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	var signer storage.URLSigner
	if cfg.Storage.S3Region != "" {
		s3, err := storage.NewS3Signer(ctx, cfg.Storage)
		if err != nil {
			s.Close()
			closeCache(c)
			return nil, fmt.Errorf("creating s3 signer: %w", err)
		}
		signer = s3
	}

	mainLLM, err := llm.NewClient(ctx, cfg.LLM, "", log)
	if err != nil {
		s.Close()
		closeCache(c)
		return nil, fmt.Errorf("creating llm client: %w", err)
	}
	classifierLLM, err := llm.NewClient(ctx, cfg.LLM, cfg.LLM.ClassifierModel, log)
	if err != nil {
		s.Close()
		closeCache(c)
		return nil, fmt.Errorf("creating classifier llm client: %w", err)
	}

	return Build(cfg, log, s, c, signer, mainLLM, classifierLLM, billing.NewStripeGateway(cfg.Billing.StripeSecretKey)), nil
}

// Build assembles the services from already constructed dependencies.
// signer may be nil when no object storage is configured.
func Build(
	cfg *config.Config,
	log *zap.Logger,
	s store.Store,
	c cache.Cache,
	signer storage.URLSigner,
	mainLLM, classifierLLM llm.LLMClient,
	gateway billing.Gateway,
) *App {
	cat := catalog.NewService(s, c, cfg.Cache.CatalogTTL(), log)
	history := downloads.NewHistory(s, c, cfg.Cache.DownloadsTTL(), log)
	proxy := generator.NewProxy(mainLLM, log)

	return &App{
		Config:    cfg,
		Log:       log,
		Store:     s,
		Cache:     c,
		Verifier:  auth.NewVerifier(cfg.Auth),
		Catalog:   cat,
		Recorder:  downloads.NewRecorder(s, s, downloads.NewMaterializer(signer), history, log),
		History:   history,
		Account:   account.NewService(s, history),
		Generator: proxy,
		Assistant: assistant.NewService(proxy, cat, llm.IsConfigured(mainLLM), log),
		Intake:    intake.NewService(intake.NewClassifier(classifierLLM, log), s, cat, log),
		Billing:   billing.NewService(cfg.Billing, gateway, s, log),
	}
}

// Close releases the store and, when it holds a connection, the cache.
func (a *App) Close() error {
	err := a.Store.Close()
	return errors.Join(err, closeCache(a.Cache))
}

func closeCache(c cache.Cache) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
