// Package app wires application services with infrastructure adapters.
package app

import (
	"context"
	"path/filepath"

	"hactl/internal/application/resolve"
	"hactl/internal/domain"
	"hactl/internal/infrastructure/config"
	"hactl/internal/infrastructure/contextstore"
	"hactl/internal/infrastructure/hass"
	"hactl/internal/infrastructure/history"
	"hactl/internal/infrastructure/registry"
	"hactl/internal/match"
	"hactl/internal/nlp"
	"hactl/internal/pkg/logger"
	"hactl/internal/pkg/xdg"
	"hactl/internal/ports"
)

// Container holds the dependency graph behind the CLI commands.
type Container struct {
	Config       domain.Config
	ConfigLoader *config.FileLoader
	Resolver     *resolve.Service
	Registry     ports.RegistryStore
	Contexts     ports.ContextStore
	History      ports.HistoryStore
	Transport    ports.Transport
	Logger       ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)

	cacheDir, err := xdg.CacheDir()
	if err != nil {
		return nil, err
	}
	stateDir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}

	transport := hass.New(cfg.Hub.Server, cfg.Hub.TokenEnvVar, cfg.Timeout(), log)
	registryStore := registry.New(cacheDir, cfg.Hub.Server, transport, cfg.CategoryTTL, log)
	contextStore := contextstore.New(filepath.Join(stateDir, "context.json"), cfg.ContextTTL())
	historyStore := history.NewSQLiteStore(stateDir)

	resolver := resolve.New(
		nlp.NewParser(),
		match.New(cfg.Matcher.Threshold, cfg.Matcher.MaxSuggestions),
		registryStore,
		contextStore,
		historyStore,
		transport,
		log,
	)

	return &Container{
		Config:       cfg,
		ConfigLoader: cfgLoader,
		Resolver:     resolver,
		Registry:     registryStore,
		Contexts:     contextStore,
		History:      historyStore,
		Transport:    transport,
		Logger:       log,
	}, nil
}
