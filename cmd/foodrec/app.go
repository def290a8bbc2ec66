package main

import (
	"context"
	"os"

	"foodrec/internal/config"
	"foodrec/internal/log"
	"foodrec/internal/platform/gradio"
	"foodrec/internal/recipe"
	"foodrec/internal/recommend"
	"foodrec/internal/session"
	"foodrec/internal/settings"
)

// app is the wiring shared by the subcommands.
type app struct {
	cfg      *config.Config
	store    *settings.SQLStore
	endpoint *config.Endpoint
	cache    *session.Cache
	service  *recommend.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	log.Configure(log.Config{Level: cfg.LogLevel})

	store, err := settings.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, store: store}
	a.endpoint = config.NewEndpoint(a.detect(ctx))

	client := gradio.NewClient(
		gradio.WithToken(cfg.HFToken),
		gradio.WithParamOrder(recommend.PredictEndpoint, recipe.PredictParams),
	)
	a.cache = session.NewCache(client)
	a.service = recommend.NewService(a.cache, a.endpoint.URL)
	return a, nil
}

func (a *app) detect(ctx context.Context) string {
	return config.ResolveEndpoint(ctx, a.cfg.APIURL, a.store, os.Getenv)
}

func (a *app) Close() error {
	return a.store.Close()
}
