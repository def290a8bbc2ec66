package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foodrec/internal/api"
	"foodrec/internal/config"
	"foodrec/internal/log"
	"foodrec/internal/platform/gradio"
	"foodrec/internal/recipe"
	"foodrec/internal/recommend"
	"foodrec/internal/session"
	"foodrec/internal/settings"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Configure(log.Config{Level: cfg.LogLevel})
	logger := log.WithComponent("main")

	store, err := settings.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating settings store")
	}
	defer store.Close()

	ctx := context.Background()
	detect := func(ctx context.Context) string {
		return config.ResolveEndpoint(ctx, cfg.APIURL, store, os.Getenv)
	}
	endpoint := config.NewEndpoint(detect(ctx))
	if err := store.SaveSetting(ctx, config.SettingAPIURL, endpoint.URL()); err != nil {
		logger.Warn().Err(err).Msg("failed to persist endpoint")
	}

	client := gradio.NewClient(
		gradio.WithToken(cfg.HFToken),
		gradio.WithParamOrder(recommend.PredictEndpoint, recipe.PredictParams),
	)
	cache := session.NewCache(client)
	svc := recommend.NewService(cache, endpoint.URL)

	handler := api.NewHandler(svc, store, cache, endpoint, detect, cfg.RequestTimeout)

	r := newRouter(cfg.AllowedOrigins, handler)

	logger.Info().Str("addr", cfg.ListenAddr).Str("api_url", endpoint.URL()).Msg("food recommender listening")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func newRouter(allowedOrigins []string, handler *api.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger())

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", api.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", api.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.Register(r, handler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
