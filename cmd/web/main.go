package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/pestguard/pestguard-web/internal/config"
	"github.com/pestguard/pestguard-web/internal/domain/catalog"
	"github.com/pestguard/pestguard-web/internal/domain/dashboard"
	"github.com/pestguard/pestguard-web/internal/domain/gallery"
	"github.com/pestguard/pestguard-web/internal/domain/images"
	"github.com/pestguard/pestguard-web/internal/middleware"
	"github.com/pestguard/pestguard-web/internal/pkg/database"
	"github.com/pestguard/pestguard-web/internal/pkg/imaging"
	"github.com/pestguard/pestguard-web/internal/pkg/logger"
	"github.com/pestguard/pestguard-web/internal/pkg/pestapi"
	"github.com/pestguard/pestguard-web/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("api", cfg.APIBaseURL).
		Msg("Starting PestGuard web")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redis, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	// ---------- Catalog ----------
	resolver := images.NewResolver(cfg.ImageBasePath, images.DefaultManifest())
	pests, err := catalog.Load(catalog.DefaultSource(), resolver)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load pest catalog")
	}
	store := catalog.NewStore(pests)
	log.Info().Int("pests", len(pests)).Int("image_folders", len(resolver.Folders())).Msg("Catalog loaded")

	// ---------- Gallery ----------
	var sessions gallery.Store = gallery.NewMemoryStore(cfg.GalleryTTL)
	if redis != nil {
		sessions = gallery.NewRedisStore(redis, cfg.GalleryTTL)
	}

	// ---------- Marketplace ----------
	client := pestapi.NewClient(cfg.APIBaseURL, cfg.APITimeout(), cfg.APIUserAgent)
	registry := dashboard.NewRegistry(client, cfg.DashboardIdleTTL)
	go registry.Run(ctx)

	// ---------- Handlers ----------
	catalogHandler := catalog.NewHandler(store, catalog.NewRenderer(), resolver, cfg.PlaceholderImage)
	galleryHandler := gallery.NewHandler(gallery.NewService(sessions, store))
	dashboardHandler := dashboard.NewHandler(registry, client, store, imaging.NewProcessor(imaging.Config{
		MaxSide: cfg.AnalyzeMaxSide,
	}))

	r := newRouter(cfg, catalogHandler, galleryHandler, dashboardHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	registry.Close()

	log.Info().Msg("Server exited properly")
}

func newRouter(cfg *config.Config, catalogHandler *catalog.Handler, galleryHandler *gallery.Handler, dashboardHandler *dashboard.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/pests", catalogHandler.Routes())
		r.Mount("/gallery", galleryHandler.Routes())
		r.Mount("/dashboard", dashboardHandler.Routes(middleware.RequireCredentials))
		dashboardHandler.PublicRoutes(r)
	})

	return r
}
