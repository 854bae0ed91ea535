package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/database"
	apierrors "github.com/stwalsh4118/housingdash/api/internal/errors"
	"github.com/stwalsh4118/housingdash/api/internal/handlers"
	"github.com/stwalsh4118/housingdash/api/internal/loader"
	"github.com/stwalsh4118/housingdash/api/internal/logger"
	"github.com/stwalsh4118/housingdash/api/internal/middleware"
	"github.com/stwalsh4118/housingdash/api/internal/repository"
	"github.com/stwalsh4118/housingdash/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env, cfg.Log.Level)
	log.Info("Starting housing dashboard API", map[string]interface{}{
		"version":         handlers.APIVersion,
		"environment":     cfg.Server.Env,
		"port":            cfg.Server.Port,
		"geometry_source": cfg.Data.GeometrySource,
	})

	counties, err := config.LoadCounties(cfg.Data.CountiesFile, cfg.Data.Dir)
	if err != nil {
		log.Fatal("Failed to load county definitions", err, map[string]interface{}{
			"file": cfg.Data.CountiesFile,
		})
	}

	// Tract geometry comes from PostGIS or from per-county GeoJSON files
	ctx := context.Background()
	var (
		tracts repository.TractRepository
		pinger handlers.Pinger
	)
	if cfg.UsesPostGIS() {
		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})
		tracts = repository.NewPostGISTractRepository(db)
		pinger = db
	} else {
		tracts = repository.NewGeoJSONTractRepository()
	}
	tracts = repository.NewCachedTractRepository(tracts)

	// Warm the record cache so the first request does not pay for parsing.
	// A county that fails here is reported by /health/ready and answers 503.
	records := loader.NewCache()
	for _, c := range counties {
		_, stats, err := records.Get(c.TransactionsPath, c)
		if err != nil {
			log.Error("Failed to load county transactions", err, map[string]interface{}{
				"county": c.Slug,
				"path":   c.TransactionsPath,
			})
			continue
		}
		log.Info("County transactions loaded", map[string]interface{}{
			"county":  c.Slug,
			"rows":    stats.Rows,
			"loaded":  stats.Loaded,
			"skipped": stats.Skipped,
		})
	}

	dashboardService := services.NewDashboardService(counties, records, tracts, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(pinger, dashboardService, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	countyHandler := handlers.NewCountyHandler(dashboardService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		c := v1.Group("/counties")
		{
			c.GET("", countyHandler.List)
			c.GET("/:county", countyHandler.Get)
			c.GET("/:county/dashboard", countyHandler.Dashboard)
			c.GET("/:county/map", countyHandler.Map)
			c.GET("/:county/trend", countyHandler.Trend)
			c.GET("/:county/kpis", countyHandler.KPIs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Route not found")
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port":     cfg.Server.Port,
			"addr":     srv.Addr,
			"counties": len(counties),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
