package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricepredictor/internal/config"
	"pricepredictor/internal/handler"
	"pricepredictor/internal/presenter"
	"pricepredictor/internal/pricing"
	"pricepredictor/internal/repository"
	"pricepredictor/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Price Predictor")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Prediction storage is optional; predictions work without it
	var (
		store   service.PredictionStore
		history handler.PredictionHistory
	)
	if cfg.PostgreSQL.Enabled {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			log.Printf("⚠️  Failed to connect to database, predictions will not be stored: %v", err)
		} else {
			defer repo.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err = repo.Migrate(ctx)
			cancel()
			if err != nil {
				log.Fatalf("Failed to migrate database: %v", err)
			}

			store, history = repo, repo
			log.Println("✅ Connected to PostgreSQL database")
		}
	} else {
		log.Println("⚠️  PostgreSQL is disabled - prediction history will not be available")
		log.Println("   Set DATABASE_URL to enable it")
	}

	// Initialize prediction API client
	var remote service.RemoteEstimator
	if cfg.Predictor.Enabled {
		remote = service.NewOpenAIClient(&cfg.Predictor)
		log.Printf("✅ Prediction API client initialized")
		log.Printf("   - API URL: %s", cfg.Predictor.APIURL)
		log.Printf("   - Model: %s", cfg.Predictor.Model)
		log.Printf("   - MaxTokens: %d", cfg.Predictor.MaxTokens)
		log.Printf("   - Temperature: %.2f", cfg.Predictor.Temperature)
		log.Printf("   - Timeout: %ds, attempts: %d", cfg.Predictor.Timeout, cfg.Predictor.MaxAttempts)
		log.Printf("   - Lenient JSON: %v", cfg.Predictor.LenientJSON)
	} else {
		log.Println("⚠️  Prediction API is disabled - every prediction will use the fallback estimator")
		log.Println("   Set PREDICTOR_API_KEY environment variable to enable AI predictions")
	}

	// Initialize services
	formatter := pricing.NewPriceFormatter(cfg.App.Currency, cfg.App.CurrencyLocale)
	fallback := pricing.NewEstimator(cfg.App.DefaultConfidence, formatter)
	predictor := service.NewPredictor(remote, fallback, store, cfg.App)

	log.Println("✅ Services initialized")

	// Initialize handlers
	predictHandler := handler.NewPredictHandler(predictor, presenter.New())
	historyHandler := handler.NewHistoryHandler(history, cfg.History.DefaultLimit, cfg.History.MaxLimit)
	feedbackHandler := handler.NewFeedbackHandler(history)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	origins := config.SplitList(cfg.Server.AllowedOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = config.SplitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = config.SplitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":         "healthy",
			"service":        "price-predictor",
			"version":        Version,
			"build_time":     BuildTime,
			"git_commit":     GitCommit,
			"remote_enabled": remote != nil,
			"storage":        history != nil,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Prediction endpoints
		apiV1.GET("/categories", predictHandler.Categories)
		apiV1.POST("/predict", predictHandler.Predict)
		apiV1.POST("/predict/stream", predictHandler.PredictStream) // Streaming prediction
		apiV1.POST("/predict/basic", predictHandler.Basic)

		// History endpoints
		apiV1.GET("/predictions/recent", historyHandler.Recent)
		apiV1.GET("/predictions/:id/similar", historyHandler.Similar)

		// Feedback endpoint
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("🌐 Web UI: http://localhost:%d", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}
