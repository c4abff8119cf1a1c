package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/vintagevault/pricing-service/config"
	"github.com/vintagevault/pricing-service/internal/ai"
	"github.com/vintagevault/pricing-service/internal/approval"
	"github.com/vintagevault/pricing-service/internal/comps"
	"github.com/vintagevault/pricing-service/internal/database"
	"github.com/vintagevault/pricing-service/internal/handlers"
	"github.com/vintagevault/pricing-service/internal/middleware"
	"github.com/vintagevault/pricing-service/internal/sweepers"
	"github.com/vintagevault/pricing-service/internal/telemetry"
	"github.com/vintagevault/pricing-service/internal/webhooks"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting pricing service")

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := database.Connect(
		ctx,
		dbURL,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.GetConfigFromEnv())
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry initialization failed, continuing without it")
		telemetryShutdown = func(context.Context) error { return nil }
	}

	pool := database.Pool()
	approvalStore := approval.NewStore(pool)
	compStore := comps.NewStore(pool)

	var analyzer *ai.Analyzer
	if cfg.Anthropic.APIKey != "" {
		client := ai.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		analyzer = ai.NewAnalyzer(client, *logger)
	} else {
		logger.Warn().Msg("ANTHROPIC_API_KEY not set, draft analysis disabled")
	}

	if cfg.Stripe.WebhookSecret == "" {
		logger.Warn().Msg("STRIPE_WEBHOOK_SECRET not set, webhook deliveries will be refused")
	}
	processor := webhooks.NewProcessor(pool, cfg.Stripe.WebhookSecret, *logger)

	dashboardSweeper := sweepers.NewDashboardSweeper(pool, logger, cfg.Sweeper.DashboardInterval)
	go dashboardSweeper.Start(ctx)

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	pricingHandler := handlers.NewPricingHandler(compStore, *logger)
	approvalHandler := handlers.NewApprovalHandler(approvalStore, *logger)
	compsHandler := handlers.NewCompsHandler(compStore, *logger)
	webhookHandler := handlers.NewWebhookHandler(processor, *logger)
	dashboardHandler := handlers.NewDashboardHandler(dashboardSweeper)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.POST("/webhooks/stripe", webhookHandler.HandleStripe)

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuth(cfg.Auth.InternalAPIKey))
	internal.Use(middleware.ServiceRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize))
	{
		internal.GET("/health", handlers.HealthCheck)

		pricing := internal.Group("/pricing")
		{
			pricing.POST("/calculate", pricingHandler.Calculate)
			pricing.POST("/simple", pricingHandler.Simple)
		}

		approvals := internal.Group("/approvals")
		{
			approvals.GET("", approvalHandler.List)
			approvals.GET("/history", approvalHandler.History)
			approvals.POST("/:id/approve", approvalHandler.Approve)
			approvals.POST("/:id/reject", approvalHandler.Reject)
			approvals.POST("/bulk-approve", approvalHandler.BulkApprove)
		}

		if analyzer != nil {
			draftHandler := handlers.NewDraftHandler(analyzer, approvalStore, compStore, *logger)
			internal.POST("/drafts/analyze", draftHandler.Analyze)
		}

		compGroup := internal.Group("/comps")
		{
			compGroup.POST("/import", compsHandler.Import)
			compGroup.GET("/:category", compsHandler.CategoryPrices)
		}

		internal.GET("/dashboard/metrics", dashboardHandler.Metrics)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	dashboardSweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := telemetryShutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "pricing-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
