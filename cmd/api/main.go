package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/Clinicreportanalytics/internal/adapters/cache"
	"github.com/zatekoja/Clinicreportanalytics/internal/adapters/database"
	"github.com/zatekoja/Clinicreportanalytics/internal/adapters/events"
	"github.com/zatekoja/Clinicreportanalytics/internal/api/handlers"
	"github.com/zatekoja/Clinicreportanalytics/internal/api/middleware"
	"github.com/zatekoja/Clinicreportanalytics/internal/api/routes"
	"github.com/zatekoja/Clinicreportanalytics/internal/application/services"
	"github.com/zatekoja/Clinicreportanalytics/internal/classify"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/providers"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/clients/redis"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/observability"
	"github.com/zatekoja/Clinicreportanalytics/internal/match"
	"github.com/zatekoja/Clinicreportanalytics/internal/reports"
	"github.com/zatekoja/Clinicreportanalytics/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client; the application works without caching
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("event bus initialized")
	} else {
		log.Info().Msg("event bus disabled (Redis not available)")
	}

	// Initialize adapters
	recordAdapter := database.NewAppointmentRecordAdapter(pgClient)
	syncHistoryAdapter := database.NewSyncHistoryAdapter(pgClient)

	basePartnerAdapter := database.NewPartnerAdapter(pgClient)
	var partnerAdapter repositories.PartnerRepository
	if cacheProvider != nil {
		partnerAdapter = database.NewCachedPartnerAdapter(basePartnerAdapter, cacheProvider)
		log.Info().Msg("partner adapter wrapped with caching layer")
	} else {
		partnerAdapter = basePartnerAdapter
	}

	// Parsing and matching components
	layout := reports.DefaultReportLayout()
	layout.LocationCodes = cfg.Reports.LocationCodes
	layout.LocationNames = cfg.Reports.LocationNames
	layout.AvailabilityMarkers = cfg.Reports.AvailabilityMarkers
	layout.TotalsMarker = cfg.Reports.TotalsMarker
	layout.PivotYear = cfg.Reports.ShortDateYear
	layout.SourceKind = cfg.Ingest.SourceKind
	weeklyParser := reports.NewWeeklyParser(layout)

	referralCfg := reports.DefaultReferralConfig()
	referralCfg.BrandMarker = cfg.Reports.BrandMarker
	referralCfg.BrandLocation = cfg.Reports.BrandLocationToken
	referralParser := reports.NewReferralParser(referralCfg)

	matchOpts := match.DefaultOptions()
	matchOpts.Threshold = cfg.Match.Threshold
	resolver := match.NewResolver(matchOpts)

	classifier := classify.NewClassifier(nil)

	// Initialize services
	ingestionService := services.NewIngestionService(
		recordAdapter,
		syncHistoryAdapter,
		cfg.Ingest.ChunkSize,
		cfg.Ingest.SourceKind,
	)
	referralService := services.NewReferralImportService(
		partnerAdapter,
		syncHistoryAdapter,
		referralParser,
		resolver,
	)
	if eventBus != nil {
		ingestionService.SetEventBus(eventBus)
		referralService.SetEventBus(eventBus)
	}

	aggregationCfg := services.DefaultAggregationConfig()
	aggregationCfg.RevenueLocations = cfg.Reports.RevenueLocations
	aggregationCfg.GarbageLabels = cfg.Reports.GarbageLabels
	aggregationCfg.ClosedWeekday = cfg.Reports.ClosedWeekday
	aggregationCfg.TypedSourceKind = cfg.Ingest.SourceKind
	aggregationService := services.NewAggregationService(recordAdapter, aggregationCfg)

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		}
	}

	// Initialize handlers
	reportHandler := handlers.NewReportHandler(weeklyParser, classifier, ingestionService, syncHistoryAdapter)
	referralHandler := handlers.NewReferralHandler(referralService)
	analyticsHandler := handlers.NewAnalyticsHandler(aggregationService)
	taxonomyHandler := handlers.NewTaxonomyHandler(classifier)
	partnerHandler := handlers.NewPartnerHandler(partnerAdapter)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, int(cfg.Ingest.SummaryCacheTTL.Seconds()))
		log.Info().Msg("cache middleware initialized")
	}

	// Set up router
	router := routes.NewRouter(
		reportHandler,
		referralHandler,
		analyticsHandler,
		taxonomyHandler,
		partnerHandler,
		cacheMiddleware,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Info().Msg("server stopped")
}
