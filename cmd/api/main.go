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

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/search-suggestions/internal/adapters/access"
	"github.com/zatekoja/search-suggestions/internal/adapters/cache"
	"github.com/zatekoja/search-suggestions/internal/adapters/database"
	"github.com/zatekoja/search-suggestions/internal/adapters/events"
	"github.com/zatekoja/search-suggestions/internal/api/handlers"
	"github.com/zatekoja/search-suggestions/internal/api/routes"
	"github.com/zatekoja/search-suggestions/internal/application/services"
	"github.com/zatekoja/search-suggestions/internal/domain/providers"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients/redis"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
	queryservices "github.com/zatekoja/search-suggestions/internal/query/services"
	"github.com/zatekoja/search-suggestions/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	store, err := clients.OpenStore(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open database")
	}
	defer store.Close()

	// Redis is optional: without it suggestions are served uncached, the
	// rate limiter is per process and no live moderation stream is offered.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache and event bus")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			eventBus = events.NewRedisEventBus(redisClient)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
		}
	}

	// Adapters
	pageRepo := database.NewSearchPageAdapter(store)
	eventRepo := database.NewSearchAnalyticsAdapter(store)
	var suggestionRepo repositories.SuggestionRepository = database.NewSuggestionAdapter(store)
	if cacheProvider != nil {
		suggestionRepo = database.NewCachedSuggestionAdapter(suggestionRepo, cacheProvider, metrics)
	}

	// Services
	flags := services.NewFeatureFlags(cfg.Search)
	analyticsService := services.NewSearchAnalyticsService(eventRepo, suggestionRepo, flags)
	analyticsService.SetMetrics(metrics)
	moderationService := services.NewModerationService(suggestionRepo)
	moderationService.SetMetrics(metrics)
	if eventBus != nil {
		analyticsService.SetEventBus(eventBus)
		moderationService.SetEventBus(eventBus)
	}
	pageService := services.NewSearchPageService(pageRepo)
	settingsService := services.NewSettingsService(flags)

	accessChecker := access.NewPageAccessChecker(pageRepo)
	queryService := queryservices.NewSuggestionQueryService(suggestionRepo, accessChecker)
	queryService.SetDefaultLimit(cfg.Search.DefaultLimit)

	// Handlers
	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		sseHandler = handlers.NewSSEHandler(eventBus)
	}
	if cfg.Admin.Token == "" {
		log.Warn().Msg("ADMIN_API_TOKEN is not set, admin endpoints will reject every request")
	}

	router := routes.NewRouter(
		handlers.NewSearchEventHandler(analyticsService, accessChecker, cacheProvider, cfg.Search.RateLimitPerMinute),
		handlers.NewSuggestionHandler(queryService),
		handlers.NewModerationHandler(moderationService, analyticsService),
		handlers.NewPageHandler(pageService),
		handlers.NewSettingsHandler(settingsService),
		sseHandler,
		cfg.Admin.Token,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: the moderation stream is long lived.
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
