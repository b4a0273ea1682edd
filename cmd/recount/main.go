// Command recount rebuilds suggestion frequencies from the search event log.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/search-suggestions/internal/adapters/database"
	"github.com/zatekoja/search-suggestions/internal/application/services"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
	"github.com/zatekoja/search-suggestions/pkg/config"
)

func main() {
	scope := flag.String("scope", "", "Page ID to recount (default: every page)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("search-suggestions-recount", cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *scope); err != nil {
		log.Fatal().Err(err).Msg("Recount failed")
	}
}

func run(ctx context.Context, cfg *config.Config, scope string) error {
	store, err := clients.OpenStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	pages := database.NewSearchPageAdapter(store)
	analytics := services.NewSearchAnalyticsService(
		database.NewSearchAnalyticsAdapter(store),
		database.NewSuggestionAdapter(store),
		services.NewFeatureFlags(cfg.Search),
	)

	scopes := []string{scope}
	if scope == "" {
		all, err := pages.List(ctx)
		if err != nil {
			return err
		}
		scopes = scopes[:0]
		for _, page := range all {
			scopes = append(scopes, page.ID)
		}
	}

	total := 0
	for _, scopeID := range scopes {
		if err := ctx.Err(); err != nil {
			return err
		}
		changed, err := analytics.RecountScope(ctx, scopeID)
		if err != nil {
			return fmt.Errorf("recount scope %s: %w", scopeID, err)
		}
		total += changed
		log.Info().Str("scope_id", scopeID).Int("changed", changed).Msg("Recounted scope")
	}

	log.Info().Int("scopes", len(scopes)).Int("changed", total).Msg("Recount complete")
	return nil
}
