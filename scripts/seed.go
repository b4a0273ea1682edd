package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/search-suggestions/internal/adapters/database"
	"github.com/zatekoja/search-suggestions/internal/application/services"
	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
	"github.com/zatekoja/search-suggestions/pkg/config"
)

var sampleSearches = []struct {
	term    string
	results int
}{
	{"pricing", 12},
	{"pricing", 9},
	{"pricing plans", 4},
	{"privacy policy", 1},
	{"refund", 3},
	{"refund", 2},
	{"refund window", 0},
	{"invoice", 7},
	{"api keys", 5},
	{"ap", 2},
	{"unicorns", 0},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("search-suggestions-seed", cfg.Environment, cfg.LogLevel)

	ctx := context.Background()
	store, err := clients.OpenStore(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer store.Close()

	pages := services.NewSearchPageService(database.NewSearchPageAdapter(store))
	page, err := pages.CreatePage(ctx, "Help Center", entities.CanViewAnyone)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create page")
	}

	// Seeded suggestions are approved so they show up immediately.
	flags := services.NewFeatureFlags(cfg.Search)
	flags.SetAnalyticsEnabled(true)
	flags.SetAutomaticApproval(true)

	analytics := services.NewSearchAnalyticsService(
		database.NewSearchAnalyticsAdapter(store),
		database.NewSuggestionAdapter(store),
		flags,
	)

	for _, search := range sampleSearches {
		_, err := analytics.RecordSearch(ctx, services.SearchRecord{
			Term:        search.term,
			Results:     search.results,
			ElapsedTime: 0.05,
			Engine:      "seed",
			ScopeID:     page.ID,
		})
		if err != nil {
			log.Fatal().Err(err).Str("term", search.term).Msg("Failed to record search")
		}
	}

	log.Info().
		Str("page_id", page.ID).
		Int("searches", len(sampleSearches)).
		Msg("Seed data created")
}
