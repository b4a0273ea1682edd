package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	apperrors "github.com/zatekoja/search-suggestions/pkg/errors"
)

const searchEventsTable = "search_events"

// SearchAnalyticsAdapter implements the search event log
type SearchAnalyticsAdapter struct {
	db *goqu.Database
}

// NewSearchAnalyticsAdapter creates a new search analytics adapter
func NewSearchAnalyticsAdapter(client Client) repositories.SearchAnalyticsRepository {
	return &SearchAnalyticsAdapter{db: newGoqu(client)}
}

// LogEvent appends a search event
func (a *SearchAnalyticsAdapter) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.NormalizedTerm == "" {
		event.NormalizedTerm = entities.NormalizeTerm(event.Term)
	}

	record := goqu.Record{
		"id":              event.ID,
		"term":            event.Term,
		"normalized_term": event.NormalizedTerm,
		"results":         event.Results,
		"elapsed_time":    event.ElapsedTime,
		"engine":          event.Engine,
		"scope_id":        event.ScopeID,
		"created_at":      event.CreatedAt,
	}

	_, err := a.db.Insert(searchEventsTable).Prepared(true).Rows(record).Executor().ExecContext(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to log search event", err)
	}

	return nil
}

// CountQualifying counts events for the term and scope that produced results
func (a *SearchAnalyticsAdapter) CountQualifying(ctx context.Context, normalizedTerm, scopeID string) (int, error) {
	count, err := a.db.From(searchEventsTable).Prepared(true).
		Where(
			goqu.Ex{"normalized_term": normalizedTerm, "scope_id": scopeID},
			goqu.C("results").Gt(0),
		).
		CountContext(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count search events", err)
	}

	return int(count), nil
}

// GetZeroResultQueries returns the latest searches of a scope that found nothing
func (a *SearchAnalyticsAdapter) GetZeroResultQueries(ctx context.Context, scopeID string, limit int) ([]*entities.SearchEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []entities.SearchEvent
	err := a.db.From(searchEventsTable).Prepared(true).
		Where(goqu.Ex{"scope_id": scopeID, "results": 0}).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Asc()).
		Limit(uint(limit)).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get zero result queries", err)
	}

	events := make([]*entities.SearchEvent, len(rows))
	for i := range rows {
		events[i] = &rows[i]
	}
	return events, nil
}
