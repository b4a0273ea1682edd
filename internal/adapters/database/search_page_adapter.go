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

const searchPagesTable = "search_pages"

// SearchPageAdapter implements SearchPageRepository
type SearchPageAdapter struct {
	db *goqu.Database
}

// NewSearchPageAdapter creates a new search page adapter
func NewSearchPageAdapter(client Client) repositories.SearchPageRepository {
	return &SearchPageAdapter{db: newGoqu(client)}
}

// Create inserts a search page
func (a *SearchPageAdapter) Create(ctx context.Context, page *entities.SearchPage) error {
	if page.ID == "" {
		page.ID = uuid.New().String()
	}
	if page.CreatedAt.IsZero() {
		page.CreatedAt = time.Now().UTC()
	}
	if page.CanViewType == "" {
		page.CanViewType = entities.CanViewAnyone
	}

	record := goqu.Record{
		"id":            page.ID,
		"title":         page.Title,
		"can_view_type": string(page.CanViewType),
		"created_at":    page.CreatedAt,
	}

	_, err := a.db.Insert(searchPagesTable).Prepared(true).Rows(record).Executor().ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("search page already exists", err)
		}
		return apperrors.NewInternalError("failed to create search page", err)
	}

	return nil
}

// GetByID retrieves a search page by ID
func (a *SearchPageAdapter) GetByID(ctx context.Context, id string) (*entities.SearchPage, error) {
	var page entities.SearchPage
	found, err := a.db.From(searchPagesTable).Prepared(true).
		Where(goqu.Ex{"id": id}).
		ScanStructContext(ctx, &page)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get search page", err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("search page not found")
	}
	return &page, nil
}

// List retrieves every search page ordered by title
func (a *SearchPageAdapter) List(ctx context.Context) ([]*entities.SearchPage, error) {
	var rows []entities.SearchPage
	err := a.db.From(searchPagesTable).Prepared(true).
		Order(goqu.I("title").Asc(), goqu.I("id").Asc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list search pages", err)
	}

	pages := make([]*entities.SearchPage, len(rows))
	for i := range rows {
		pages[i] = &rows[i]
	}
	return pages, nil
}
