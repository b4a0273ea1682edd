package repositories

import (
	"context"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
)

// SearchPageRepository persists the search pages that scope suggestions.
type SearchPageRepository interface {
	Create(ctx context.Context, page *entities.SearchPage) error
	GetByID(ctx context.Context, id string) (*entities.SearchPage, error)
	List(ctx context.Context) ([]*entities.SearchPage, error)
}
