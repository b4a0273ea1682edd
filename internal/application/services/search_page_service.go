package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	apperrors "github.com/zatekoja/search-suggestions/pkg/errors"
)

// SearchPageService manages the pages that scope suggestions.
type SearchPageService struct {
	repo repositories.SearchPageRepository
}

// NewSearchPageService creates a new search page service.
func NewSearchPageService(repo repositories.SearchPageRepository) *SearchPageService {
	return &SearchPageService{repo: repo}
}

// CreatePage stores a new page. An empty view type defaults to Anyone.
func (s *SearchPageService) CreatePage(ctx context.Context, title string, canViewType entities.CanViewType) (*entities.SearchPage, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	if canViewType == "" {
		canViewType = entities.CanViewAnyone
	}
	if !canViewType.Valid() {
		return nil, apperrors.NewValidationError("invalid can_view_type: " + string(canViewType))
	}

	page := &entities.SearchPage{
		ID:          uuid.New().String(),
		Title:       title,
		CanViewType: canViewType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// GetPage retrieves a page.
func (s *SearchPageService) GetPage(ctx context.Context, id string) (*entities.SearchPage, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPages retrieves every page.
func (s *SearchPageService) ListPages(ctx context.Context) ([]*entities.SearchPage, error) {
	return s.repo.List(ctx)
}
