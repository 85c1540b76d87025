package services

import (
	"context"
	"fmt"
	"time"

	"eventmarket/internal/domain"
)

// Listing defaults per the dashboard contract.
const (
	defaultPage     = 1
	defaultPageSize = 10
)

// publicSortTokens maps the browse page's sort parameter to a whitelisted
// sort spec. Unknown tokens fall back to newest first.
var publicSortTokens = map[string]domain.SortSpec{
	"date-asc":  {Field: "schedule"},
	"date-desc": {Field: "schedule", Desc: true},
}

type listingService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewListingService translates UI-level query parameters (pagination, sort
// specs, keyword and category filters) into repository calls.
func NewListingService(eventRepo domain.EventRepository, timeout time.Duration) domain.ListingService {
	return &listingService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *listingService) EventsByHost(ctx context.Context, hostID string, params domain.PaginationParams, sorts []domain.SortSpec) (*domain.EventPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if hostID == "" {
		return nil, fmt.Errorf("host id is required")
	}
	if params.Page < 1 {
		params.Page = defaultPage
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}

	// Only whitelisted fields reach the repository; everything else is
	// dropped so unknown input never hits an ORDER BY clause.
	allowed := make([]domain.SortSpec, 0, len(sorts))
	for _, spec := range sorts {
		if domain.SortableEventField(spec.Field) {
			allowed = append(allowed, spec)
		}
	}
	if len(allowed) == 0 {
		allowed = []domain.SortSpec{{Field: "createdAt", Desc: true}}
	}

	events, total, err := s.eventRepo.ListByHost(ctx, hostID, params, allowed)
	if err != nil {
		return nil, fmt.Errorf("list events by host: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	pageCount := (total + params.PageSize - 1) / params.PageSize
	return &domain.EventPage{Data: events, Total: total, PageCount: pageCount}, nil
}

func (s *listingService) BrowsePublic(ctx context.Context, filter domain.ListingFilter, sortToken string) ([]*domain.EventWithRelations, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sort, ok := publicSortTokens[sortToken]
	if !ok {
		sort = domain.SortSpec{Field: "createdAt", Desc: true}
	}
	events, err := s.eventRepo.ListPublic(ctx, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	if events == nil {
		events = []*domain.EventWithRelations{}
	}
	return events, nil
}
