package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"eventmarket/internal/domain"
)

// imageDeleteWorkers bounds the fan-out of image-store deletions during
// event removal.
const imageDeleteWorkers = 4

const defaultUpcomingLimit = 6

type eventService struct {
	eventRepo      domain.EventRepository
	categoryRepo   domain.CategoryRepository
	imageStore     domain.ImageStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService wires the event lifecycle: validation, ownership checks,
// image cleanup, and transactional persistence.
func NewEventService(eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	imageStore domain.ImageStore,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		categoryRepo:   categoryRepo,
		imageStore:     imageStore,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// buildEvent turns a validated draft into the persisted shape. Titles are
// stored lowercase; the slug is derived from the original title.
func (s *eventService) buildEvent(ctx context.Context, draft *domain.EventDraft) (*domain.Event, []*domain.Ticket, error) {
	slug := domain.Slugify(draft.Title)
	if slug == "" {
		return nil, nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "title", Message: "Title must contain at least one letter or number."},
		}}
	}
	if _, err := s.categoryRepo.GetByID(ctx, draft.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, &domain.ValidationError{Fields: []domain.FieldError{
				{Field: "category_id", Message: "Please select a category."},
			}}
		}
		return nil, nil, fmt.Errorf("get category: %w", err)
	}
	event := &domain.Event{
		Title:       strings.ToLower(draft.Title),
		Slug:        slug,
		Description: draft.Description,
		Venue:       draft.Venue,
		Capacity:    draft.Capacity,
		Schedule:    draft.Schedule,
		Status:      draft.Status,
		Images:      draft.Images,
		CategoryID:  draft.CategoryID,
	}
	tickets := make([]*domain.Ticket, len(draft.Tickets))
	for i, t := range draft.Tickets {
		tickets[i] = &domain.Ticket{Type: t.Type, Price: t.Price}
	}
	return event, tickets, nil
}

func (s *eventService) CreateEvent(ctx context.Context, hostID string, sub domain.EventSubmission) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if hostID == "" {
		return nil, fmt.Errorf("event host is required")
	}
	draft, fieldErrs := sub.Normalize()
	if len(fieldErrs) > 0 {
		return nil, &domain.ValidationError{Fields: fieldErrs}
	}
	event, tickets, err := s.buildEvent(ctx, draft)
	if err != nil {
		return nil, err
	}
	event.HostID = hostID
	event.CreatedAt = time.Now()

	if err := s.eventRepo.Create(ctx, event, tickets); err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, slug, hostID string, sub domain.EventSubmission) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	draft, fieldErrs := sub.Normalize()
	if len(fieldErrs) > 0 {
		return nil, &domain.ValidationError{Fields: fieldErrs}
	}

	existing, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if existing.Event.HostID != hostID {
		return nil, domain.ErrForbidden
	}

	event, tickets, err := s.buildEvent(ctx, draft)
	if err != nil {
		return nil, err
	}
	// All scalar fields are overwritten wholesale; the slug keeps its original
	// value so published URLs stay stable.
	event.ID = existing.Event.ID
	event.Slug = existing.Event.Slug
	event.HostID = existing.Event.HostID
	event.CreatedAt = existing.Event.CreatedAt

	if err := s.eventRepo.Update(ctx, event, tickets); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, slug, hostID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// Deletion is scoped to (slug, host): a non-owner learns nothing beyond
	// "not found".
	if existing.Event.HostID != hostID {
		return nil, domain.ErrNotFound
	}

	s.deleteImages(ctx, existing.Event.Images)

	if err := s.eventRepo.Delete(ctx, slug, hostID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return existing.Event, nil
}

// deleteImages removes stored images from the external store with bounded
// concurrency. Failures are logged and never abort the event deletion.
func (s *eventService) deleteImages(ctx context.Context, urls []string) {
	sem := make(chan struct{}, imageDeleteWorkers)
	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(url string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := s.imageStore.Delete(ctx, url); err != nil {
				s.logger.Warn("image cleanup failed", "url", url, "err", err)
			}
		}(url)
	}
	wg.Wait()
}

func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.EventWithRelations, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpcomingPublished(ctx context.Context, limit int) ([]*domain.EventWithRelations, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	events, err := s.eventRepo.ListUpcomingPublished(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	if events == nil {
		events = []*domain.EventWithRelations{}
	}
	return events, nil
}
