package domain

import (
	"context"
	"time"
)

// EventStatus is the host-set publication status of an event. No transitions
// are enforced; the owning host may set any value.
type EventStatus string

const (
	StatusDraft     EventStatus = "Draft"
	StatusPublished EventStatus = "Published"
	StatusFinished  EventStatus = "Finished"
	StatusCancelled EventStatus = "Cancelled"
)

// ValidEventStatus reports whether s is one of the known statuses.
func ValidEventStatus(s string) bool {
	switch EventStatus(s) {
	case StatusDraft, StatusPublished, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// Event represents a hostable, ticketed occasion.
// Title is stored lowercase; Slug is derived from it and unique across all events.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Venue       string      `json:"venue"`
	Capacity    int         `json:"capacity"`
	Schedule    time.Time   `json:"schedule"`
	Status      EventStatus `json:"status"`
	Images      []string    `json:"images"`
	CategoryID  string      `json:"category_id"`
	HostID      string      `json:"host_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// EventWithRelations bundles an event with its category, host, and tickets.
type EventWithRelations struct {
	Event    *Event    `json:"event"`
	Category *Category `json:"category"`
	Host     *User     `json:"host"`
	Tickets  []*Ticket `json:"tickets"`
}

// ListingFilter narrows public event listings. Keyword matches title,
// description, and venue case-insensitively; CategorySlug matches exactly.
type ListingFilter struct {
	Keyword      string
	CategorySlug string
}

// EventRepository defines the interface for event storage. Create and Update
// persist the event and its full ticket set inside one transaction, so a
// concurrent reader never observes an event without tickets.
type EventRepository interface {
	Create(ctx context.Context, event *Event, tickets []*Ticket) error
	Update(ctx context.Context, event *Event, tickets []*Ticket) error
	Delete(ctx context.Context, slug, hostID string) error
	GetBySlug(ctx context.Context, slug string) (*EventWithRelations, error)
	ListByHost(ctx context.Context, hostID string, params PaginationParams, sorts []SortSpec) ([]*Event, int, error)
	ListPublic(ctx context.Context, filter ListingFilter, sort SortSpec) ([]*EventWithRelations, error)
	ListUpcomingPublished(ctx context.Context, limit int) ([]*EventWithRelations, error)
}

// EventService orchestrates authorization, validation, image cleanup, and
// persistence for the event lifecycle.
type EventService interface {
	CreateEvent(ctx context.Context, hostID string, sub EventSubmission) (*Event, error)
	UpdateEvent(ctx context.Context, slug, hostID string, sub EventSubmission) (*Event, error)
	DeleteEvent(ctx context.Context, slug, hostID string) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*EventWithRelations, error)
	UpcomingPublished(ctx context.Context, limit int) ([]*EventWithRelations, error)
}

// ListingService translates UI-level query parameters into repository calls.
type ListingService interface {
	EventsByHost(ctx context.Context, hostID string, params PaginationParams, sorts []SortSpec) (*EventPage, error)
	BrowsePublic(ctx context.Context, filter ListingFilter, sortToken string) ([]*EventWithRelations, error)
}

// EventPage is one page of a host's events plus pagination totals.
type EventPage struct {
	Data      []*Event `json:"data"`
	Total     int      `json:"total"`
	PageCount int      `json:"page_count"`
}
