package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timeRe matches 24-hour HH:MM (hour 00-23, minute 00-59). A single-digit
// hour is accepted, matching what the submission forms send.
var timeRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Capacity bounds, exclusive on both ends.
const maxCapacity = 10_000

// FieldError is a single field-level validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TicketSubmission is one raw ticket tier as submitted. Price arrives as a
// string and is parsed during validation.
type TicketSubmission struct {
	Type  string `json:"type"`
	Price string `json:"price"`
}

// EventSubmission is a raw event payload as submitted by a form. Numeric and
// temporal fields arrive as strings; Validate checks them and Normalize
// produces the typed draft.
type EventSubmission struct {
	Title       string             `json:"title"`
	Date        string             `json:"date"` // calendar date, YYYY-MM-DD
	Time        string             `json:"time"` // 24-hour HH:MM
	Description string             `json:"description"`
	Venue       string             `json:"venue"`
	CategoryID  string             `json:"category_id"`
	Status      string             `json:"status"`
	Tickets     []TicketSubmission `json:"tickets"`
	Images      []string           `json:"images"`
	Capacity    string             `json:"capacity"`
}

// TicketDraft is a validated, typed ticket tier ready for persistence.
type TicketDraft struct {
	Type  string
	Price decimal.Decimal
}

// EventDraft is a validated, typed event payload. Schedule is the submitted
// date with the submitted hour and minute set on it.
type EventDraft struct {
	Title       string
	Schedule    time.Time
	Description string
	Venue       string
	CategoryID  string
	Status      EventStatus
	Capacity    int
	Images      []string
	Tickets     []TicketDraft
}

// Validate checks the submission against the field rules and returns every
// violation found. An empty result means the submission is valid. There is no
// cross-field validation: schedules in the past and duplicate tier names pass.
func (s EventSubmission) Validate() []FieldError {
	var errs []FieldError
	if s.Title == "" {
		errs = append(errs, FieldError{"title", "Title is required."})
	} else if len(s.Title) < 5 {
		errs = append(errs, FieldError{"title", "Title must be at least 5 characters."})
	}
	if s.Date == "" {
		errs = append(errs, FieldError{"date", "Date is required."})
	} else if _, err := time.Parse("2006-01-02", s.Date); err != nil {
		errs = append(errs, FieldError{"date", "Invalid date."})
	}
	if !timeRe.MatchString(s.Time) {
		errs = append(errs, FieldError{"time", "Please enter a valid time (HH:MM)."})
	}
	if s.Description == "" {
		errs = append(errs, FieldError{"description", "Description is required."})
	} else if len(s.Description) < 10 {
		errs = append(errs, FieldError{"description", "Description must be at least 10 characters."})
	}
	if s.Venue == "" {
		errs = append(errs, FieldError{"venue", "Venue is required."})
	} else if len(s.Venue) < 5 {
		errs = append(errs, FieldError{"venue", "Venue must be at least 5 characters."})
	}
	if s.CategoryID == "" {
		errs = append(errs, FieldError{"category_id", "Please select a category."})
	}
	if !ValidEventStatus(s.Status) {
		errs = append(errs, FieldError{"status", "Status must be one of Draft, Published, Finished, Cancelled."})
	}
	if len(s.Tickets) == 0 {
		errs = append(errs, FieldError{"tickets", "You must add at least one ticket type."})
	}
	for _, t := range s.Tickets {
		if t.Type == "" {
			errs = append(errs, FieldError{"tickets", "Please select a ticket type."})
		}
		price, err := decimal.NewFromString(t.Price)
		if err != nil || !price.GreaterThan(MinTicketPrice) || !price.LessThan(MaxTicketPrice) {
			errs = append(errs, FieldError{"tickets", "Price must be a positive number and less than 1,000,000."})
		}
	}
	if len(s.Images) == 0 {
		errs = append(errs, FieldError{"images", "Upload at least 1 image."})
	}
	capacity, err := strconv.Atoi(s.Capacity)
	if err != nil || capacity <= 0 || capacity >= maxCapacity {
		errs = append(errs, FieldError{"capacity", "Capacity must be a positive number and less than 10,000."})
	}
	return errs
}

// Normalize validates the submission and, if valid, returns the typed draft.
// The schedule is built by setting the submitted hour and minute on the
// submitted date.
func (s EventSubmission) Normalize() (*EventDraft, []FieldError) {
	if errs := s.Validate(); len(errs) > 0 {
		return nil, errs
	}
	date, _ := time.Parse("2006-01-02", s.Date)
	clock := strings.SplitN(s.Time, ":", 2)
	hour, _ := strconv.Atoi(clock[0])
	minute, _ := strconv.Atoi(clock[1])
	schedule := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)

	capacity, _ := strconv.Atoi(s.Capacity)
	tickets := make([]TicketDraft, len(s.Tickets))
	for i, t := range s.Tickets {
		price, _ := decimal.NewFromString(t.Price)
		tickets[i] = TicketDraft{Type: t.Type, Price: price}
	}
	return &EventDraft{
		Title:       s.Title,
		Schedule:    schedule,
		Description: s.Description,
		Venue:       s.Venue,
		CategoryID:  s.CategoryID,
		Status:      EventStatus(s.Status),
		Capacity:    capacity,
		Images:      s.Images,
		Tickets:     tickets,
	}, nil
}
