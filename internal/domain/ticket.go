package domain

import "github.com/shopspring/decimal"

// Ticket is a named price tier belonging to one event. Tickets are cascade
// deleted with their event, and an update replaces the full set.
// swagger:model Ticket
type Ticket struct {
	ID      string          `json:"id"`
	EventID string          `json:"event_id"`
	Type    string          `json:"type"`
	Price   decimal.Decimal `json:"price"`
}

// Ticket price bounds, exclusive on both ends.
var (
	MinTicketPrice = decimal.Zero
	MaxTicketPrice = decimal.NewFromInt(1_000_000)
)
