package models

import (
	"fmt"
	"time"

	"pricing-system/internal/status"
)

type Event struct {
	ID        string `db:"id" json:"id"`
	Title     string `db:"title" json:"title"`
	EventDate string `db:"event_date" json:"event_date"` // DD-MM-YYYY
	UserID    string `db:"user_id" json:"user_id"`
	Created   string `db:"created" json:"created"`
}

type Ticket struct {
	ID         string  `db:"id" json:"id"`
	EventID    string  `db:"event_id" json:"event_id"`
	TicketType string  `db:"ticket_type" json:"ticket_type"`
	Price      float64 `db:"price" json:"price"`
	Quantity   int     `db:"quantity" json:"quantity"`
	Created    string  `db:"created" json:"created"` // sale-window start
}

type Transaction struct {
	ID       string `db:"id" json:"id"`
	EventID  string `db:"event_id" json:"event_id"`
	TicketID string `db:"ticket_id" json:"ticket_id"`
	Quantity int    `db:"quantity" json:"quantity"`
	Status   string `db:"status" json:"status"` // pending, completed, failed
}

const eventDateLayout = "02-01-2006"

// ParseEventDate parses the DD-MM-YYYY event date used by the organizer app.
func ParseEventDate(s string) (time.Time, error) {
	t, err := time.Parse(eventDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", status.ErrInvalidEventDate, s, err)
	}
	return t, nil
}

// ParseStoredTime parses the timestamp format PocketBase writes for
// created/updated columns.
func ParseStoredTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05.999Z", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
