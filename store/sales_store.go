package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"pricing-system/internal/status"
	"pricing-system/models"
)

// SalesStore is the read-only accessor over the events, tickets and
// transactions collections. It never mutates anything.
type SalesStore struct {
	app core.App
}

func NewSalesStore(app core.App) *SalesStore {
	return &SalesStore{app: app}
}

func (s *SalesStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	err := s.app.DB().
		Select("id", "title", "event_date", "user_id", "created").
		From("events").
		OrderBy("created DESC").
		WithContext(ctx).
		All(&events)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", status.ErrDataAccess, err)
	}
	return events, nil
}

func (s *SalesStore) ListTickets(ctx context.Context, eventID string) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	err := s.app.DB().
		Select("id", "event_id", "ticket_type", "price", "quantity", "created").
		From("tickets").
		Where(dbx.HashExp{"event_id": eventID}).
		OrderBy("created ASC").
		WithContext(ctx).
		All(&tickets)
	if err != nil {
		return nil, fmt.Errorf("%w: list tickets for event %s: %v", status.ErrDataAccess, eventID, err)
	}
	return tickets, nil
}

// SumCompletedQuantity totals the units sold for one ticket. Only completed
// transactions count; no matching rows means zero, not an error.
func (s *SalesStore) SumCompletedQuantity(ctx context.Context, eventID, ticketID string) (int, error) {
	var total int
	err := s.app.DB().
		NewQuery(`SELECT COALESCE(SUM(quantity), 0) FROM transactions
			WHERE event_id = {:event} AND ticket_id = {:ticket} AND status = 'completed'`).
		Bind(dbx.Params{"event": eventID, "ticket": ticketID}).
		WithContext(ctx).
		Row(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: sum sales for ticket %s: %v", status.ErrDataAccess, ticketID, err)
	}
	return total, nil
}
