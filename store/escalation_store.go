package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"pricing-system/internal/status"
	"pricing-system/models"
)

// EscalationStore persists escalation rows. It is written by two producers
// (the pricing engine and the support-chat tool) and read by the realtime
// feed; all producer writes are inserts.
type EscalationStore struct {
	app core.App
}

func NewEscalationStore(app core.App) *EscalationStore {
	return &EscalationStore{app: app}
}

// InsertRecommendation stores a pricing recommendation. No user fields are
// set; the priority tag distinguishes it from support escalations.
func (s *EscalationStore) InsertRecommendation(ctx context.Context, eventID, ticketID, summary string) (*models.Escalation, error) {
	return s.insert(ctx, map[string]any{
		"event_id":      eventID,
		"ticket_id":     ticketID,
		"issue_summary": summary,
		"priority":      string(models.PriorityRecommendation),
	})
}

// InsertSupport stores a user-submitted support escalation.
func (s *EscalationStore) InsertSupport(ctx context.Context, eventID, userName, userContact, issueSummary string, priority models.Priority, refCode string) (*models.Escalation, error) {
	return s.insert(ctx, map[string]any{
		"event_id":      eventID,
		"issue_summary": issueSummary,
		"priority":      string(priority),
		"user_name":     userName,
		"user_contact":  userContact,
		"ref_code":      refCode,
	})
}

// insert honors the caller's deadline before touching storage. The record
// Save API itself carries no context, so a deadline that expires mid-save
// cannot interrupt the write, only prevent it from starting.
func (s *EscalationStore) insert(ctx context.Context, fields map[string]any) (*models.Escalation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrEscalationWrite, err)
	}

	collection, err := s.app.FindCollectionByNameOrId("escalations")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrEscalationWrite, err)
	}

	record := core.NewRecord(collection)
	for k, v := range fields {
		record.Set(k, v)
	}

	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrEscalationWrite, err)
	}

	esc := EscalationFromRecord(record)
	return &esc, nil
}

// ListByOwner returns every escalation attached to an event owned by the
// given organizer, newest first.
func (s *EscalationStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Escalation, error) {
	escalations := []models.Escalation{}
	err := s.app.DB().
		NewQuery(`SELECT e.id, e.event_id, e.ticket_id, e.issue_summary, e.priority,
				e.user_name, e.user_contact, e.ref_code, e.created
			FROM escalations e
			JOIN events ev ON ev.id = e.event_id
			WHERE ev.user_id = {:owner}
			ORDER BY e.created DESC`).
		Bind(dbx.Params{"owner": ownerID}).
		WithContext(ctx).
		All(&escalations)
	if err != nil {
		return nil, fmt.Errorf("%w: list escalations: %v", status.ErrDataAccess, err)
	}
	return escalations, nil
}

// Delete removes one escalation row. Organizer initiated, irreversible.
func (s *EscalationStore) Delete(ctx context.Context, id string) error {
	record, err := s.app.FindRecordById("escalations", id)
	if err != nil {
		return fmt.Errorf("%w: find %s: %v", status.ErrEscalationDelete, id, err)
	}
	if err := s.app.Delete(record); err != nil {
		return fmt.Errorf("%w: delete %s: %v", status.ErrEscalationDelete, id, err)
	}
	return nil
}

// OwnerOf resolves the organizer owning the event an escalation points at.
// The realtime channel is scoped per organizer, not per event.
func (s *EscalationStore) OwnerOf(ctx context.Context, eventID string) (string, error) {
	event, err := s.app.FindRecordById("events", eventID)
	if err != nil {
		return "", fmt.Errorf("%w: find event %s: %v", status.ErrDataAccess, eventID, err)
	}
	return event.GetString("user_id"), nil
}

// EscalationFromRecord maps a PocketBase record to the typed row shape.
func EscalationFromRecord(record *core.Record) models.Escalation {
	return models.Escalation{
		ID:           record.Id,
		EventID:      record.GetString("event_id"),
		TicketID:     record.GetString("ticket_id"),
		IssueSummary: record.GetString("issue_summary"),
		Priority:     models.Priority(record.GetString("priority")),
		UserName:     record.GetString("user_name"),
		UserContact:  record.GetString("user_contact"),
		RefCode:      record.GetString("ref_code"),
		Created:      record.GetString("created"),
	}
}
