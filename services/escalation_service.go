package services

import (
	"context"
	"fmt"
	"log"

	pubnub "github.com/pubnub/go"

	"pricing-system/internal/status"
	"pricing-system/models"
	"pricing-system/monitoring"
	"pricing-system/utils"
)

// EscalationSink is the owner-resolution and persistence surface the
// service needs. Implemented by store.EscalationStore.
type EscalationSink interface {
	InsertRecommendation(ctx context.Context, eventID, ticketID, summary string) (*models.Escalation, error)
	InsertSupport(ctx context.Context, eventID, userName, userContact, issueSummary string, priority models.Priority, refCode string) (*models.Escalation, error)
	OwnerOf(ctx context.Context, eventID string) (string, error)
}

// EscalationService writes escalation rows and fans each change out on the
// owning organizer's realtime channel. The publish is best effort: a failed
// publish never fails the write, the feed's refetch covers the gap.
type EscalationService struct {
	store   EscalationSink
	pubnub  *pubnub.PubNub
	breaker *utils.CircuitBreaker
	monitor *monitoring.Monitor
}

func NewEscalationService(sink EscalationSink, pn *pubnub.PubNub, monitor *monitoring.Monitor) *EscalationService {
	return &EscalationService{
		store:   sink,
		pubnub:  pn,
		breaker: utils.NewCircuitBreaker("escalation-publish"),
		monitor: monitor,
	}
}

// WriteRecommendation persists one pricing recommendation. Fire-and-forget
// per ticket; the caller logs and moves on when this fails.
func (s *EscalationService) WriteRecommendation(ctx context.Context, eventID, ticketID, summary string) error {
	esc, err := s.store.InsertRecommendation(ctx, eventID, ticketID, summary)
	if err != nil {
		s.monitor.TrackEscalationWrite(string(models.PriorityRecommendation), "error")
		return err
	}

	s.monitor.TrackEscalationWrite(string(models.PriorityRecommendation), "success")
	s.PublishChange(ctx, models.ChangeInsert, *esc)
	return nil
}

type SupportEscalationRequest struct {
	EventID      string          `json:"event_id"`
	UserName     string          `json:"user_name"`
	UserContact  string          `json:"user_contact"`
	IssueSummary string          `json:"issue_summary"`
	Priority     models.Priority `json:"priority"`
}

// WriteSupportEscalation persists a user-submitted escalation coming out of
// the chat-assistant tool flow. Same table as recommendations, disjoint
// caller and priority range.
func (s *EscalationService) WriteSupportEscalation(ctx context.Context, req SupportEscalationRequest) (*models.Escalation, error) {
	if !models.ValidSupportPriority(req.Priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", status.ErrEscalationWrite, req.Priority)
	}

	refCode, err := utils.GenerateCode(4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrEscalationWrite, err)
	}

	esc, err := s.store.InsertSupport(ctx, req.EventID, req.UserName, req.UserContact, req.IssueSummary, req.Priority, refCode)
	if err != nil {
		s.monitor.TrackEscalationWrite(string(req.Priority), "error")
		return nil, err
	}

	s.monitor.TrackEscalationWrite(string(req.Priority), "success")
	s.PublishChange(ctx, models.ChangeInsert, *esc)
	return esc, nil
}

// PublishChange pushes a row-level change message on the owner's channel.
// Also invoked from the record hooks when escalations are touched through
// the PocketBase API directly.
func (s *EscalationService) PublishChange(ctx context.Context, action models.ChangeAction, esc models.Escalation) {
	if s.pubnub == nil {
		return
	}

	owner, err := s.store.OwnerOf(ctx, esc.EventID)
	if err != nil {
		log.Printf("Cannot resolve owner for escalation %s: %v", esc.ID, err)
		return
	}

	change := models.EscalationChange{Action: action, Escalation: esc}
	channel := OwnerChannel(owner)

	err = s.breaker.Execute(ctx, func() error {
		_, _, err := s.pubnub.Publish().
			Channel(channel).
			Message(change).
			Execute()
		return err
	})
	if err != nil {
		log.Printf("Error publishing escalation change on %s: %v", channel, err)
	}
}

// OwnerChannel names the realtime channel carrying one organizer's
// escalation changes.
func OwnerChannel(ownerID string) string {
	return fmt.Sprintf("escalations-%s", ownerID)
}
