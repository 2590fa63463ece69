package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"pricing-system/config"
	"pricing-system/internal/status"
	"pricing-system/models"
	"pricing-system/monitoring"
	"pricing-system/pricing"
	"pricing-system/utils"
)

const jobLockKey = "lock:recommendation:run"

// SalesReader is the read-only view of events, tickets and completed sales.
// Implemented by store.SalesStore.
type SalesReader interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListTickets(ctx context.Context, eventID string) ([]models.Ticket, error)
	SumCompletedQuantity(ctx context.Context, eventID, ticketID string) (int, error)
}

// RecommendationWriter persists one pricing recommendation.
type RecommendationWriter interface {
	WriteRecommendation(ctx context.Context, eventID, ticketID, summary string) error
}

// RecommendationService runs the demand-estimation job: every event, every
// ticket, one bounded recommendation per ticket whose demand leaves the
// no-action band. Each ticket is an independent unit of work; failures are
// logged and the batch continues.
type RecommendationService struct {
	sales       SalesReader
	escalations RecommendationWriter
	redis       *redis.Client
	config      *config.Config
	monitor     *monitoring.Monitor

	now func() time.Time
}

func NewRecommendationService(sales SalesReader, escalations RecommendationWriter, redisClient *redis.Client, cfg *config.Config, monitor *monitoring.Monitor) *RecommendationService {
	return &RecommendationService{
		sales:       sales,
		escalations: escalations,
		redis:       redisClient,
		config:      cfg,
		monitor:     monitor,
		now:         time.Now,
	}
}

// Run executes one job invocation. It returns an error only when the events
// list itself cannot be read or another run holds the job lock; everything
// below that is best effort.
func (s *RecommendationService) Run(ctx context.Context) error {
	if s.redis != nil {
		acquired, err := utils.AcquireLock(ctx, s.redis, jobLockKey, s.config.JobLockTTL)
		if err != nil {
			log.Printf("Job lock unavailable, proceeding without it: %v", err)
		} else if !acquired {
			return status.ErrJobAlreadyRunning
		} else {
			defer utils.ReleaseLock(ctx, s.redis, jobLockKey)
		}
	}

	started := s.now()
	defer func() {
		s.monitor.ObserveJobDuration(s.now().Sub(started))
	}()

	events, err := s.sales.ListEvents(ctx)
	if err != nil {
		return err
	}

	for _, event := range events {
		s.processEvent(ctx, event)
	}

	return nil
}

// processEvent evaluates one event's tickets. Failures here never abort the
// batch; sibling events keep processing.
func (s *RecommendationService) processEvent(ctx context.Context, event models.Event) {
	eventDate, err := models.ParseEventDate(event.EventDate)
	if err != nil {
		log.Printf("Skipping event %s: %v", event.ID, err)
		s.monitor.TrackSkip("invalid_date")
		return
	}

	tickets, err := s.sales.ListTickets(ctx, event.ID)
	if err != nil {
		log.Printf("Skipping event %s: %v", event.ID, err)
		s.monitor.TrackSkip("data_access")
		return
	}

	for _, ticket := range tickets {
		s.processTicket(ctx, event, eventDate, ticket)
	}
}

// processTicket is one evaluate-and-write unit of work, bounded by the
// per-ticket timeout so one unresponsive query cannot stall the batch.
func (s *RecommendationService) processTicket(ctx context.Context, event models.Event, eventDate time.Time, ticket models.Ticket) {
	ctx, cancel := context.WithTimeout(ctx, s.config.TicketOpTimeout)
	defer cancel()

	s.monitor.TrackTicketEvaluated(event.ID)

	if ticket.Quantity <= 0 {
		s.monitor.TrackSkip("no_capacity")
		return
	}

	saleStart, err := models.ParseStoredTime(ticket.Created)
	if err != nil {
		log.Printf("Skipping ticket %s: bad sale start %q: %v", ticket.ID, ticket.Created, err)
		s.monitor.TrackSkip("invalid_date")
		return
	}

	sold, err := s.sales.SumCompletedQuantity(ctx, event.ID, ticket.ID)
	if err != nil {
		log.Printf("Skipping ticket %s: %v", ticket.ID, err)
		s.monitor.TrackSkip("data_access")
		return
	}

	result, err := pricing.EstimateDemand(ticket.Quantity, sold, saleStart, eventDate, s.now())
	if err != nil {
		// Expected steady state for past or not-yet-open events.
		if errors.Is(err, status.ErrWindowNotActive) {
			s.monitor.TrackSkip("window_not_active")
		}
		return
	}

	rec, ok := pricing.Recommend(ticket.Price, result.DemandFactor)
	if !ok {
		s.monitor.TrackSkip("no_action")
		return
	}

	if err := s.escalations.WriteRecommendation(ctx, event.ID, ticket.ID, rec.Summary); err != nil {
		// Lost for this run only. The demand condition persists, the next
		// scheduled invocation retries naturally.
		log.Printf("Error writing recommendation for ticket %s: %v", ticket.ID, err)
		return
	}

	s.monitor.TrackRecommendation(event.ID, string(rec.Direction))
}
