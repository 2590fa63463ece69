package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	pubnub "github.com/pubnub/go/v7"

	"pricing-system/config"
	"pricing-system/internal/status"
	"pricing-system/models"
	"pricing-system/monitoring"
)

type FeedState int

const (
	FeedIdle FeedState = iota
	FeedSubscribing
	FeedActive
	FeedError
)

func (s FeedState) String() string {
	switch s {
	case FeedIdle:
		return "idle"
	case FeedSubscribing:
		return "subscribing"
	case FeedActive:
		return "active"
	case FeedError:
		return "error"
	}
	return "unknown"
}

// EscalationSource is the store surface the feed consumes: the owner-scoped
// listing for full fetches and the single-row delete.
type EscalationSource interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Escalation, error)
	Delete(ctx context.Context, id string) error
}

// EscalationFeedService maintains one organizer's in-memory notification
// list off the realtime escalation channel. Push delivery is not
// at-least-once across disconnects, so every (re)connect triggers a full
// refetch; that refetch is the consistency backstop.
type EscalationFeedService struct {
	source  EscalationSource
	config  *config.Config
	monitor *monitoring.Monitor

	mu      sync.Mutex
	state   FeedState
	ownerID string
	items   []models.Notification

	pn       *pubnub.PubNub
	listener *pubnub.Listener
	cancel   context.CancelFunc
}

func NewEscalationFeedService(source EscalationSource, cfg *config.Config, monitor *monitoring.Monitor) *EscalationFeedService {
	return &EscalationFeedService{
		source:  source,
		config:  cfg,
		monitor: monitor,
		state:   FeedIdle,
	}
}

// Start subscribes to the organizer's escalation channel and performs the
// initial full fetch. Safe to call once per session; subsequent calls while
// running are no-ops.
func (s *EscalationFeedService) Start(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	if s.state != FeedIdle {
		s.mu.Unlock()
		return nil
	}
	s.ownerID = ownerID
	s.state = FeedSubscribing
	s.mu.Unlock()

	if err := s.Refetch(ctx); err != nil {
		log.Printf("Initial escalation fetch for %s failed: %v", ownerID, err)
	}

	if s.config.PubNubSubscribeKey == "" {
		// No realtime transport configured; the feed still works through
		// explicit refreshes.
		s.setState(FeedActive)
		return nil
	}

	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(s.config.PubNubUUID))
	pnCfg.SubscribeKey = s.config.PubNubSubscribeKey
	pnCfg.SecretKey = s.config.PubNubSecretKey

	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.pn = pubnub.NewPubNub(pnCfg)
	s.listener = pubnub.NewListener()
	s.pn.AddListener(s.listener)
	s.cancel = cancel
	s.mu.Unlock()

	go s.processSubscription(runCtx)

	s.pn.Subscribe().
		Channels([]string{OwnerChannel(ownerID)}).
		Execute()

	return nil
}

// Stop tears the subscription down. The channel must not leak past the
// organizer's session.
func (s *EscalationFeedService) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	pn := s.pn
	s.cancel = nil
	s.pn = nil
	s.listener = nil
	s.state = FeedIdle
	s.items = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pn != nil {
		pn.UnsubscribeAll()
	}
}

func (s *EscalationFeedService) processSubscription(ctx context.Context) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return
	}

	for {
		select {
		case st := <-listener.Status:
			switch st.Category {
			case pubnub.PNConnectedCategory:
				log.Printf("Escalation feed %s connected", s.ownerID)
				s.setState(FeedActive)
				s.refetchQuietly(ctx)

			case pubnub.PNReconnectedCategory:
				// Messages during the outage are gone; reconcile.
				log.Printf("Escalation feed %s reconnected", s.ownerID)
				s.monitor.TrackFeedReconnect(s.ownerID)
				s.setState(FeedActive)
				s.refetchQuietly(ctx)

			case pubnub.PNDisconnectedCategory, pubnub.PNTimeoutCategory:
				log.Printf("Escalation feed %s disconnected", s.ownerID)
				s.setState(FeedError)

			case pubnub.PNReconnectionAttemptsExhausted:
				log.Printf("Escalation feed %s reconnection exhausted, resubscribing", s.ownerID)
				s.setState(FeedSubscribing)
				s.resubscribe()

			case pubnub.PNAccessDeniedCategory:
				log.Printf("Escalation feed %s access denied", s.ownerID)
				s.setState(FeedError)
			}

		case message := <-listener.Message:
			change, err := decodeChange(message.Message)
			if err != nil {
				log.Printf("Error decoding escalation change: %v", err)
				continue
			}
			s.Apply(change)

		case <-ctx.Done():
			log.Printf("Escalation feed %s closed", s.ownerID)
			return
		}
	}
}

func (s *EscalationFeedService) resubscribe() {
	s.mu.Lock()
	pn := s.pn
	owner := s.ownerID
	s.mu.Unlock()
	if pn == nil {
		return
	}
	pn.Subscribe().
		Channels([]string{OwnerChannel(owner)}).
		Execute()
}

func decodeChange(raw any) (models.EscalationChange, error) {
	var change models.EscalationChange

	data, err := json.Marshal(raw)
	if err != nil {
		return change, err
	}
	if err := json.Unmarshal(data, &change); err != nil {
		return change, err
	}
	if change.Action == "" || change.Escalation.ID == "" {
		return change, fmt.Errorf("malformed escalation change: %s", data)
	}
	return change, nil
}

// Refetch replaces the list from storage, preserving the read flag of every
// row already known. A refetch may race an in-flight push update; the union
// by id makes that safe without ordering guarantees.
func (s *EscalationFeedService) Refetch(ctx context.Context) error {
	s.mu.Lock()
	owner := s.ownerID
	s.mu.Unlock()

	rows, err := s.source.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]bool, len(s.items))
	for _, n := range s.items {
		known[n.ID] = n.Read
	}

	fresh := make([]models.Notification, 0, len(rows))
	for _, row := range rows {
		n := models.NotificationFromEscalation(row)
		if read, ok := known[row.ID]; ok {
			n.Read = read
		}
		fresh = append(fresh, n)
	}
	s.items = fresh
	s.monitor.SetFeedSize(owner, len(fresh))
	return nil
}

func (s *EscalationFeedService) refetchQuietly(ctx context.Context) {
	if err := s.Refetch(ctx); err != nil {
		log.Printf("Escalation feed %s refetch failed: %v", s.ownerID, err)
	}
}

// Apply folds one row-level change into the list. Inserts arriving twice
// (the channel may redeliver) degrade to updates, and updates for unknown
// rows degrade to inserts, so delivery order does not matter.
func (s *EscalationFeedService) Apply(change models.EscalationChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch change.Action {
	case models.ChangeInsert:
		if idx := s.indexOf(change.Escalation.ID); idx >= 0 {
			s.updateAt(idx, change.Escalation)
			break
		}
		n := models.NotificationFromEscalation(change.Escalation)
		n.IsNew = true
		s.items = append([]models.Notification{n}, s.items...)

	case models.ChangeUpdate:
		idx := s.indexOf(change.Escalation.ID)
		if idx < 0 {
			n := models.NotificationFromEscalation(change.Escalation)
			n.IsNew = true
			s.items = append([]models.Notification{n}, s.items...)
			break
		}
		s.updateAt(idx, change.Escalation)

	case models.ChangeDelete:
		if idx := s.indexOf(change.Escalation.ID); idx >= 0 {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
		}
	}

	s.monitor.SetFeedSize(s.ownerID, len(s.items))
}

// updateAt replaces display fields only. Read state is owned by explicit
// user action, never by channel traffic.
func (s *EscalationFeedService) updateAt(idx int, esc models.Escalation) {
	n := &s.items[idx]
	n.Message = esc.IssueSummary
	n.Priority = esc.Priority
	n.EventID = esc.EventID
	n.TicketID = esc.TicketID
	n.RefCode = esc.RefCode
	n.Updated = true
}

func (s *EscalationFeedService) indexOf(id string) int {
	for i, n := range s.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// Notifications returns a snapshot of the current list, newest first.
func (s *EscalationFeedService) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount is recomputed by counting on every call, never tracked.
func (s *EscalationFeedService) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.UnreadCount(s.items)
}

func (s *EscalationFeedService) MarkRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return status.ErrNotificationNotFound
	}
	s.items[idx].Read = true
	s.items[idx].IsNew = false
	return nil
}

func (s *EscalationFeedService) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
		s.items[i].IsNew = false
	}
}

// Delete removes the backing escalation first and drops the notification
// locally only once the remote delete succeeded. A failed remote delete
// keeps the local entry so it cannot silently reappear on the next refetch.
func (s *EscalationFeedService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.indexOf(id) < 0 {
		s.mu.Unlock()
		return status.ErrNotificationNotFound
	}
	s.mu.Unlock()

	if err := s.source.Delete(ctx, id); err != nil {
		return err
	}

	s.Apply(models.EscalationChange{
		Action:     models.ChangeDelete,
		Escalation: models.Escalation{ID: id},
	})
	return nil
}

func (s *EscalationFeedService) State() FeedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *EscalationFeedService) setState(state FeedState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
