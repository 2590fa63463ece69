package models

// Notification is the in-memory view model the feed maintains per
// escalation row. Read state lives only here, never in storage.
type Notification struct {
	ID       string   `json:"id"`
	EventID  string   `json:"event_id"`
	TicketID string   `json:"ticket_id,omitempty"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
	RefCode  string   `json:"ref_code,omitempty"`
	Created  string   `json:"created_at"`

	Read    bool `json:"read"`
	IsNew   bool `json:"is_new,omitempty"`
	Updated bool `json:"updated,omitempty"`
}

// NotificationFromEscalation projects a stored escalation row into a fresh
// unread notification.
func NotificationFromEscalation(e Escalation) Notification {
	return Notification{
		ID:       e.ID,
		EventID:  e.EventID,
		TicketID: e.TicketID,
		Message:  e.IssueSummary,
		Priority: e.Priority,
		RefCode:  e.RefCode,
		Created:  e.Created,
	}
}

// UnreadCount derives the unread total by counting. The feed recomputes it
// on every change instead of tracking it incrementally.
func UnreadCount(list []Notification) int {
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count
}
