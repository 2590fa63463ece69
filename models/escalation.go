package models

type Priority string

const (
	PriorityLow            Priority = "Low"
	PriorityMedium         Priority = "Medium"
	PrioritySevere         Priority = "Severe"
	PriorityRecommendation Priority = "recommendation"
)

// ValidSupportPriority reports whether p is a priority the support-chat
// escalation tool may submit. Pricing recommendations use their own tag.
func ValidSupportPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PrioritySevere:
		return true
	}
	return false
}

type Escalation struct {
	ID           string   `db:"id" json:"id"`
	EventID      string   `db:"event_id" json:"event_id"`
	TicketID     string   `db:"ticket_id" json:"ticket_id,omitempty"`
	IssueSummary string   `db:"issue_summary" json:"issue_summary"`
	Priority     Priority `db:"priority" json:"priority"`
	UserName     string   `db:"user_name" json:"user_name,omitempty"`
	UserContact  string   `db:"user_contact" json:"user_contact,omitempty"`
	RefCode      string   `db:"ref_code" json:"ref_code,omitempty"`
	Created      string   `db:"created" json:"created_at"`
}

// PriorityTraits describes how a priority renders and behaves in the
// notification feed. Kept as a single table so storage and presentation
// never disagree on the mapping.
type PriorityTraits struct {
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	Label          string `json:"label"`
	RequireConfirm bool   `json:"require_confirm"`
}

var priorityTraits = map[Priority]PriorityTraits{
	PriorityLow:            {Icon: "information-circle", Color: "#4A90D9", Label: "Low priority issue"},
	PriorityMedium:         {Icon: "alert-circle", Color: "#E8A33D", Label: "Medium priority issue"},
	PrioritySevere:         {Icon: "warning", Color: "#D64545", Label: "Severe issue", RequireConfirm: true},
	PriorityRecommendation: {Icon: "trending-up", Color: "#3FA06A", Label: "Pricing recommendation"},
}

// TraitsFor returns the presentation traits for a priority, falling back to
// the Low traits for unknown tags coming out of older rows.
func TraitsFor(p Priority) PriorityTraits {
	if t, ok := priorityTraits[p]; ok {
		return t
	}
	return priorityTraits[PriorityLow]
}

// ChangeAction identifies a row-level change on the escalations store.
type ChangeAction string

const (
	ChangeInsert ChangeAction = "insert"
	ChangeUpdate ChangeAction = "update"
	ChangeDelete ChangeAction = "delete"
)

// EscalationChange is the realtime message published on an organizer's
// channel whenever one of their escalation rows changes.
type EscalationChange struct {
	Action     ChangeAction `json:"action"`
	Escalation Escalation   `json:"escalation"`
}
