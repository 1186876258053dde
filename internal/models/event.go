package models

// EventType tags a confirmed, narratable pipeline event.
type EventType string

const (
	EventLocationChanged EventType = "location_changed"
	EventSceneBrowsed    EventType = "scene_browsed"
	EventItemExamined    EventType = "item_examined"
	EventDetailExamined  EventType = "detail_examined"
	EventItemTaken       EventType = "item_taken"
	EventActionRejected  EventType = "action_rejected"
	EventFlavorAction    EventType = "flavor_action"
	EventGameWon         EventType = "game_won"
)

// Event is the pipeline's record of "what changed" this turn, consumed by
// the narrator to decide "how it reads". Events are append-only within a
// turn and never mutated after emission. Context is the typed escape
// hatch for narrator-facing free-form detail.
type Event struct {
	Type    EventType      `json:"type"`
	Subject string         `json:"subject,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// NewEvent builds an event with an initialized context map.
func NewEvent(t EventType, subject string) Event {
	return Event{Type: t, Subject: subject, Context: make(map[string]any)}
}
