package models

// ActionType is the closed set of mechanical action kinds the pipeline
// dispatches on. Types may be recognized without having a registered
// handler; those degrade to a fixed "not yet supported" response.
type ActionType string

const (
	ActionMove    ActionType = "move"
	ActionExamine ActionType = "examine"
	ActionTake    ActionType = "take"
	ActionBrowse  ActionType = "browse"

	// Recognized by the resolver but not yet handled.
	ActionDrop ActionType = "drop"
	ActionOpen ActionType = "open"
	ActionTalk ActionType = "talk"
	ActionUse  ActionType = "use"
)

// KnownActionTypes enumerates every action type the resolver may emit.
var KnownActionTypes = map[ActionType]bool{
	ActionMove:    true,
	ActionExamine: true,
	ActionTake:    true,
	ActionBrowse:  true,
	ActionDrop:    true,
	ActionOpen:    true,
	ActionTalk:    true,
	ActionUse:     true,
}

// Intent is the structured result of interpreting raw player input.
// Exactly one variant is produced per input: an ActionIntent for
// mechanical actions or a FlavorIntent for everything else.
type Intent interface {
	isIntent()
}

// ActionIntent is a classified mechanical action.
type ActionIntent struct {
	ActionType   ActionType `json:"action_type"`
	TargetID     string     `json:"target_id,omitempty"`
	InstrumentID string     `json:"instrument_id,omitempty"`
	TopicID      string     `json:"topic_id,omitempty"`
	Confidence   float64    `json:"confidence"`
}

func (*ActionIntent) isIntent() {}

// FlavorIntent is an input with no mechanical effect: roleplay, jokes, or
// anything the resolver could not map onto an action type. It absorbs such
// inputs gracefully instead of hard-failing them.
type FlavorIntent struct {
	Verb       string `json:"verb"`
	ActionHint string `json:"action_hint,omitempty"`
	Target     string `json:"target,omitempty"`
	TargetID   string `json:"target_id,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Manner     string `json:"manner,omitempty"`
}

func (*FlavorIntent) isIntent() {}
