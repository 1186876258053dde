package engine

import (
	"adventure-server/internal/models"
)

// Handler owns validate/execute/create-event for one action type.
//
// Validate is read-only and decides whether the rules currently permit the
// action, reporting expected failures through the ValidationResult channel
// only. Execute is called only after a successful Validate and applies
// exactly the mutation that validation implied. CreateEvent runs after
// Execute for successes (with post-mutation state and a fresh snapshot) or
// directly from a failed result for rejections.
type Handler interface {
	Validate(intent *models.ActionIntent, state *models.SessionState, world *models.WorldData) models.ValidationResult
	Execute(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState)
	CreateEvent(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState, world *models.WorldData, snap models.PerceptionSnapshot) models.Event
	ChecksVictory() bool
}

// Registry is the explicit action-type to handler lookup table. Action
// types absent from it are recognized but unsupported.
type Registry struct {
	handlers map[models.ActionType]Handler
}

// NewRegistry builds the default registry covering every implemented
// action type.
func NewRegistry() *Registry {
	return &Registry{handlers: map[models.ActionType]Handler{
		models.ActionMove:    &MoveHandler{},
		models.ActionExamine: &ExamineHandler{},
		models.ActionTake:    &TakeHandler{},
		models.ActionBrowse:  &BrowseHandler{},
	}}
}

// Lookup returns the handler for an action type, or false when the type
// has no registered handler.
func (r *Registry) Lookup(t models.ActionType) (Handler, bool) {
	h, ok := r.handlers[t]
	return h, ok
}

// rejectionEvent packages a failed validation for the narrator.
func rejectionEvent(intent *models.ActionIntent, result models.ValidationResult) models.Event {
	ev := models.NewEvent(models.EventActionRejected, intent.TargetID)
	ev.Context["action_type"] = string(intent.ActionType)
	ev.Context["rejection_code"] = string(result.RejectionCode)
	ev.Context["reason"] = result.RejectionReason
	if result.Hint != "" {
		ev.Context["hint"] = result.Hint
	}
	return ev
}
