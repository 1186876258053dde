package engine

import (
	"strings"

	"adventure-server/internal/models"
)

// FlavorHandler absorbs inputs with no mechanical effect. Validation
// trivially succeeds, execution is a no-op, and the event packages the raw
// verb/target/manner for narration. When the world declares an interaction
// matching the verb and target, its authored response rides along as
// narration guidance; the state is untouched either way.
type FlavorHandler struct{}

func (h *FlavorHandler) CreateEvent(intent *models.FlavorIntent, state *models.SessionState, world *models.WorldData) models.Event {
	ev := models.NewEvent(models.EventFlavorAction, intent.TargetID)
	ev.Context["verb"] = intent.Verb
	if intent.ActionHint != "" {
		ev.Context["action_hint"] = intent.ActionHint
	}
	if intent.Target != "" {
		ev.Context["target"] = intent.Target
	}
	if intent.Topic != "" {
		ev.Context["topic"] = intent.Topic
	}
	if intent.Manner != "" {
		ev.Context["manner"] = intent.Manner
	}
	if response := h.matchInteraction(intent, state, world); response != "" {
		ev.Context["authored_response"] = response
	}
	return ev
}

func (h *FlavorHandler) matchInteraction(intent *models.FlavorIntent, state *models.SessionState, world *models.WorldData) string {
	loc, ok := world.Locations[state.CurrentLocation]
	if !ok {
		return ""
	}
	verb := strings.ToLower(intent.Verb)
	for _, ia := range loc.Interactions {
		if !strings.EqualFold(ia.Verb, verb) {
			continue
		}
		if ia.Target != "" && ia.Target != intent.TargetID && !strings.EqualFold(ia.Target, intent.Target) {
			continue
		}
		return ia.Response
	}
	return ""
}
