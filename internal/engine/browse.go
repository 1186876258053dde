package engine

import (
	"adventure-server/internal/models"
)

// BrowseHandler handles "look around". It is always valid; its only job is
// producing a SCENE_BROWSED event flagged as a manual browse so narration
// can shorten repeat descriptions. The scene content itself comes from the
// freshly derived snapshot.
type BrowseHandler struct{}

func (h *BrowseHandler) ChecksVictory() bool { return false }

func (h *BrowseHandler) Validate(intent *models.ActionIntent, state *models.SessionState, world *models.WorldData) models.ValidationResult {
	return models.Accept(models.ValidationContext{
		IsManualBrowse: true,
		FirstVisit:     !state.Visited(state.CurrentLocation),
	})
}

func (h *BrowseHandler) Execute(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState) {
	// Browsing commits the current location; after the first success,
	// first-visit stays false for every repeat browse.
	state.MarkVisited(state.CurrentLocation)
}

func (h *BrowseHandler) CreateEvent(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState, world *models.WorldData, snap models.PerceptionSnapshot) models.Event {
	ev := models.NewEvent(models.EventSceneBrowsed, state.CurrentLocation)
	ev.Context["is_manual_browse"] = result.Context.IsManualBrowse
	ev.Context["first_visit"] = result.Context.FirstVisit
	return ev
}
