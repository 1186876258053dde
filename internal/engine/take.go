package engine

import (
	"fmt"

	"adventure-server/internal/models"
)

// TakeHandler moves a portable, currently visible item from its location
// placement into the inventory.
type TakeHandler struct{}

func (h *TakeHandler) ChecksVictory() bool { return true }

func (h *TakeHandler) Validate(intent *models.ActionIntent, state *models.SessionState, world *models.WorldData) models.ValidationResult {
	target := intent.TargetID
	if state.Holds(target) {
		return models.Reject(models.RejectionAlreadyHeld, "you are already carrying that")
	}

	loc, ok := world.Locations[state.CurrentLocation]
	if !ok {
		return models.Reject(models.RejectionNotFound, "there is nothing like that to take")
	}

	for _, placement := range loc.Items {
		if placement.ItemID != target {
			continue
		}
		if visible, _ := AnalyzeVisibility(placement.Visibility, target, state); !visible {
			return models.Reject(models.RejectionNotFound, "there is nothing like that to take")
		}
		item, ok := world.Items[target]
		if !ok {
			return models.Reject(models.RejectionNotFound, "there is nothing like that to take")
		}
		if !item.Portable {
			return models.Reject(models.RejectionNotPortable,
				fmt.Sprintf("the %s cannot be carried", item.Name))
		}
		return models.Accept(models.ValidationContext{
			EntityID:   target,
			EntityName: item.Name,
			Source:     models.SourceItem,
		})
	}

	return models.Reject(models.RejectionNotFound, "there is nothing like that to take")
}

func (h *TakeHandler) Execute(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState) {
	state.AddToInventory(result.Context.EntityID)
}

func (h *TakeHandler) CreateEvent(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState, world *models.WorldData, snap models.PerceptionSnapshot) models.Event {
	if !result.Valid {
		return rejectionEvent(intent, result)
	}
	ev := models.NewEvent(models.EventItemTaken, result.Context.EntityID)
	ev.Context["name"] = result.Context.EntityName
	return ev
}
