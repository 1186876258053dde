package engine

import (
	"adventure-server/internal/models"
)

// ExamineHandler resolves an examine target in a fixed order: inventory,
// then location details, exits, item placements and NPC placements. The
// first structural match wins; when that match is gated by placement
// visibility and currently invisible, the outcome is "not found", never a
// distinct "hidden" rejection. Players must not learn something exists by
// trying to examine it.
type ExamineHandler struct{}

func (h *ExamineHandler) ChecksVictory() bool { return true }

const examineNotFoundReason = "you see nothing like that here"

func (h *ExamineHandler) Validate(intent *models.ActionIntent, state *models.SessionState, world *models.WorldData) models.ValidationResult {
	target := intent.TargetID
	if target == "" {
		return models.Reject(models.RejectionNotFound, examineNotFoundReason)
	}

	// Inventory first: held items are always examinable, even when the same
	// id also has a (now irrelevant) location placement.
	if state.Holds(target) {
		item, ok := world.Items[target]
		if !ok {
			return models.Reject(models.RejectionNotFound, examineNotFoundReason)
		}
		return models.Accept(models.ValidationContext{
			EntityID:    target,
			EntityName:  item.Name,
			Description: itemDescription(item),
			Source:      models.SourceInventory,
		})
	}

	loc, ok := world.Locations[state.CurrentLocation]
	if !ok {
		return models.Reject(models.RejectionNotFound, examineNotFoundReason)
	}

	for _, detail := range loc.Details {
		if detail.ID != target {
			continue
		}
		if visible, _ := AnalyzeVisibility(detail.Visibility, detail.ID, state); !visible {
			return models.Reject(models.RejectionNotFound, examineNotFoundReason)
		}
		return models.Accept(models.ValidationContext{
			EntityID:    detail.ID,
			EntityName:  detail.Name,
			Description: detail.Description,
			Source:      models.SourceDetail,
			RevealsFlag: detail.RevealsFlag,
		})
	}

	for dir, exit := range loc.Exits {
		if dir != target && exit.Destination != target {
			continue
		}
		if visible, _ := AnalyzeVisibility(exit.Visibility, exit.Destination, state); !visible {
			return models.Reject(models.RejectionNotFound, examineNotFoundReason)
		}
		ctx := models.ValidationContext{
			EntityID:         exit.Destination,
			EntityName:       dir,
			Direction:        dir,
			DestinationKnown: exit.DestinationKnown,
			Source:           models.SourceExit,
		}
		if exit.DestinationKnown {
			if dest, ok := world.Locations[exit.Destination]; ok {
				ctx.Description = dest.Name
			}
		}
		return models.Accept(ctx)
	}

	for _, placement := range loc.Items {
		if placement.ItemID != target {
			continue
		}
		if visible, _ := AnalyzeVisibility(placement.Visibility, placement.ItemID, state); !visible {
			return models.Reject(models.RejectionNotFound, examineNotFoundReason)
		}
		item, ok := world.Items[target]
		if !ok {
			return models.Reject(models.RejectionNotFound, examineNotFoundReason)
		}
		return models.Accept(models.ValidationContext{
			EntityID:    target,
			EntityName:  item.Name,
			Description: itemDescription(item),
			Source:      models.SourceItem,
		})
	}

	for _, placement := range loc.NPCs {
		if placement.NPCID != target {
			continue
		}
		npc, ok := world.NPCs[target]
		if !ok || !isNPCVisible(target, npc, state, world) {
			return models.Reject(models.RejectionNotFound, examineNotFoundReason)
		}
		return models.Accept(models.ValidationContext{
			EntityID:    target,
			EntityName:  npc.Name,
			Description: npc.Description,
			Source:      models.SourceNPC,
		})
	}

	return models.Reject(models.RejectionNotFound, examineNotFoundReason)
}

// Execute applies on-examine side effects: a detail whose reveals_flag is
// set raises that flag, which may in turn reveal gated entities.
func (h *ExamineHandler) Execute(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState) {
	if result.Context.RevealsFlag != "" {
		state.SetFlag(result.Context.RevealsFlag, true)
	}
}

func (h *ExamineHandler) CreateEvent(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState, world *models.WorldData, snap models.PerceptionSnapshot) models.Event {
	if !result.Valid {
		return rejectionEvent(intent, result)
	}
	eventType := models.EventItemExamined
	if result.Context.Source == models.SourceDetail || result.Context.Source == models.SourceExit {
		eventType = models.EventDetailExamined
	}
	ev := models.NewEvent(eventType, result.Context.EntityID)
	ev.Context["name"] = result.Context.EntityName
	ev.Context["description"] = result.Context.Description
	ev.Context["source"] = string(result.Context.Source)
	if result.Context.RevealsFlag != "" {
		ev.Context["revealed"] = true
	}
	return ev
}

func itemDescription(item *models.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.ShortDescription
}
