// Package engine implements the two-phase action pipeline: visibility
// resolution, rule-based parsing, per-action-type intent handlers and the
// processor that orchestrates a turn.
package engine

import (
	"sort"

	"adventure-server/internal/models"
)

// Visibility reasons returned by AnalyzeVisibility. "taken" and
// "condition_not_met:<flag>" vs "revealed" exist for debugging: they
// distinguish why something is or is not perceivable.
const (
	ReasonVisible  = "visible"
	ReasonTaken    = "taken"
	ReasonHidden   = "hidden"
	ReasonRevealed = "revealed"

	reasonConditionNotMet = "condition_not_met:"
)

// AnalyzeVisibility applies the uniform visibility rules to a single
// placement. Entities already in inventory are never visible at a location;
// hidden entities with no find condition are never visible at all (author
// responsibility); hidden entities with a find condition are visible iff
// the named session flag is true.
func AnalyzeVisibility(rule models.VisibilityRule, entityID string, state *models.SessionState) (bool, string) {
	if state.Holds(entityID) {
		return false, ReasonTaken
	}
	if !rule.Hidden {
		return true, ReasonVisible
	}
	if rule.FindCondition == nil {
		return false, ReasonHidden
	}
	flag := rule.FindCondition.RequiresFlag
	if state.FlagSet(flag) {
		return true, ReasonRevealed
	}
	return false, reasonConditionNotMet + flag
}

// IsItemVisible reports whether the item is perceivable at the player's
// current location.
func IsItemVisible(itemID string, state *models.SessionState, world *models.WorldData) bool {
	loc, ok := world.Locations[state.CurrentLocation]
	if !ok {
		return false
	}
	for _, placement := range loc.Items {
		if placement.ItemID != itemID {
			continue
		}
		visible, _ := AnalyzeVisibility(placement.Visibility, itemID, state)
		return visible
	}
	return false
}

// ResolveNPCLocation computes where an NPC currently is. It starts from the
// base location and applies each location_changes trigger in declared
// order, overwriting the candidate whenever the trigger's flag is true:
// last match wins, not first. A matching trigger with a nil move_to marks
// the NPC permanently removed from the game.
func ResolveNPCLocation(npc *models.NPC, state *models.SessionState) (location string, removed bool) {
	location = npc.BaseLocation
	for _, change := range npc.LocationChanges {
		if change == nil || !state.FlagSet(change.Flag) {
			continue
		}
		if change.MoveTo == nil {
			location = ""
			removed = true
			continue
		}
		location = *change.MoveTo
		removed = false
	}
	return location, removed
}

// npcAppears evaluates the NPC's appears_when conditions on top of
// placement visibility.
func npcAppears(npc *models.NPC, state *models.SessionState, npcID string) bool {
	for _, cond := range npc.AppearsWhen {
		if cond == nil {
			continue
		}
		if cond.HasFlag != "" && !state.FlagSet(cond.HasFlag) {
			return false
		}
		if cond.TrustAbove != nil && state.Trust[npcID] <= *cond.TrustAbove {
			return false
		}
	}
	return true
}

// isNPCVisible reports whether the NPC is perceivable at the player's
// current location: its resolved location must match, its placement (if the
// location declares one) must pass the uniform visibility rules, and every
// appears_when condition must hold.
func isNPCVisible(npcID string, npc *models.NPC, state *models.SessionState, world *models.WorldData) bool {
	resolved, removed := ResolveNPCLocation(npc, state)
	if removed || resolved != state.CurrentLocation {
		return false
	}
	if loc, ok := world.Locations[state.CurrentLocation]; ok {
		for _, placement := range loc.NPCs {
			if placement.NPCID != npcID {
				continue
			}
			if visible, _ := AnalyzeVisibility(placement.Visibility, npcID, state); !visible {
				return false
			}
			break
		}
	}
	return npcAppears(npc, state, npcID)
}

// BuildSnapshot derives the full perception snapshot for the current
// location. It is a pure function of (state, world): calling it twice
// without intervening mutation yields identical results, and nothing it
// returns aliases mutable state.
func BuildSnapshot(state *models.SessionState, world *models.WorldData) models.PerceptionSnapshot {
	snap := models.PerceptionSnapshot{
		LocationID:     state.CurrentLocation,
		VisibleItems:   []models.SnapshotEntity{},
		VisibleDetails: []models.SnapshotEntity{},
		VisibleExits:   []models.SnapshotExit{},
		VisibleNPCs:    []models.SnapshotEntity{},
		Inventory:      []models.SnapshotEntity{},
		FirstVisit:     !state.Visited(state.CurrentLocation),
	}

	loc, ok := world.Locations[state.CurrentLocation]
	if !ok {
		return snap
	}
	snap.Name = loc.Name
	snap.Atmosphere = loc.Atmosphere

	for _, placement := range loc.Items {
		if visible, _ := AnalyzeVisibility(placement.Visibility, placement.ItemID, state); !visible {
			continue
		}
		snap.VisibleItems = append(snap.VisibleItems, models.SnapshotEntity{
			ID:   placement.ItemID,
			Name: itemName(world, placement.ItemID),
		})
	}

	for _, detail := range loc.Details {
		if visible, _ := AnalyzeVisibility(detail.Visibility, detail.ID, state); !visible {
			continue
		}
		snap.VisibleDetails = append(snap.VisibleDetails, models.SnapshotEntity{ID: detail.ID, Name: detail.Name})
	}

	directions := make([]string, 0, len(loc.Exits))
	for dir := range loc.Exits {
		directions = append(directions, dir)
	}
	sort.Strings(directions)
	for _, dir := range directions {
		exit := loc.Exits[dir]
		if visible, _ := AnalyzeVisibility(exit.Visibility, exit.Destination, state); !visible {
			continue
		}
		se := models.SnapshotExit{Direction: dir, DestinationKnown: exit.DestinationKnown}
		if exit.DestinationKnown {
			se.Destination = exit.Destination
		}
		snap.VisibleExits = append(snap.VisibleExits, se)
	}

	for npcID, npc := range world.NPCs {
		if !isNPCVisible(npcID, npc, state, world) {
			continue
		}
		snap.VisibleNPCs = append(snap.VisibleNPCs, models.SnapshotEntity{ID: npcID, Name: npc.Name})
	}
	sort.Slice(snap.VisibleNPCs, func(i, j int) bool { return snap.VisibleNPCs[i].ID < snap.VisibleNPCs[j].ID })

	for _, itemID := range state.Inventory {
		snap.Inventory = append(snap.Inventory, models.SnapshotEntity{ID: itemID, Name: itemName(world, itemID)})
	}

	return snap
}

func itemName(world *models.WorldData, itemID string) string {
	if item, ok := world.Items[itemID]; ok {
		return item.Name
	}
	return itemID
}
