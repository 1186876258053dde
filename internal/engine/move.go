package engine

import (
	"fmt"

	"adventure-server/internal/models"
)

// MoveHandler moves the player through a live exit. A destination is
// reachable only when it is the value of a currently visible exit and any
// location-level requirement (flag and/or item) is satisfied.
type MoveHandler struct{}

func (h *MoveHandler) ChecksVictory() bool { return true }

func (h *MoveHandler) Validate(intent *models.ActionIntent, state *models.SessionState, world *models.WorldData) models.ValidationResult {
	loc, ok := world.Locations[state.CurrentLocation]
	if !ok {
		return models.Reject(models.RejectionNoExit, "there is no way to go from here")
	}

	var (
		exit      *models.Exit
		direction string
	)
	for dir, e := range loc.Exits {
		if e.Destination != intent.TargetID {
			continue
		}
		if visible, _ := AnalyzeVisibility(e.Visibility, e.Destination, state); !visible {
			continue
		}
		exit = e
		direction = dir
		break
	}
	if exit == nil {
		return models.Reject(models.RejectionNoExit, "there is no exit leading that way")
	}

	dest, ok := world.Locations[exit.Destination]
	if !ok {
		// Dangling destinations are caught by world validation; treat a
		// slipped-through one as an impassable exit rather than a panic.
		return models.Reject(models.RejectionNoExit, "the way is impassable")
	}

	if req := exit.Requires; req != nil {
		if req.Flag != "" && !state.FlagSet(req.Flag) {
			return models.RejectWithHint(models.RejectionBlocked,
				fmt.Sprintf("the way to %s is blocked", dest.Name), req.Hint)
		}
		if req.Item != "" && !state.Holds(req.Item) {
			return models.RejectWithHint(models.RejectionBlocked,
				fmt.Sprintf("something is needed to pass toward %s", dest.Name), req.Hint)
		}
	}

	// First-visit is decided before Execute commits the destination to the
	// visited set, so the event can still say "first visit".
	return models.Accept(models.ValidationContext{
		Destination:      exit.Destination,
		Direction:        direction,
		DestinationKnown: exit.DestinationKnown,
		FirstVisit:       !state.Visited(exit.Destination),
	})
}

func (h *MoveHandler) Execute(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState) {
	state.CurrentLocation = result.Context.Destination
	state.MarkVisited(result.Context.Destination)
}

func (h *MoveHandler) CreateEvent(intent *models.ActionIntent, result models.ValidationResult, state *models.SessionState, world *models.WorldData, snap models.PerceptionSnapshot) models.Event {
	if !result.Valid {
		return rejectionEvent(intent, result)
	}
	ev := models.NewEvent(models.EventLocationChanged, result.Context.Destination)
	ev.Context["direction"] = result.Context.Direction
	ev.Context["first_visit"] = result.Context.FirstVisit
	ev.Context["destination_known"] = result.Context.DestinationKnown
	if loc, ok := world.Locations[result.Context.Destination]; ok {
		ev.Context["location_name"] = loc.Name
	}
	return ev
}
