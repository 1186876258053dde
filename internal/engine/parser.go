package engine

import (
	"strings"

	"adventure-server/internal/models"
)

// Direction abbreviations accepted as bare tokens.
var directionAliases = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
	"u":  "up",
	"d":  "down",
}

// Full direction names that work standalone as "go <dir>" shortcuts.
var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
	"up": true, "down": true, "in": true, "out": true,
}

// Verbs treated as "go".
var goAliases = map[string]bool{
	"go": true, "walk": true, "run": true, "move": true, "head": true,
}

// Parse is the deterministic fast path for the dominant action types. It
// turns literal movement tokens and "go <direction>" forms into a MOVE
// intent when the current location structurally has that exit (visible or
// not: rejecting is the handler's job during validation, never the
// parser's), and bare "look"/"look around" into a BROWSE intent. Anything
// else returns nil, signalling the processor to fall back to the external
// intent resolver.
func Parse(rawInput string, state *models.SessionState, world *models.WorldData) *models.ActionIntent {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(rawInput)))
	if len(fields) == 0 {
		return nil
	}

	switch {
	case len(fields) == 1 && (fields[0] == "look" || fields[0] == "l"):
		return &models.ActionIntent{ActionType: models.ActionBrowse, Confidence: 1}
	case len(fields) == 2 && fields[0] == "look" && fields[1] == "around":
		return &models.ActionIntent{ActionType: models.ActionBrowse, Confidence: 1}
	}

	var direction string
	switch {
	case len(fields) == 1:
		direction = normalizeDirection(fields[0])
	case len(fields) == 2 && goAliases[fields[0]]:
		direction = normalizeDirection(fields[1])
	}
	if direction == "" {
		return nil
	}

	loc, ok := world.Locations[state.CurrentLocation]
	if !ok {
		return nil
	}
	exit, ok := loc.Exits[direction]
	if !ok {
		return nil
	}
	return &models.ActionIntent{
		ActionType: models.ActionMove,
		TargetID:   exit.Destination,
		Confidence: 1,
	}
}

func normalizeDirection(token string) string {
	if full, ok := directionAliases[token]; ok {
		return full
	}
	if directionNames[token] {
		return token
	}
	return ""
}
