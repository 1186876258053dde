package world

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"adventure-server/internal/models"
)

// ValidationError collects every integrity problem found in a world
// definition so authors see them all at once instead of one per run.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("world validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Unwrap lets callers match on the sentinel without inspecting the list.
func (e *ValidationError) Unwrap() error { return models.ErrWorldInvalid }

var validate = validator.New()

// Validate checks a world definition for structural completeness and
// referential integrity. Errors make the world unusable; warnings flag
// authoring mistakes the engine tolerates, such as an entity that is
// hidden with no way to ever reveal it.
func Validate(w *models.WorldData) ([]string, error) {
	ve := &ValidationError{}
	var warnings []string

	if err := validate.Struct(w); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("field %s failed rule %q", fe.Namespace(), fe.Tag()))
		}
	}

	locExists := func(id string) bool { _, ok := w.Locations[id]; return ok }
	itemExists := func(id string) bool { _, ok := w.Items[id]; return ok }

	if w.Start.Location != "" && !locExists(w.Start.Location) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("start location %q is not defined", w.Start.Location))
	}
	for _, itemID := range w.Start.Inventory {
		if !itemExists(itemID) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("start inventory item %q is not defined", itemID))
		}
	}

	for locID, loc := range w.Locations {
		if err := validate.Struct(loc); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("location %q: %v", locID, err))
			continue
		}
		for dir, exit := range loc.Exits {
			if !locExists(exit.Destination) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q exit %q points to undefined location %q", locID, dir, exit.Destination))
			}
			if exit.Requires != nil && exit.Requires.Item != "" && !itemExists(exit.Requires.Item) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q exit %q requires undefined item %q", locID, dir, exit.Requires.Item))
			}
			warnings = appendHiddenWarning(warnings, exit.Visibility,
				fmt.Sprintf("location %q exit %q", locID, dir))
		}
		for _, placement := range loc.Items {
			if !itemExists(placement.ItemID) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q places undefined item %q", locID, placement.ItemID))
			}
			warnings = appendHiddenWarning(warnings, placement.Visibility,
				fmt.Sprintf("location %q item %q", locID, placement.ItemID))
		}
		for _, placement := range loc.NPCs {
			if _, ok := w.NPCs[placement.NPCID]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q places undefined npc %q", locID, placement.NPCID))
			}
			warnings = appendHiddenWarning(warnings, placement.Visibility,
				fmt.Sprintf("location %q npc %q", locID, placement.NPCID))
		}
		seenDetails := map[string]bool{}
		for _, detail := range loc.Details {
			if seenDetails[detail.ID] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q has duplicate detail id %q", locID, detail.ID))
			}
			seenDetails[detail.ID] = true
			warnings = appendHiddenWarning(warnings, detail.Visibility,
				fmt.Sprintf("location %q detail %q", locID, detail.ID))
		}
	}

	for npcID, npc := range w.NPCs {
		if npc.BaseLocation != "" && !locExists(npc.BaseLocation) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"npc %q base location %q is not defined", npcID, npc.BaseLocation))
		}
		for _, roam := range npc.RoamingLocations {
			if !locExists(roam) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"npc %q roaming location %q is not defined", npcID, roam))
			}
		}
		for _, change := range npc.LocationChanges {
			if change.MoveTo != nil && !locExists(*change.MoveTo) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"npc %q location change on flag %q moves to undefined location %q",
					npcID, change.Flag, *change.MoveTo))
			}
		}
	}

	if v := w.Victory; v != nil {
		if v.Location != "" && !locExists(v.Location) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("victory location %q is not defined", v.Location))
		}
		if v.Item != "" && !itemExists(v.Item) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("victory item %q is not defined", v.Item))
		}
	}

	if len(ve.Errors) > 0 {
		return warnings, ve
	}
	return warnings, nil
}

func appendHiddenWarning(warnings []string, rule models.VisibilityRule, subject string) []string {
	if rule.Hidden && rule.FindCondition == nil {
		warnings = append(warnings, subject+" is hidden with no find condition and can never be revealed")
	}
	return warnings
}
