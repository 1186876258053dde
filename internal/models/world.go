package models

// WorldData is the immutable, validated description of a game world.
// It is loaded once by a world.Provider and shared read-only across every
// session playing that world; nothing in the pipeline ever mutates it.
type WorldData struct {
	ID               string               `json:"id" yaml:"id" validate:"required"`
	Title            string               `json:"title" yaml:"title" validate:"required"`
	OpeningNarrative string               `json:"opening_narrative" yaml:"opening_narrative"`
	Start            StartConfig          `json:"start" yaml:"start" validate:"required"`
	Locations        map[string]*Location `json:"locations" yaml:"locations" validate:"required,min=1"`
	Items            map[string]*Item     `json:"items" yaml:"items"`
	NPCs             map[string]*NPC      `json:"npcs" yaml:"npcs"`
	Victory          *VictoryCondition    `json:"victory,omitempty" yaml:"victory"`
}

// StartConfig is the starting configuration copied into every new session.
type StartConfig struct {
	Location        string                    `json:"location" yaml:"location" validate:"required"`
	Flags           map[string]bool           `json:"flags,omitempty" yaml:"flags"`
	Inventory       []string                  `json:"inventory,omitempty" yaml:"inventory"`
	ContainerStates map[string]ContainerState `json:"container_states,omitempty" yaml:"container_states"`
}

// Location describes a single place in the world.
type Location struct {
	Name         string           `json:"name" yaml:"name" validate:"required"`
	Atmosphere   string           `json:"atmosphere,omitempty" yaml:"atmosphere"`
	Exits        map[string]*Exit `json:"exits,omitempty" yaml:"exits"`
	Items        []*ItemPlacement `json:"items,omitempty" yaml:"items"`
	NPCs         []*NPCPlacement  `json:"npcs,omitempty" yaml:"npcs"`
	Details      []*Detail        `json:"details,omitempty" yaml:"details"`
	Interactions []*Interaction   `json:"interactions,omitempty" yaml:"interactions"`
}

// Exit connects a location to a destination in a named direction.
// DestinationKnown governs whether narration may name where the exit leads.
type Exit struct {
	Destination      string         `json:"destination" yaml:"destination" validate:"required"`
	DestinationKnown bool           `json:"destination_known" yaml:"destination_known"`
	Visibility       VisibilityRule `json:"visibility" yaml:"visibility"`
	Requires         *Requirement   `json:"requires,omitempty" yaml:"requires"`
}

// Requirement gates passage through an exit's destination.
// Both fields are optional; all present ones must hold.
type Requirement struct {
	Flag string `json:"flag,omitempty" yaml:"flag"`
	Item string `json:"item,omitempty" yaml:"item"`
	Hint string `json:"hint,omitempty" yaml:"hint"`
}

// VisibilityRule is carried independently by exits, item placements, NPC
// placements and details. A hidden entity with no find condition is
// permanently invisible; that is an authoring error the validator warns
// about, not something the pipeline works around.
type VisibilityRule struct {
	Hidden        bool           `json:"hidden" yaml:"hidden"`
	FindCondition *FindCondition `json:"find_condition,omitempty" yaml:"find_condition"`
}

// FindCondition names the session flag that reveals a hidden entity.
type FindCondition struct {
	RequiresFlag string `json:"requires_flag" yaml:"requires_flag" validate:"required"`
}

// ItemPlacement records where and how an item appears at a location.
type ItemPlacement struct {
	ItemID     string         `json:"item_id" yaml:"item_id" validate:"required"`
	Visibility VisibilityRule `json:"visibility" yaml:"visibility"`
}

// NPCPlacement records where and how an NPC appears at a location.
type NPCPlacement struct {
	NPCID      string         `json:"npc_id" yaml:"npc_id" validate:"required"`
	Visibility VisibilityRule `json:"visibility" yaml:"visibility"`
}

// Detail is an examinable feature of a location that is not an item.
// RevealsFlag, when set, is raised as a side effect of a successful examine.
type Detail struct {
	ID          string         `json:"id" yaml:"id" validate:"required"`
	Name        string         `json:"name" yaml:"name" validate:"required"`
	Description string         `json:"description" yaml:"description"`
	RevealsFlag string         `json:"reveals_flag,omitempty" yaml:"reveals_flag"`
	Visibility  VisibilityRule `json:"visibility" yaml:"visibility"`
}

// Interaction is authored narration guidance for non-mechanical verbs
// aimed at a target ("kick the door", "pray at the altar"). It has no
// state effect; the flavor handler surfaces it to the narrator.
type Interaction struct {
	Verb     string `json:"verb" yaml:"verb" validate:"required"`
	Target   string `json:"target,omitempty" yaml:"target"`
	Response string `json:"response" yaml:"response"`
}

// Item describes an item that may appear at locations or in inventories.
type Item struct {
	Name             string `json:"name" yaml:"name" validate:"required"`
	Portable         bool   `json:"portable" yaml:"portable"`
	ShortDescription string `json:"short_description,omitempty" yaml:"short_description"`
	Description      string `json:"description,omitempty" yaml:"description"`
}

// NPC describes a non-player character. BaseLocation is where it starts;
// LocationChanges relocate (or remove) it as flags are raised.
type NPC struct {
	Name             string            `json:"name" yaml:"name" validate:"required"`
	Description      string            `json:"description,omitempty" yaml:"description"`
	BaseLocation     string            `json:"base_location" yaml:"base_location"`
	RoamingLocations []string          `json:"roaming_locations,omitempty" yaml:"roaming_locations"`
	AppearsWhen      []*AppearsWhen    `json:"appears_when,omitempty" yaml:"appears_when"`
	LocationChanges  []*LocationChange `json:"location_changes,omitempty" yaml:"location_changes"`
}

// AppearsWhen is an additional visibility condition for an NPC, checked on
// top of placement visibility. All conditions on an NPC must hold.
type AppearsWhen struct {
	HasFlag    string `json:"has_flag,omitempty" yaml:"has_flag"`
	TrustAbove *int   `json:"trust_above,omitempty" yaml:"trust_above"`
}

// LocationChange relocates an NPC when the named flag is true. Triggers are
// applied in declared order and the last matching one wins. A nil MoveTo
// with a true flag removes the NPC from the game entirely.
type LocationChange struct {
	Flag   string  `json:"flag" yaml:"flag" validate:"required"`
	MoveTo *string `json:"move_to" yaml:"move_to"`
}

// VictoryCondition is the author-declared combination that ends a session
// as won. Each component is optional; all present ones must hold.
type VictoryCondition struct {
	Location  string `json:"location,omitempty" yaml:"location"`
	Flag      string `json:"flag,omitempty" yaml:"flag"`
	Item      string `json:"item,omitempty" yaml:"item"`
	Narrative string `json:"narrative,omitempty" yaml:"narrative"`
}
