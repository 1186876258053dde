package models

// PerceptionSnapshot is the computed view of everything the player can
// currently perceive. It is derived on demand and never stored: the
// pipeline recomputes it before mutation (for rejection narration) and
// after mutation (for success narration) within a single turn.
type PerceptionSnapshot struct {
	LocationID     string           `json:"location_id"`
	Name           string           `json:"name"`
	Atmosphere     string           `json:"atmosphere,omitempty"`
	VisibleItems   []SnapshotEntity `json:"visible_items"`
	VisibleDetails []SnapshotEntity `json:"visible_details"`
	VisibleExits   []SnapshotExit   `json:"visible_exits"`
	VisibleNPCs    []SnapshotEntity `json:"visible_npcs"`
	Inventory      []SnapshotEntity `json:"inventory"`
	FirstVisit     bool             `json:"first_visit"`
}

// SnapshotEntity is a nameable entity as the player perceives it.
type SnapshotEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SnapshotExit is a perceivable exit. Destination is omitted from
// narrator-facing output when the exit's destination is not known to the
// player; DestinationKnown carries that contract forward.
type SnapshotExit struct {
	Direction        string `json:"direction"`
	Destination      string `json:"destination,omitempty"`
	DestinationKnown bool   `json:"destination_known"`
}
