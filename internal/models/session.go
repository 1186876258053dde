package models

import (
	"github.com/google/uuid"
)

// SessionStatus mirrors the lifecycle of a single playthrough.
type SessionStatus string

const (
	StatusPlaying SessionStatus = "playing"
	StatusWon     SessionStatus = "won"
	StatusLost    SessionStatus = "lost"
)

// NarrationHistoryCap bounds the narration ring buffer kept on the session.
const NarrationHistoryCap = 5

// ContainerState tracks whether an openable container is open or closed.
type ContainerState string

const (
	ContainerOpen   ContainerState = "open"
	ContainerClosed ContainerState = "closed"
)

// SessionState is the mutable per-session record. It is mutated exclusively
// by intent handlers during Execute; everything else reads it. Once Status
// leaves StatusPlaying the pipeline stops mutating it entirely.
type SessionState struct {
	SessionID        uuid.UUID                 `json:"session_id"`
	WorldID          string                    `json:"world_id"`
	CurrentLocation  string                    `json:"current_location"`
	Inventory        []string                  `json:"inventory"`
	Flags            map[string]bool           `json:"flags"`
	VisitedLocations map[string]bool           `json:"visited_locations"`
	ContainerStates  map[string]ContainerState `json:"container_states"`
	Trust            map[string]int            `json:"trust"`
	TurnCount        int                       `json:"turn_count"`
	Status           SessionStatus             `json:"status"`
	NarrationHistory []string                  `json:"narration_history"`
}

// NewSessionState creates session state from a world's starting
// configuration. Maps are copied so sessions never alias world data.
func NewSessionState(world *WorldData) *SessionState {
	s := &SessionState{
		SessionID:        uuid.New(),
		WorldID:          world.ID,
		CurrentLocation:  world.Start.Location,
		Inventory:        append([]string(nil), world.Start.Inventory...),
		Flags:            make(map[string]bool, len(world.Start.Flags)),
		VisitedLocations: make(map[string]bool),
		ContainerStates:  make(map[string]ContainerState, len(world.Start.ContainerStates)),
		Trust:            make(map[string]int),
		TurnCount:        0,
		Status:           StatusPlaying,
	}
	for name, v := range world.Start.Flags {
		s.Flags[name] = v
	}
	for id, st := range world.Start.ContainerStates {
		s.ContainerStates[id] = st
	}
	s.VisitedLocations[world.Start.Location] = true
	return s
}

// Holds reports whether the item is currently in the inventory.
func (s *SessionState) Holds(itemID string) bool {
	for _, id := range s.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// AddToInventory appends the item, preserving order and rejecting
// duplicates silently.
func (s *SessionState) AddToInventory(itemID string) {
	if s.Holds(itemID) {
		return
	}
	s.Inventory = append(s.Inventory, itemID)
}

// FlagSet reports whether the named flag is true.
func (s *SessionState) FlagSet(name string) bool {
	return s.Flags[name]
}

// SetFlag raises or lowers a flag.
func (s *SessionState) SetFlag(name string, value bool) {
	if s.Flags == nil {
		s.Flags = make(map[string]bool)
	}
	s.Flags[name] = value
}

// Visited reports whether the location has been successfully visited.
func (s *SessionState) Visited(locationID string) bool {
	return s.VisitedLocations[locationID]
}

// MarkVisited commits a location to the visited set. Idempotent.
func (s *SessionState) MarkVisited(locationID string) {
	if s.VisitedLocations == nil {
		s.VisitedLocations = make(map[string]bool)
	}
	s.VisitedLocations[locationID] = true
}

// AppendNarration pushes a narrated turn onto the bounded history,
// newest last, dropping the oldest entry past the cap.
func (s *SessionState) AppendNarration(text string) {
	s.NarrationHistory = append(s.NarrationHistory, text)
	if len(s.NarrationHistory) > NarrationHistoryCap {
		s.NarrationHistory = s.NarrationHistory[len(s.NarrationHistory)-NarrationHistoryCap:]
	}
}

// VictoryMet evaluates the world's victory condition against this state.
// A nil condition never triggers; all present components must hold.
func (s *SessionState) VictoryMet(v *VictoryCondition) bool {
	if v == nil {
		return false
	}
	if v.Location == "" && v.Flag == "" && v.Item == "" {
		return false
	}
	if v.Location != "" && s.CurrentLocation != v.Location {
		return false
	}
	if v.Flag != "" && !s.FlagSet(v.Flag) {
		return false
	}
	if v.Item != "" && !s.Holds(v.Item) {
		return false
	}
	return true
}
