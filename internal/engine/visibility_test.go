package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adventure-server/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// testWorld builds a small world exercising every visibility rule:
// a hidden exit gated on a flag, a hidden item gated on a flag, a detail
// that reveals that flag, and an NPC with ordered relocation triggers.
func testWorld() *models.WorldData {
	return &models.WorldData{
		ID:               "crypt",
		Title:            "The Sunken Crypt",
		OpeningNarrative: "Cold air rises from below.",
		Start:            models.StartConfig{Location: "start_room"},
		Locations: map[string]*models.Location{
			"start_room": {
				Name:       "Antechamber",
				Atmosphere: "Dust hangs in the torchlight.",
				Exits: map[string]*models.Exit{
					"north": {
						Destination: "locked_room",
						Visibility: models.VisibilityRule{
							Hidden:        true,
							FindCondition: &models.FindCondition{RequiresFlag: "door_unlocked"},
						},
					},
					"east": {Destination: "gallery", DestinationKnown: true},
				},
				Items: []*models.ItemPlacement{
					{ItemID: "lantern"},
					{ItemID: "hidden_gem", Visibility: models.VisibilityRule{
						Hidden:        true,
						FindCondition: &models.FindCondition{RequiresFlag: "box_opened"},
					}},
					{ItemID: "statue"},
					{ItemID: "cursed_idol", Visibility: models.VisibilityRule{Hidden: true}},
				},
				Details: []*models.Detail{
					{ID: "dusty_box", Name: "dusty box", Description: "A box under the bench.", RevealsFlag: "box_opened"},
					{ID: "faint_scratches", Name: "faint scratches", Description: "Claw marks.", Visibility: models.VisibilityRule{
						Hidden:        true,
						FindCondition: &models.FindCondition{RequiresFlag: "lantern_lit"},
					}},
				},
				NPCs: []*models.NPCPlacement{{NPCID: "warden"}},
				Interactions: []*models.Interaction{
					{Verb: "pray", Response: "The silence feels almost attentive."},
				},
			},
			"locked_room": {Name: "Sealed Vault"},
			"gallery": {
				Name: "Long Gallery",
				Exits: map[string]*models.Exit{
					"west": {Destination: "start_room", DestinationKnown: true},
				},
			},
		},
		Items: map[string]*models.Item{
			"lantern":     {Name: "brass lantern", Portable: true, Description: "A dented brass lantern."},
			"hidden_gem":  {Name: "green gem", Portable: true, Description: "It glows faintly."},
			"statue":      {Name: "stone statue", Portable: false, Description: "Far too heavy."},
			"cursed_idol": {Name: "cursed idol", Portable: true},
		},
		NPCs: map[string]*models.NPC{
			"warden": {
				Name:         "the warden",
				Description:  "An old man with a ring of keys.",
				BaseLocation: "start_room",
				LocationChanges: []*models.LocationChange{
					{Flag: "alarm_raised", MoveTo: strPtr("gallery")},
					{Flag: "warden_bribed", MoveTo: strPtr("locked_room")},
				},
			},
		},
		Victory: &models.VictoryCondition{
			Location:  "locked_room",
			Item:      "hidden_gem",
			Narrative: "The vault accepts its due.",
		},
	}
}

func newTestState(world *models.WorldData) *models.SessionState {
	return models.NewSessionState(world)
}

func TestAnalyzeVisibility(t *testing.T) {
	world := testWorld()
	state := newTestState(world)

	t.Run("plain placement is visible", func(t *testing.T) {
		visible, reason := AnalyzeVisibility(models.VisibilityRule{}, "lantern", state)
		assert.True(t, visible)
		assert.Equal(t, ReasonVisible, reason)
	})

	t.Run("inventory overrides placement", func(t *testing.T) {
		state := newTestState(world)
		state.AddToInventory("lantern")
		visible, reason := AnalyzeVisibility(models.VisibilityRule{}, "lantern", state)
		assert.False(t, visible)
		assert.Equal(t, ReasonTaken, reason)
	})

	t.Run("hidden with no condition is never visible", func(t *testing.T) {
		visible, reason := AnalyzeVisibility(models.VisibilityRule{Hidden: true}, "cursed_idol", state)
		assert.False(t, visible)
		assert.Equal(t, ReasonHidden, reason)
	})

	t.Run("flag toggling flips visibility both ways", func(t *testing.T) {
		state := newTestState(world)
		rule := models.VisibilityRule{
			Hidden:        true,
			FindCondition: &models.FindCondition{RequiresFlag: "box_opened"},
		}

		visible, reason := AnalyzeVisibility(rule, "hidden_gem", state)
		assert.False(t, visible)
		assert.Equal(t, "condition_not_met:box_opened", reason)
		assert.False(t, IsItemVisible("hidden_gem", state, world))

		state.SetFlag("box_opened", true)
		visible, reason = AnalyzeVisibility(rule, "hidden_gem", state)
		assert.True(t, visible)
		assert.Equal(t, ReasonRevealed, reason)
		assert.True(t, IsItemVisible("hidden_gem", state, world))

		state.SetFlag("box_opened", false)
		visible, _ = AnalyzeVisibility(rule, "hidden_gem", state)
		assert.False(t, visible)
		assert.False(t, IsItemVisible("hidden_gem", state, world))
	})
}

func TestResolveNPCLocation(t *testing.T) {
	world := testWorld()

	t.Run("base location when no flags set", func(t *testing.T) {
		state := newTestState(world)
		loc, removed := ResolveNPCLocation(world.NPCs["warden"], state)
		assert.Equal(t, "start_room", loc)
		assert.False(t, removed)
	})

	t.Run("last trigger wins when several flags are true", func(t *testing.T) {
		state := newTestState(world)
		state.SetFlag("alarm_raised", true)
		state.SetFlag("warden_bribed", true)
		loc, removed := ResolveNPCLocation(world.NPCs["warden"], state)
		assert.Equal(t, "locked_room", loc)
		assert.False(t, removed)
	})

	t.Run("nil move_to removes the NPC", func(t *testing.T) {
		npc := &models.NPC{
			Name:         "ghost",
			BaseLocation: "start_room",
			LocationChanges: []*models.LocationChange{
				{Flag: "ghost_banished", MoveTo: nil},
			},
		}
		state := newTestState(world)
		state.SetFlag("ghost_banished", true)
		loc, removed := ResolveNPCLocation(npc, state)
		assert.True(t, removed)
		assert.Empty(t, loc)
	})

	t.Run("later trigger can override removal", func(t *testing.T) {
		npc := &models.NPC{
			Name:         "ghost",
			BaseLocation: "start_room",
			LocationChanges: []*models.LocationChange{
				{Flag: "ghost_banished", MoveTo: nil},
				{Flag: "ghost_summoned", MoveTo: strPtr("gallery")},
			},
		}
		state := newTestState(world)
		state.SetFlag("ghost_banished", true)
		state.SetFlag("ghost_summoned", true)
		loc, removed := ResolveNPCLocation(npc, state)
		assert.False(t, removed)
		assert.Equal(t, "gallery", loc)
	})
}

func TestNPCAppearsWhen(t *testing.T) {
	world := testWorld()
	world.NPCs["warden"].AppearsWhen = []*models.AppearsWhen{
		{HasFlag: "met_warden"},
		{TrustAbove: intPtr(2)},
	}
	state := newTestState(world)

	snap := BuildSnapshot(state, world)
	assert.Empty(t, snap.VisibleNPCs, "conditions unmet")

	state.SetFlag("met_warden", true)
	snap = BuildSnapshot(state, world)
	assert.Empty(t, snap.VisibleNPCs, "trust still too low")

	state.Trust["warden"] = 3
	snap = BuildSnapshot(state, world)
	require.Len(t, snap.VisibleNPCs, 1)
	assert.Equal(t, "warden", snap.VisibleNPCs[0].ID)
}

func TestBuildSnapshot(t *testing.T) {
	world := testWorld()

	t.Run("is a pure function of state and world", func(t *testing.T) {
		state := newTestState(world)
		first := BuildSnapshot(state, world)
		second := BuildSnapshot(state, world)
		assert.Equal(t, first, second)
	})

	t.Run("hidden entities excluded until revealed", func(t *testing.T) {
		state := newTestState(world)
		snap := BuildSnapshot(state, world)

		ids := entityIDs(snap.VisibleItems)
		assert.Contains(t, ids, "lantern")
		assert.Contains(t, ids, "statue")
		assert.NotContains(t, ids, "hidden_gem")
		assert.NotContains(t, ids, "cursed_idol")

		require.Len(t, snap.VisibleExits, 1)
		assert.Equal(t, "east", snap.VisibleExits[0].Direction)

		state.SetFlag("box_opened", true)
		state.SetFlag("door_unlocked", true)
		snap = BuildSnapshot(state, world)
		assert.Contains(t, entityIDs(snap.VisibleItems), "hidden_gem")
		assert.Len(t, snap.VisibleExits, 2)
	})

	t.Run("unknown destinations are not leaked", func(t *testing.T) {
		state := newTestState(world)
		state.SetFlag("door_unlocked", true)
		snap := BuildSnapshot(state, world)
		for _, exit := range snap.VisibleExits {
			if exit.Direction == "north" {
				assert.False(t, exit.DestinationKnown)
				assert.Empty(t, exit.Destination)
			}
		}
	})

	t.Run("first visit is computed, never cached", func(t *testing.T) {
		state := newTestState(world)
		assert.False(t, BuildSnapshot(state, world).FirstVisit, "start location is visited at session start")

		state.CurrentLocation = "gallery"
		assert.True(t, BuildSnapshot(state, world).FirstVisit)
		state.MarkVisited("gallery")
		assert.False(t, BuildSnapshot(state, world).FirstVisit)
	})

	t.Run("inventory is reflected and taken items drop out", func(t *testing.T) {
		state := newTestState(world)
		state.AddToInventory("lantern")
		snap := BuildSnapshot(state, world)
		assert.NotContains(t, entityIDs(snap.VisibleItems), "lantern")
		require.Len(t, snap.Inventory, 1)
		assert.Equal(t, "brass lantern", snap.Inventory[0].Name)
	})
}

func entityIDs(entities []models.SnapshotEntity) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	return ids
}
