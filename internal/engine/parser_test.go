package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adventure-server/internal/models"
)

func TestParse(t *testing.T) {
	world := testWorld()
	state := newTestState(world)

	t.Run("bare direction maps to move", func(t *testing.T) {
		intent := Parse("east", state, world)
		require.NotNil(t, intent)
		assert.Equal(t, models.ActionMove, intent.ActionType)
		assert.Equal(t, "gallery", intent.TargetID)
	})

	t.Run("go direction form", func(t *testing.T) {
		for _, input := range []string{"go east", "walk east", "head east"} {
			intent := Parse(input, state, world)
			require.NotNil(t, intent, input)
			assert.Equal(t, "gallery", intent.TargetID, input)
		}
	})

	t.Run("abbreviations expand", func(t *testing.T) {
		intent := Parse("e", state, world)
		require.NotNil(t, intent)
		assert.Equal(t, "gallery", intent.TargetID)
	})

	t.Run("case and whitespace are normalized", func(t *testing.T) {
		intent := Parse("  Go   EAST  ", state, world)
		require.NotNil(t, intent)
		assert.Equal(t, "gallery", intent.TargetID)
	})

	t.Run("hidden exit still parses, rejection is the handler's job", func(t *testing.T) {
		intent := Parse("north", state, world)
		require.NotNil(t, intent)
		assert.Equal(t, models.ActionMove, intent.ActionType)
		assert.Equal(t, "locked_room", intent.TargetID)
	})

	t.Run("direction with no such exit declines", func(t *testing.T) {
		assert.Nil(t, Parse("south", state, world))
	})

	t.Run("look around maps to browse", func(t *testing.T) {
		for _, input := range []string{"look", "l", "look around", "LOOK AROUND"} {
			intent := Parse(input, state, world)
			require.NotNil(t, intent, input)
			assert.Equal(t, models.ActionBrowse, intent.ActionType, input)
		}
	})

	t.Run("everything else declines to the resolver", func(t *testing.T) {
		for _, input := range []string{"", "   ", "take lantern", "examine box", "sing loudly", "look at box"} {
			assert.Nil(t, Parse(input, state, world), input)
		}
	})
}
