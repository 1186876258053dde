package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"adventure-server/internal/models"
)

const narratorRole = "narrator"

const narratorSystemPrompt = `You narrate one turn of a text adventure in second person, present tense.

You receive the confirmed events of the turn, the scene as the player currently perceives it, and the last few narrations for tone continuity.

Rules:
- Describe ONLY what the events state and what the scene contains. Never mention entities, exits or outcomes that are not in the scene data.
- An exit whose destination is not given leads somewhere unknown; you may evoke the unknown but must never name or guess the place beyond it.
- A rejected action is narrated as an in-world failure, using its reason and hint. Do not break character or mention game mechanics.
- When an event carries an authored_response, weave that text in faithfully.
- 2 to 4 sentences. No headings, no lists, no quotation of the player's command.`

type narratorPayload struct {
	Events          []models.Event            `json:"events"`
	Scene           models.PerceptionSnapshot `json:"scene"`
	RecentNarration []string                  `json:"recent_narration,omitempty"`
}

// LLMNarrator renders confirmed turn events into prose. It is consulted
// strictly after state is committed; its failures never affect mechanics.
type LLMNarrator struct {
	client Client
	logger *zap.Logger
}

func NewNarrator(client Client, logger *zap.Logger) *LLMNarrator {
	return &LLMNarrator{client: client, logger: logger.Named("Narrator")}
}

func (n *LLMNarrator) Narrate(ctx context.Context, events []models.Event, snap models.PerceptionSnapshot, history []string) (string, error) {
	payload, err := json.Marshal(narratorPayload{
		Events:          events,
		Scene:           snap,
		RecentNarration: history,
	})
	if err != nil {
		return "", fmt.Errorf("encoding narrator payload: %w", err)
	}

	text, _, err := n.client.GenerateText(ctx, narratorRole, narratorSystemPrompt, string(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrNarrationFailed, err)
	}

	narrative := strings.TrimSpace(text)
	if narrative == "" {
		return "", fmt.Errorf("%w: empty narration", models.ErrNarrationFailed)
	}
	n.logger.Debug("Turn narrated",
		zap.Int("events", len(events)),
		zap.Int("length", len(narrative)),
	)
	return narrative, nil
}
