package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"adventure-server/internal/models"
)

const resolverRole = "resolver"

const resolverSystemPrompt = `You classify a player's free-form command in a text adventure into a single intent.

Reply with ONLY a JSON object, no prose and no markdown fences. Two shapes are allowed.

For a mechanical action:
{"type":"action","action_type":"<move|examine|take|drop|open|talk|use|browse>","target_id":"<entity id from the scene>","instrument_id":"","topic_id":"","confidence":0.0-1.0}

For roleplay with no mechanical effect (shouting, dancing, kicking a wall):
{"type":"flavor","verb":"<verb>","action_hint":"<closest action type or empty>","target":"<free text target>","target_id":"<entity id if one matches, else empty>","topic":"","manner":"<adverbial manner or empty>"}

Rules:
- target_id must be an id taken verbatim from the scene data, or empty.
- For movement, target_id is the destination id of one of the visible exits.
- When the command is an action on something not present in the scene, still emit the action intent with your best target_id guess from the scene, or empty.
- Never invent ids.`

type resolverScene struct {
	RawInput string                    `json:"raw_input"`
	Scene    models.PerceptionSnapshot `json:"scene"`
}

type resolverReply struct {
	Type       string  `json:"type"`
	ActionType string  `json:"action_type"`
	TargetID   string  `json:"target_id"`
	Instrument string  `json:"instrument_id"`
	TopicID    string  `json:"topic_id"`
	Confidence float64 `json:"confidence"`

	Verb       string `json:"verb"`
	ActionHint string `json:"action_hint"`
	Target     string `json:"target"`
	Topic      string `json:"topic"`
	Manner     string `json:"manner"`
}

// Resolver is the LLM fallback behind the rule-based parser. It sees only
// what the player can currently perceive, so it cannot leak hidden content
// into an intent.
type Resolver struct {
	client Client
	logger *zap.Logger
}

func NewResolver(client Client, logger *zap.Logger) *Resolver {
	return &Resolver{client: client, logger: logger.Named("IntentResolver")}
}

func (r *Resolver) Resolve(ctx context.Context, rawInput string, snap models.PerceptionSnapshot) (models.Intent, error) {
	payload, err := json.Marshal(resolverScene{RawInput: rawInput, Scene: snap})
	if err != nil {
		return nil, fmt.Errorf("encoding resolver payload: %w", err)
	}

	text, _, err := r.client.GenerateText(ctx, resolverRole, resolverSystemPrompt, string(payload))
	if err != nil {
		return nil, err
	}

	var reply resolverReply
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &reply); err != nil {
		r.logger.Warn("Resolver returned malformed JSON", zap.String("reply", text), zap.Error(err))
		return nil, fmt.Errorf("decoding resolver reply: %w", err)
	}

	switch reply.Type {
	case "action":
		actionType := models.ActionType(reply.ActionType)
		if _, known := models.KnownActionTypes[actionType]; !known {
			r.logger.Warn("Resolver returned unknown action type", zap.String("actionType", reply.ActionType))
			return nil, fmt.Errorf("resolver returned unknown action type %q", reply.ActionType)
		}
		return &models.ActionIntent{
			ActionType:   actionType,
			TargetID:     reply.TargetID,
			InstrumentID: reply.Instrument,
			TopicID:      reply.TopicID,
			Confidence:   reply.Confidence,
		}, nil
	case "flavor":
		return &models.FlavorIntent{
			Verb:       reply.Verb,
			ActionHint: reply.ActionHint,
			Target:     reply.Target,
			TargetID:   reply.TargetID,
			Topic:      reply.Topic,
			Manner:     reply.Manner,
		}, nil
	default:
		return nil, fmt.Errorf("resolver returned unknown intent type %q", reply.Type)
	}
}

// stripJSONFences tolerates models that wrap JSON in markdown fences
// despite instructions.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
