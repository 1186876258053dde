package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"adventure-server/internal/models"
)

// IntentResolver classifies raw input the rule-based parser declined. It is
// LLM-backed and must return exactly one of the two intent variants.
type IntentResolver interface {
	Resolve(ctx context.Context, rawInput string, snap models.PerceptionSnapshot) (models.Intent, error)
}

// Narrator turns confirmed events plus a perception snapshot into prose.
// It must not invent entities absent from the snapshot and must never name
// a destination whose exit has destination_known=false.
type Narrator interface {
	Narrate(ctx context.Context, events []models.Event, snap models.PerceptionSnapshot, history []string) (string, error)
}

// Fixed out-of-band responses. These are mechanics-layer text, not
// narration: the narrator is never consulted for them.
const (
	GameEndedMessage   = "This game has ended. Start a new session to play again."
	UnsupportedMessage = "You can't do that yet. Try moving, looking around, examining or taking things."

	// Used when the narrator fails after state was already committed; the
	// mechanics stand, only the prose is lost.
	fallbackNarrative = "The moment passes, though words fail to capture it."
)

// TurnOutcome is the processor's result for a single call.
type TurnOutcome struct {
	Narrative       string
	Events          []models.Event
	Snapshot        models.PerceptionSnapshot
	TurnConsumed    bool
	Unsupported     bool
	GameComplete    bool
	EndingNarrative string
}

// Processor drives the per-turn state machine: parse, route, validate,
// execute, narrate, count. The only suspension points are the two external
// LLM calls (resolve and narrate); between them every read and mutation is
// synchronous and local, so a single turn has no internal race window.
type Processor struct {
	registry *Registry
	flavor   *FlavorHandler
	resolver IntentResolver
	narrator Narrator
	logger   *zap.Logger
}

// NewProcessor wires the default handler registry to the external
// collaborators.
func NewProcessor(resolver IntentResolver, narrator Narrator, logger *zap.Logger) *Processor {
	return &Processor{
		registry: NewRegistry(),
		flavor:   &FlavorHandler{},
		resolver: resolver,
		narrator: narrator,
		logger:   logger.Named("Processor"),
	}
}

// ProcessTurn runs one turn against the given session state. State is
// mutated in place only on the success path, and only through the matched
// handler's Execute. A resolver failure leaves the state untouched; a
// narrator failure after Execute keeps the committed state and falls back
// to a generic narrative.
func (p *Processor) ProcessTurn(ctx context.Context, state *models.SessionState, world *models.WorldData, rawInput string) (*TurnOutcome, error) {
	if state.Status != models.StatusPlaying {
		return &TurnOutcome{
			Narrative:    GameEndedMessage,
			GameComplete: true,
		}, nil
	}

	intent, err := p.classify(ctx, state, world, rawInput)
	if err != nil {
		return nil, err
	}

	switch v := intent.(type) {
	case *models.FlavorIntent:
		return p.processFlavor(ctx, state, world, v)
	case *models.ActionIntent:
		return p.processAction(ctx, state, world, v)
	default:
		return nil, fmt.Errorf("%w: resolver returned unknown intent variant %T", models.ErrResolveFailed, intent)
	}
}

// classify tries the deterministic parser first and falls back to the
// external resolver, which needs a fresh snapshot to know what is
// currently nameable.
func (p *Processor) classify(ctx context.Context, state *models.SessionState, world *models.WorldData, rawInput string) (models.Intent, error) {
	if intent := Parse(rawInput, state, world); intent != nil {
		return intent, nil
	}
	snap := BuildSnapshot(state, world)
	intent, err := p.resolver.Resolve(ctx, rawInput, snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrResolveFailed, err)
	}
	if intent == nil {
		return nil, fmt.Errorf("%w: resolver returned no intent", models.ErrResolveFailed)
	}
	return intent, nil
}

func (p *Processor) processAction(ctx context.Context, state *models.SessionState, world *models.WorldData, intent *models.ActionIntent) (*TurnOutcome, error) {
	handler, ok := p.registry.Lookup(intent.ActionType)
	if !ok {
		// Recognized but unhandled: fixed response, no turn consumed, no
		// narrator call.
		p.logger.Debug("Unsupported action type",
			zap.String("sessionID", state.SessionID.String()),
			zap.String("actionType", string(intent.ActionType)),
		)
		return &TurnOutcome{
			Narrative:   UnsupportedMessage,
			Unsupported: true,
			Snapshot:    BuildSnapshot(state, world),
		}, nil
	}

	result := handler.Validate(intent, state, world)
	if !result.Valid {
		// Rejections narrate from the current, unmoved location.
		snap := BuildSnapshot(state, world)
		event := handler.CreateEvent(intent, result, state, world, snap)
		return p.finishTurn(ctx, state, snap, []models.Event{event}, "")
	}

	handler.Execute(intent, result, state)

	snap := BuildSnapshot(state, world)
	events := []models.Event{handler.CreateEvent(intent, result, state, world, snap)}

	var ending string
	if handler.ChecksVictory() && state.VictoryMet(world.Victory) {
		state.Status = models.StatusWon
		ending = world.Victory.Narrative
		won := models.NewEvent(models.EventGameWon, state.CurrentLocation)
		won.Context["narrative"] = ending
		events = append(events, won)
		p.logger.Info("Victory condition met",
			zap.String("sessionID", state.SessionID.String()),
			zap.Int("turn", state.TurnCount),
		)
	}

	return p.finishTurn(ctx, state, snap, events, ending)
}

func (p *Processor) processFlavor(ctx context.Context, state *models.SessionState, world *models.WorldData, intent *models.FlavorIntent) (*TurnOutcome, error) {
	snap := BuildSnapshot(state, world)
	event := p.flavor.CreateEvent(intent, state, world)
	return p.finishTurn(ctx, state, snap, []models.Event{event}, "")
}

// finishTurn narrates the turn's events, commits the narration history and
// turn counter, and assembles the outcome. A failed attempt still consumes
// a turn, so this path is shared by rejections and successes.
func (p *Processor) finishTurn(ctx context.Context, state *models.SessionState, snap models.PerceptionSnapshot, events []models.Event, ending string) (*TurnOutcome, error) {
	narrative, err := p.narrator.Narrate(ctx, events, snap, state.NarrationHistory)
	if err != nil {
		// State is already committed; narration is advisory over it.
		p.logger.Error("Narrator failed, using fallback narrative",
			zap.String("sessionID", state.SessionID.String()),
			zap.Error(err),
		)
		narrative = fallbackNarrative
	}
	if ending != "" {
		narrative = narrative + "\n\n" + ending
	}

	state.AppendNarration(narrative)
	state.TurnCount++

	p.logger.Info("Turn processed",
		zap.String("sessionID", state.SessionID.String()),
		zap.Int("turn", state.TurnCount),
		zap.String("status", string(state.Status)),
		zap.Int("events", len(events)),
	)

	return &TurnOutcome{
		Narrative:       narrative,
		Events:          events,
		Snapshot:        snap,
		TurnConsumed:    true,
		GameComplete:    state.Status != models.StatusPlaying,
		EndingNarrative: ending,
	}, nil
}
