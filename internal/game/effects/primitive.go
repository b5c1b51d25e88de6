// Package effects implements the effect primitives: the only steps an action
// may take to change game state. Each primitive either applies completely or
// fails without mutating anything.
package effects

import (
	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/random"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// Primitive is one atomic state mutation.
type Primitive interface {
	// Name identifies the primitive in logs and partial failure reports.
	Name() string
	// Check reports whether the primitive can apply right now, without mutating.
	Check(env *Env) error
	// Request returns the decision the primitive needs before it can apply,
	// or nil when it needs none.
	Request(env *Env) *choice.Request
	// Apply performs the mutation and returns the resulting entries.
	Apply(env *Env, sel choice.Selection) ([]rules.Event, error)
}

// Interceptable is implemented by primitives that announce themselves with
// an about-to entry, opening a before window for responses.
type Interceptable interface {
	AboutTo(env *Env) rules.Event
}

// Env is what a primitive may read and mutate while applying.
type Env struct {
	State     *state.GameState
	Modifiers *modifiers.Registry
	Random    random.Source
	Logger    *zap.Logger

	ActionID string
	SourceID string // Card whose ability is resolving
	PlayerID string // Player performing the action
}

// Source returns the card whose ability is resolving.
func (e *Env) Source() *state.Card {
	if e.SourceID == "" {
		return nil
	}
	card, _ := e.State.Card(e.SourceID)
	return card
}

// WithState returns a copy of the environment bound to another state. Cost
// payment runs against a clone and commits only on success.
func (e *Env) WithState(gs *state.GameState) *Env {
	clone := *e
	clone.State = gs
	return &clone
}

func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// noModifiers answers every query with its base value. Nothing registers into it.
var noModifiers = modifiers.NewRegistry(nil)

func (e *Env) modifiers() *modifiers.Registry {
	if e.Modifiers == nil {
		return noModifiers
	}
	return e.Modifiers
}

// stamp attributes entries to the resolving action.
func (e *Env) stamp(events ...rules.Event) []rules.Event {
	for i := range events {
		events[i].ActionID = e.ActionID
		if events[i].SourceID == "" {
			events[i].SourceID = e.SourceID
		}
		if events[i].PlayerID == "" {
			events[i].PlayerID = e.PlayerID
		}
	}
	return events
}

func (e *Env) request(kind choice.Kind, prompt string, options []choice.Option, min, max int) *choice.Request {
	return &choice.Request{
		ID:       e.ActionID + "/" + string(kind),
		PlayerID: e.PlayerID,
		Kind:     kind,
		Prompt:   prompt,
		Options:  options,
		Min:      min,
		Max:      max,
	}
}

func cardOptions(cards []*state.Card) []choice.Option {
	opts := make([]choice.Option, 0, len(cards))
	for _, c := range cards {
		opts = append(opts, choice.Option{ID: c.ID, Label: c.Title()})
	}
	return opts
}
