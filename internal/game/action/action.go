// Package action assembles abilities into actions. Cards contribute data
// descriptors (activated abilities, triggers and statics); the resolver turns
// them into Actions and runs their cost and effect phases.
package action

import (
	"github.com/gempswccg/swccg-server/internal/game/effects"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// Action is a transient unit of work: costs, then effects, then any
// continuation other abilities chained onto it.
type Action struct {
	ID         string
	Kind       rules.ActionKind
	SourceID   string
	Controller string
	Text       string
	TriggerID  string // Trigger that produced the action, if any
	AnchorSeq  int64  // Entry the trigger responded to

	Costs   []effects.Primitive
	Effects []effects.Primitive
	After   []effects.Primitive
}

// New starts an action for the source card and controller.
func New(sourceID, controller, text string) *Action {
	return &Action{SourceID: sourceID, Controller: controller, Text: text}
}

// Cost appends cost primitives.
func (a *Action) Cost(p ...effects.Primitive) *Action {
	a.Costs = append(a.Costs, p...)
	return a
}

// Effect appends effect primitives.
func (a *Action) Effect(p ...effects.Primitive) *Action {
	a.Effects = append(a.Effects, p...)
	return a
}

// AppendAfter chains primitives to run once the effect phase is over.
func (a *Action) AppendAfter(p ...effects.Primitive) *Action {
	a.After = append(a.After, p...)
	return a
}

// Context is what descriptor conditions and builders may read.
type Context struct {
	State      *state.GameState
	Modifiers  *modifiers.Registry
	Log        *rules.EventLog
	Source     *state.Card // nil for built-in rules
	Controller string
}

// SourceID returns the source card ID, or "" for built-in rules.
func (c *Context) SourceID() string {
	if c.Source == nil {
		return ""
	}
	return c.Source.ID
}

// Opponent returns the controller's opponent.
func (c *Context) Opponent() string {
	return c.State.Opponent(c.Controller)
}
