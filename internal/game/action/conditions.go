package action

import (
	"github.com/gempswccg/swccg-server/internal/game/filter"
	"github.com/gempswccg/swccg-server/internal/game/force"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// IsEndOfEachTurn reports whether the entry closes a turn.
func IsEndOfEachTurn(entry rules.Event) bool {
	return entry.Type == rules.EventEndOfTurn
}

// IsEndOfPhase reports whether the entry closes the phase.
func IsEndOfPhase(entry rules.Event, phase rules.Phase) bool {
	return entry.Type == rules.EventEndOfPhase && entry.Phase == phase
}

// JustHappened reports whether the entry is an after-timing entry of the type.
func JustHappened(entry rules.Event, eventType rules.EventType) bool {
	return !entry.IsBefore() && entry.Type == eventType
}

// IsAboutTo reports whether the entry announces one of the event types
// against the target player's cards, from a source the filter accepts.
func IsAboutTo(ctx *Context, entry rules.Event, targetPlayer string, source filter.Filter, types ...rules.EventType) bool {
	if !entry.IsBefore() || entry.TargetPlayerID != targetPlayer {
		return false
	}
	matched := false
	for _, t := range types {
		if entry.Type == t {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	card, ok := ctx.State.Card(entry.SourceID)
	if !ok {
		return false
	}
	return source.Accepts(ctx.State, card)
}

// NumCardsInHand counts a player's hand.
func NumCardsInHand(ctx *Context, player string) int {
	return ctx.State.ZoneSize(state.HandOf(player))
}

// CanUseForce reports whether the player could pay the amount from the
// context's source, after cost modifiers.
func CanUseForce(ctx *Context, player string, amount int) bool {
	p, ok := ctx.State.Player(player)
	if !ok {
		return false
	}
	delta := 0
	if ctx.Modifiers != nil {
		delta = ctx.Modifiers.Int(ctx.State, modifiers.ParamForceCost, ctx.Source, 0)
	}
	return p.Force.CanUse(force.Cost(amount, delta))
}

// HasStacked reports whether any card the filter accepts is stacked on the host.
func HasStacked(gs *state.GameState, hostID string, f filter.Filter) bool {
	return filter.Count(gs, f, gs.StackedOn(hostID)) > 0
}
