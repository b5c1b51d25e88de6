package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gempswccg/swccg-server/internal/game/effects"
	"github.com/gempswccg/swccg-server/internal/game/filter"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

func newContext(t *testing.T) *Context {
	t.Helper()
	gs := state.New("m", rules.NewTurnManager("p1"), state.NewPlayer("p1", 3), state.NewPlayer("p2", 0))
	_, err := gs.AddCard("shield", &state.Definition{Title: "Thrown Back (V)"}, "p1", state.Table)
	require.NoError(t, err)
	_, err = gs.AddCard("monnok", &state.Definition{Title: "Monnok"}, "p2", state.Table)
	require.NoError(t, err)
	for _, id := range []string{"h1", "h2", "h3"} {
		_, err = gs.AddCard(id, &state.Definition{Title: id}, "p1", state.HandOf("p1"))
		require.NoError(t, err)
	}
	source, _ := gs.Card("shield")
	return &Context{State: gs, Modifiers: modifiers.NewRegistry(nil), Log: rules.NewEventLog(), Source: source, Controller: "p1"}
}

func TestBuilderAppendsInOrder(t *testing.T) {
	a := New("shield", "p1", "Protect two cards").
		Cost(effects.UseForce{PlayerID: "p1", Amount: 1}).
		Effect(effects.StackFromHand{PlayerID: "p1", HostID: "shield", Count: 2}).
		AppendAfter(effects.TakeStackedIntoHand{PlayerID: "p1", HostID: "shield", Count: 2})

	require.Len(t, a.Costs, 1)
	require.Len(t, a.Effects, 1)
	require.Len(t, a.After, 1)
	assert.Equal(t, "StackFromHand", a.Effects[0].Name())
}

func TestIsAboutTo(t *testing.T) {
	ctx := newContext(t)
	monnok := filter.Title("Monnok")

	entry := rules.NewAboutToEvent(rules.EventAboutToRevealHand, "monnok", "p2", "p1")
	assert.True(t, IsAboutTo(ctx, entry, "p1", monnok, rules.EventAboutToRevealHand, rules.EventAboutToPlaceRandomCards))
	assert.False(t, IsAboutTo(ctx, entry, "p2", monnok, rules.EventAboutToRevealHand), "wrong target player")
	assert.False(t, IsAboutTo(ctx, entry, "p1", filter.Title("Drop!"), rules.EventAboutToRevealHand), "source filtered out")
	assert.False(t, IsAboutTo(ctx, entry, "p1", monnok, rules.EventAboutToPlaceRandomCards), "wrong type")

	after := entry
	after.Timing = rules.TimingAfter
	assert.False(t, IsAboutTo(ctx, after, "p1", monnok, rules.EventAboutToRevealHand))
}

func TestTimingHelpers(t *testing.T) {
	endTurn := rules.NewEvent(rules.EventEndOfTurn, "", "", "p1")
	assert.True(t, IsEndOfEachTurn(endTurn))
	assert.True(t, JustHappened(endTurn, rules.EventEndOfTurn))

	endPhase := rules.NewEvent(rules.EventEndOfPhase, "", "", "p1")
	endPhase.Phase = rules.PhaseDeploy
	assert.True(t, IsEndOfPhase(endPhase, rules.PhaseDeploy))
	assert.False(t, IsEndOfPhase(endPhase, rules.PhaseMove))
}

func TestStateConditions(t *testing.T) {
	ctx := newContext(t)
	assert.Equal(t, 3, NumCardsInHand(ctx, "p1"))
	assert.Equal(t, 0, NumCardsInHand(ctx, "p2"))

	assert.True(t, CanUseForce(ctx, "p1", 3))
	assert.False(t, CanUseForce(ctx, "p1", 4))
	assert.False(t, CanUseForce(ctx, "nobody", 0))

	ctx.Modifiers.Register(modifiers.NewNumeric("shield", modifiers.ParamForceCost, -1, nil, nil))
	assert.True(t, CanUseForce(ctx, "p1", 4))

	assert.False(t, HasStacked(ctx.State, "shield", filter.Any))
	_, err := ctx.State.Attach("h1", "shield", true)
	require.NoError(t, err)
	assert.True(t, HasStacked(ctx.State, "shield", filter.Any))
	assert.False(t, HasStacked(ctx.State, "shield", filter.Not(filter.FaceDown)))
}

func TestContextHelpers(t *testing.T) {
	ctx := newContext(t)
	assert.Equal(t, "shield", ctx.SourceID())
	assert.Equal(t, "p2", ctx.Opponent())
	ctx.Source = nil
	assert.Equal(t, "", ctx.SourceID())
}

func TestFiredSet(t *testing.T) {
	fired := NewFiredSet()
	assert.True(t, fired.Mark("shield/remove", 4))
	assert.False(t, fired.Mark("shield/remove", 4), "second firing for the same entry is refused")
	assert.True(t, fired.Mark("shield/remove", 5))
	assert.True(t, fired.Mark("shield/protect", 4))
	assert.True(t, fired.Fired("shield/remove", 4))
	assert.False(t, fired.Fired("shield/protect", 5))
	assert.Equal(t, 3, fired.Len())
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	assert.True(t, q.IsEmpty())

	q.Push(&Action{ID: "a"}, &Action{ID: "b"}, &Action{ID: "c"})
	assert.Equal(t, 3, q.Len())

	removed, ok := q.Remove("b")
	require.True(t, ok)
	assert.Equal(t, "b", removed.ID)
	_, ok = q.Remove("b")
	assert.False(t, ok)

	first, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, "a", first.ID)

	q.Push(&Action{ID: "d", SourceID: "gone"})
	dropped := q.Prune(func(a *Action) bool { return a.SourceID != "gone" })
	assert.Equal(t, []string{"d"}, dropped)
	require.Len(t, q.List(), 1)
	assert.Equal(t, "c", q.List()[0].ID)

	q.PopFront()
	_, ok = q.PopFront()
	assert.False(t, ok)
}

func TestActivatedDefaultsToTable(t *testing.T) {
	assert.Equal(t, state.ZoneTable, Activated{}.Zone())
	assert.Equal(t, state.ZoneHand, Activated{SourceZone: state.ZoneHand}.Zone())
}
