package modifiers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/gempswccg/swccg-server/internal/game/filter"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

type fixture struct {
	gs     *state.GameState
	shield *state.Card
	monnok *state.Card
}

func newFixture(t require.TestingT) fixture {
	gs := state.New("m", rules.NewTurnManager("p1"), state.NewPlayer("p1", 0), state.NewPlayer("p2", 0))
	shield, err := gs.AddCard("shield", &state.Definition{Title: "Thrown Back (V)"}, "p1", state.Table)
	require.NoError(t, err)
	monnok, err := gs.AddCard("monnok", &state.Definition{Title: "Monnok"}, "p2", state.HandOf("p2"))
	require.NoError(t, err)
	_, err = gs.AddCard("guard", &state.Definition{Title: "Plain"}, "p1", state.HandOf("p1"))
	require.NoError(t, err)
	return fixture{gs: gs, shield: shield, monnok: monnok}
}

func TestIntFoldsActiveModifiers(t *testing.T) {
	f := newFixture(t)
	reg := modifiers.NewRegistry(zaptest.NewLogger(t))

	reg.Register(modifiers.NewNumeric("shield", modifiers.ParamExtraCardsRemoved, 2, filter.Title("Monnok"), nil))
	reg.Register(modifiers.NewNumeric("", modifiers.ParamExtraCardsRemoved, 1, nil, nil))

	assert.Equal(t, 3, reg.Int(f.gs, modifiers.ParamExtraCardsRemoved, f.monnok, 0))
	assert.Equal(t, 1, reg.Int(f.gs, modifiers.ParamExtraCardsRemoved, f.shield, 0), "scoped modifier skips other subjects")
	assert.Equal(t, 1, reg.Int(f.gs, modifiers.ParamExtraCardsRemoved, nil, 0), "nil subject only sees unscoped modifiers")
	assert.Equal(t, 5, reg.Int(f.gs, modifiers.ParamForceCost, f.monnok, 5), "other params untouched")
}

func TestModifierInertWhenSourceLeavesPlay(t *testing.T) {
	f := newFixture(t)
	reg := modifiers.NewRegistry(nil)
	reg.Register(modifiers.NewGameText("shield", modifiers.RewriteRemoveTwoMoreCards, filter.Title("Monnok"), nil))

	assert.True(t, reg.HasRewrite(f.gs, f.monnok, modifiers.RewriteRemoveTwoMoreCards))

	_, err := f.gs.MoveCard("shield", state.Table, state.LostPileOf("p1"), state.PositionTop)
	require.NoError(t, err)
	assert.False(t, reg.HasRewrite(f.gs, f.monnok, modifiers.RewriteRemoveTwoMoreCards))
	assert.Equal(t, 1, reg.Len(), "inert modifiers are not destroyed")
}

func TestConditionReevaluatedOnEveryQuery(t *testing.T) {
	f := newFixture(t)
	reg := modifiers.NewRegistry(nil)

	hasStacked := func(gs *state.GameState) bool { return gs.ZoneSize(state.StackedOn("shield")) > 0 }
	reg.Register(modifiers.NewGameText("shield", modifiers.RewriteRemoveTwoMoreCards, filter.Title("Monnok"), hasStacked))

	assert.False(t, reg.HasRewrite(f.gs, f.monnok, modifiers.RewriteRemoveTwoMoreCards))

	_, err := f.gs.Attach("guard", "shield", true)
	require.NoError(t, err)
	assert.True(t, reg.HasRewrite(f.gs, f.monnok, modifiers.RewriteRemoveTwoMoreCards))

	_, err = f.gs.Detach("guard", state.HandOf("p1"), state.PositionBottom)
	require.NoError(t, err)
	assert.False(t, reg.HasRewrite(f.gs, f.monnok, modifiers.RewriteRemoveTwoMoreCards),
		"a modifier whose condition went false is excluded from the next fold")
}

func TestFlagFoldOrder(t *testing.T) {
	f := newFixture(t)
	reg := modifiers.NewRegistry(nil)

	// Registered together: specificity orders the batch, so the more specific override decides.
	reg.Register(
		modifiers.Modifier{SourceID: "shield", Kind: modifiers.KindFlag, Param: modifiers.ParamHandVisible, Flag: false, Specificity: 2},
		modifiers.Modifier{SourceID: "shield", Kind: modifiers.KindFlag, Param: modifiers.ParamHandVisible, Flag: true, Specificity: 1},
	)
	assert.False(t, reg.Flag(f.gs, modifiers.ParamHandVisible, f.monnok, false))

	// A later registration folds after the earlier batch regardless of specificity.
	reg.Register(modifiers.Modifier{Kind: modifiers.KindFlag, Param: modifiers.ParamHandVisible, Flag: true, Specificity: 0})
	assert.True(t, reg.Flag(f.gs, modifiers.ParamHandVisible, f.monnok, false))

	active := reg.Active(f.gs, modifiers.KindFlag, nil, f.monnok)
	require.Len(t, active, 3)
	assert.True(t, active[0].Seq() < active[2].Seq())
	assert.Equal(t, 1, active[0].Specificity)
	assert.Equal(t, 2, active[1].Specificity)
}

func TestRegisterIsIdempotentPerID(t *testing.T) {
	reg := modifiers.NewRegistry(nil)
	m := modifiers.NewNumeric("", modifiers.ParamForceActivation, 1, nil, nil)
	m.ID = "fixed"
	reg.Register(m)
	reg.Register(m)
	assert.Equal(t, 1, reg.Len())
}

// Toggling a condition between queries is always reflected in the next fold.
func TestFoldTracksConditionChanges(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		reg := modifiers.NewRegistry(nil)
		active := make([]bool, rapid.IntRange(1, 6).Draw(rt, "mods"))
		for i := range active {
			idx := i
			reg.Register(modifiers.NewNumeric("", modifiers.ParamExtraCardsRemoved, 1, nil,
				func(*state.GameState) bool { return active[idx] }))
		}
		for step := 0; step < 20; step++ {
			i := rapid.IntRange(0, len(active)-1).Draw(rt, "toggle")
			active[i] = !active[i]
			want := 0
			for _, on := range active {
				if on {
					want++
				}
			}
			if got := reg.Int(f.gs, modifiers.ParamExtraCardsRemoved, nil, 0); got != want {
				rt.Fatalf("fold %d, want %d", got, want)
			}
		}
	})
}
