package effects

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/filter"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/random"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

var (
	shieldDef = &state.Definition{ID: "thrown-back-v", Title: "Thrown Back (V)", Type: "Defensive Shield"}
	monnokDef = &state.Definition{ID: "monnok", Title: "Monnok", Type: "Interrupt"}
)

// newEnv builds a two player match: p1 controls a shield on the table, p2
// holds handSize cards with distinct titles.
func newEnv(t *testing.T, handSize int) *Env {
	t.Helper()
	gs := state.New("match", rules.NewTurnManager("p1"), state.NewPlayer("p1", 5), state.NewPlayer("p2", 5))
	_, err := gs.AddCard("shield", shieldDef, "p1", state.Table)
	require.NoError(t, err)
	for i := 0; i < handSize; i++ {
		def := &state.Definition{ID: fmt.Sprintf("c%02d", i), Title: fmt.Sprintf("Card %02d", i)}
		_, err := gs.AddCard(fmt.Sprintf("p2-%02d", i), def, "p2", state.HandOf("p2"))
		require.NoError(t, err)
	}
	logger := zaptest.NewLogger(t)
	return &Env{
		State:     gs,
		Modifiers: modifiers.NewRegistry(logger),
		Random:    random.NewSeeded(42),
		Logger:    logger,
		ActionID:  "action-1",
		SourceID:  "shield",
		PlayerID:  "p1",
	}
}

func apply(t *testing.T, env *Env, p Primitive, sel choice.Selection) []rules.Event {
	t.Helper()
	require.NoError(t, p.Check(env))
	events, err := p.Apply(env, sel)
	require.NoError(t, err)
	require.NoError(t, env.State.CheckInvariants())
	return events
}

func TestUseForce(t *testing.T) {
	env := newEnv(t, 0)

	events := apply(t, env, UseForce{PlayerID: "p1", Amount: 2}, choice.Selection{})
	require.Len(t, events, 1)
	assert.Equal(t, rules.EventForceUsed, events[0].Type)
	assert.Equal(t, 2, events[0].Amount)
	assert.Equal(t, "action-1", events[0].ActionID)
	assert.Equal(t, "shield", events[0].SourceID)

	p1, _ := env.State.Player("p1")
	assert.Equal(t, 3, p1.Force.Amount())

	err := UseForce{PlayerID: "p1", Amount: 4}.Check(env)
	assert.True(t, errors.Is(err, rules.ErrUnaffordableCost))
	_, err = UseForce{PlayerID: "p1", Amount: 4}.Apply(env, choice.Selection{})
	assert.True(t, errors.Is(err, rules.ErrUnaffordableCost))
	assert.Equal(t, 3, p1.Force.Amount(), "failed payment leaves the pool untouched")
}

func TestEnvWithoutModifiersUsesBaseValues(t *testing.T) {
	env := newEnv(t, 0)
	env.Modifiers = nil

	apply(t, env, UseForce{PlayerID: "p1", Amount: 2}, choice.Selection{})
	apply(t, env, ActivateForce{PlayerID: "p1", Amount: 1}, choice.Selection{})

	p1, _ := env.State.Player("p1")
	assert.Equal(t, 4, p1.Force.Amount())
	assert.Nil(t, env.Modifiers, "queries must not install a registry on the env")
	assert.Same(t, noModifiers, env.modifiers())
	assert.Zero(t, noModifiers.Len())
}

func TestUseForceHonoursCostModifiers(t *testing.T) {
	env := newEnv(t, 0)
	env.Modifiers.Register(modifiers.NewNumeric("shield", modifiers.ParamForceCost, -1, filter.Is("shield"), nil))

	apply(t, env, UseForce{PlayerID: "p1", Amount: 2}, choice.Selection{})
	p1, _ := env.State.Player("p1")
	assert.Equal(t, 4, p1.Force.Amount())
}

func TestActivateForce(t *testing.T) {
	env := newEnv(t, 0)
	env.Modifiers.Register(modifiers.NewNumeric("shield", modifiers.ParamForceActivation, 1, nil, nil))

	events := apply(t, env, ActivateForce{PlayerID: "p2", Amount: 2}, choice.Selection{})
	assert.Equal(t, 3, events[0].Amount)
	p2, _ := env.State.Player("p2")
	assert.Equal(t, 8, p2.Force.Amount())
}

func TestMoveCardTargetVanished(t *testing.T) {
	env := newEnv(t, 2)

	apply(t, env, MoveCard{CardID: "p2-00", From: state.HandOf("p2"), To: state.UsedPileOf("p2")}, choice.Selection{})

	again := MoveCard{CardID: "p2-00", From: state.HandOf("p2"), To: state.LostPileOf("p2")}
	assert.True(t, errors.Is(again.Check(env), rules.ErrTargetUnavailable))
	_, err := again.Apply(env, choice.Selection{})
	assert.True(t, errors.Is(err, rules.ErrTargetUnavailable))
	assert.Equal(t, 1, env.State.ZoneSize(state.UsedPileOf("p2")))
}

func TestDrawCards(t *testing.T) {
	env := newEnv(t, 0)
	for i := 0; i < 3; i++ {
		_, err := env.State.AddCard(fmt.Sprintf("deck-%d", i), monnokDef, "p2", state.ReserveDeckOf("p2"))
		require.NoError(t, err)
	}

	events := apply(t, env, DrawCards{PlayerID: "p2", Count: 5}, choice.Selection{})
	assert.Len(t, events, 3)
	assert.Equal(t, []string{"deck-0", "deck-1", "deck-2"}, env.State.ZoneIDs(state.HandOf("p2")))

	assert.True(t, errors.Is(DrawCards{PlayerID: "p2", Count: 1}.Check(env), rules.ErrTargetUnavailable))
}

func TestPutRandomCardsKeepsNine(t *testing.T) {
	env := newEnv(t, 16)
	p := PutRandomCardsFromHandOnUsedPile{OwnerID: "p2", Keep: 9}

	about := p.AboutTo(env)
	assert.True(t, about.IsBefore())
	assert.Equal(t, 7, about.Amount)

	events := apply(t, env, p, choice.Selection{})
	assert.Len(t, events, 7)
	assert.Equal(t, 9, env.State.ZoneSize(state.HandOf("p2")))
	assert.Equal(t, 7, env.State.ZoneSize(state.UsedPileOf("p2")))
	for _, evt := range events {
		assert.Equal(t, rules.EventCardMoved, evt.Type)
		assert.Equal(t, state.UsedPileOf("p2").String(), evt.ToZone)
	}
}

func TestPutRandomCardsIsReproducible(t *testing.T) {
	a := newEnv(t, 16)
	b := newEnv(t, 16)
	p := PutRandomCardsFromHandOnUsedPile{OwnerID: "p2", Keep: 9}
	apply(t, a, p, choice.Selection{})
	apply(t, b, p, choice.Selection{})
	assert.Equal(t, a.State.ZoneIDs(state.UsedPileOf("p2")), b.State.ZoneIDs(state.UsedPileOf("p2")))
}

func TestPutRandomCardsSmallHand(t *testing.T) {
	env := newEnv(t, 4)
	events := apply(t, env, PutRandomCardsFromHandOnUsedPile{OwnerID: "p2", Keep: 9}, choice.Selection{})
	assert.Empty(t, events)
	assert.Equal(t, 4, env.State.ZoneSize(state.HandOf("p2")))

	events = apply(t, env, PutRandomCardsFromHandOnUsedPile{OwnerID: "p2", Count: 2}, choice.Selection{})
	assert.Len(t, events, 2)
}

func TestRevealHand(t *testing.T) {
	env := newEnv(t, 3)
	p := RevealHand{OwnerID: "p2", ViewerID: "p1"}

	about := p.AboutTo(env)
	assert.Equal(t, rules.EventAboutToRevealHand, about.Type)
	assert.Equal(t, "p2", about.TargetPlayerID)
	assert.Equal(t, "shield", about.SourceID)

	events := apply(t, env, p, choice.Selection{})
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].Amount)
	assert.Equal(t, "p1", events[0].Meta("viewer"))
	assert.True(t, env.State.RevealedTo("p1", "p2-01"))
	assert.False(t, env.State.RevealedTo("p2", "p2-01"))
}

func TestStackFromHandAndTakeBack(t *testing.T) {
	env := newEnv(t, 5)
	_, err := env.State.AddCard("p2-shield", shieldDef, "p2", state.Table)
	require.NoError(t, err)
	env.PlayerID = "p2"

	stack := StackFromHand{PlayerID: "p2", HostID: "p2-shield", Count: 2, FaceDown: true}
	req := stack.Request(env)
	require.NotNil(t, req)
	assert.Equal(t, "p2", req.PlayerID)
	assert.Len(t, req.Options, 5)
	assert.Equal(t, 2, req.Min)

	_, err = stack.Apply(env, choice.Selection{Chosen: []string{"p2-01"}})
	assert.True(t, errors.Is(err, rules.ErrInvalidSelection))
	assert.Equal(t, 5, env.State.ZoneSize(state.HandOf("p2")))

	events := apply(t, env, stack, choice.Selection{Chosen: []string{"p2-01", "p2-03"}})
	require.Len(t, events, 2)
	assert.Equal(t, rules.EventCardStacked, events[0].Type)
	assert.Equal(t, 3, env.State.ZoneSize(state.HandOf("p2")))
	for _, c := range env.State.StackedOn("p2-shield") {
		assert.True(t, c.FaceDown)
	}

	take := TakeStackedIntoHand{PlayerID: "p2", HostID: "p2-shield", Count: 2}
	assert.Nil(t, take.Request(env), "no choice when exactly Count cards are stacked")
	events = apply(t, env, take, choice.Selection{})
	assert.Len(t, events, 2)
	assert.Equal(t, 5, env.State.ZoneSize(state.HandOf("p2")))
	assert.Empty(t, env.State.StackedOn("p2-shield"))

	assert.True(t, errors.Is(take.Check(env), rules.ErrTargetUnavailable))
}

func TestStackFromHandNeedsEnoughCards(t *testing.T) {
	env := newEnv(t, 1)
	err := StackFromHand{PlayerID: "p2", HostID: "shield", Count: 2}.Check(env)
	assert.True(t, errors.Is(err, rules.ErrTargetUnavailable))
}

func TestPlaceDuplicatesOnUsedPile(t *testing.T) {
	env := newEnv(t, 0)
	for i, title := range []string{"Tatooine", "Hoth", "Tatooine", "Endor", "Tatooine", "Hoth"} {
		def := &state.Definition{ID: title, Title: title}
		_, err := env.State.AddCard(fmt.Sprintf("h%d", i), def, "p2", state.HandOf("p2"))
		require.NoError(t, err)
	}
	_, err := env.State.AddCard("monnok", monnokDef, "p1", state.Table)
	require.NoError(t, err)
	env.SourceID = "monnok"

	events := apply(t, env, PlaceDuplicatesOnUsedPile{OwnerID: "p2"}, choice.Selection{})
	assert.Len(t, events, 3)
	assert.Equal(t, []string{"h0", "h1", "h3"}, env.State.ZoneIDs(state.HandOf("p2")))
}

func TestPlaceDuplicatesRemovesTwoMoreWhenRewritten(t *testing.T) {
	env := newEnv(t, 6)
	_, err := env.State.AddCard("monnok", monnokDef, "p1", state.Table)
	require.NoError(t, err)
	env.SourceID = "monnok"
	env.Modifiers.Register(modifiers.NewGameText("shield", modifiers.RewriteRemoveTwoMoreCards, filter.Title("Monnok"), nil))

	events := apply(t, env, PlaceDuplicatesOnUsedPile{OwnerID: "p2"}, choice.Selection{})
	assert.Len(t, events, 2)
	assert.Equal(t, 4, env.State.ZoneSize(state.HandOf("p2")))
}

func TestShuffleZoneKeepsMembers(t *testing.T) {
	env := newEnv(t, 10)
	apply(t, env, PutRandomCardsFromHandOnUsedPile{OwnerID: "p2", Count: 8}, choice.Selection{})
	before := env.State.ZoneIDs(state.UsedPileOf("p2"))

	events := apply(t, env, ShuffleZone{Zone: state.UsedPileOf("p2")}, choice.Selection{})
	require.Len(t, events, 1)
	assert.Equal(t, rules.EventZoneShuffled, events[0].Type)
	assert.ElementsMatch(t, before, env.State.ZoneIDs(state.UsedPileOf("p2")))

	assert.Error(t, ShuffleZone{Zone: state.HandOf("p2")}.Check(env))
}

func TestSetTagAndEndMatch(t *testing.T) {
	env := newEnv(t, 0)
	apply(t, env, SetTag{CardID: "shield", Tag: "protected", On: true}, choice.Selection{})
	card, _ := env.State.Card("shield")
	assert.True(t, card.HasTag("protected"))

	events := apply(t, env, EndMatch{Winner: "p1", Reason: "opponent lost all Force"}, choice.Selection{})
	assert.Equal(t, rules.EventMatchEnded, events[0].Type)
	assert.True(t, env.State.Ended())
	assert.True(t, errors.Is(EndMatch{Winner: "p2"}.Check(env), rules.ErrMatchEnded))
}
