package effects

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/random"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// RevealHand shows every card in a player's hand to the viewer. Cards stacked
// away from the hand before it resolves are not revealed.
type RevealHand struct {
	OwnerID  string
	ViewerID string
}

func (r RevealHand) Name() string { return "RevealHand" }

func (r RevealHand) AboutTo(env *Env) rules.Event {
	return rules.NewAboutToEvent(rules.EventAboutToRevealHand, env.SourceID, env.PlayerID, r.OwnerID)
}

func (r RevealHand) Check(env *Env) error {
	if _, ok := env.State.Player(r.OwnerID); !ok {
		return fmt.Errorf("reveal hand: unknown player %s: %w", r.OwnerID, rules.ErrTargetUnavailable)
	}
	return nil
}

func (r RevealHand) Request(*Env) *choice.Request { return nil }

func (r RevealHand) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if err := r.Check(env); err != nil {
		return nil, err
	}
	ids := env.State.ZoneIDs(state.HandOf(r.OwnerID))
	env.State.Reveal(r.ViewerID, ids)

	evt := rules.NewEventWithAmount(rules.EventHandRevealed, "", "", "", len(ids))
	evt.TargetPlayerID = r.OwnerID
	evt.CardIDs = ids
	evt.Metadata["viewer"] = r.ViewerID
	return env.stamp(evt), nil
}

// PutRandomCardsFromHandOnUsedPile moves cards chosen uniformly at random
// from a player's hand to the top of their used pile. With Count set it
// removes that many cards; otherwise it removes all but Keep. Modifiers on
// the source card may raise the number removed.
type PutRandomCardsFromHandOnUsedPile struct {
	OwnerID string
	Keep    int
	Count   int
}

func (p PutRandomCardsFromHandOnUsedPile) Name() string { return "PutRandomCardsFromHandOnUsedPile" }

func (p PutRandomCardsFromHandOnUsedPile) AboutTo(env *Env) rules.Event {
	evt := rules.NewAboutToEvent(rules.EventAboutToPlaceRandomCards, env.SourceID, env.PlayerID, p.OwnerID)
	evt.Amount = p.removed(env)
	return evt
}

// removed is the number of cards the primitive would remove right now.
func (p PutRandomCardsFromHandOnUsedPile) removed(env *Env) int {
	hand := env.State.ZoneSize(state.HandOf(p.OwnerID))
	n := p.Count
	if n <= 0 {
		keep := env.modifiers().Int(env.State, modifiers.ParamCardsKeptInHand, env.Source(), p.Keep)
		n = hand - keep
	}
	if n < 0 {
		n = 0
	}
	n += extraRemoved(env)
	if n > hand {
		n = hand
	}
	return n
}

func (p PutRandomCardsFromHandOnUsedPile) Check(env *Env) error {
	if _, ok := env.State.Player(p.OwnerID); !ok {
		return fmt.Errorf("place random cards: unknown player %s: %w", p.OwnerID, rules.ErrTargetUnavailable)
	}
	if env.Random == nil {
		return fmt.Errorf("place random cards: no random source: %w", rules.ErrStateInvariant)
	}
	return nil
}

func (p PutRandomCardsFromHandOnUsedPile) Request(*Env) *choice.Request { return nil }

func (p PutRandomCardsFromHandOnUsedPile) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if err := p.Check(env); err != nil {
		return nil, err
	}
	hand := state.HandOf(p.OwnerID)
	ids := env.State.ZoneIDs(hand)
	picked := random.Sample(env.Random, len(ids), p.removed(env))
	chosen := make([]string, 0, len(picked))
	for _, idx := range picked {
		chosen = append(chosen, ids[idx])
	}
	env.logger().Debug("random cards placed on used pile",
		zap.String("owner_id", p.OwnerID),
		zap.Int("hand", len(ids)),
		zap.Int("removed", len(chosen)),
	)
	events, err := moveAll(env, chosen, hand, state.UsedPileOf(p.OwnerID))
	if err != nil {
		return nil, err
	}
	return env.stamp(events...), nil
}

// PlaceDuplicatesOnUsedPile makes a player place every duplicate card in
// their hand on their used pile, keeping the first copy of each title. A
// source whose text is rewritten to remove two more cards also removes two
// random cards from what remains.
type PlaceDuplicatesOnUsedPile struct {
	OwnerID string
}

func (p PlaceDuplicatesOnUsedPile) Name() string { return "PlaceDuplicatesOnUsedPile" }

func (p PlaceDuplicatesOnUsedPile) Check(env *Env) error {
	if _, ok := env.State.Player(p.OwnerID); !ok {
		return fmt.Errorf("place duplicates: unknown player %s: %w", p.OwnerID, rules.ErrTargetUnavailable)
	}
	if extraRemoved(env) > 0 && env.Random == nil {
		return fmt.Errorf("place duplicates: no random source: %w", rules.ErrStateInvariant)
	}
	return nil
}

func (p PlaceDuplicatesOnUsedPile) Request(*Env) *choice.Request { return nil }

func (p PlaceDuplicatesOnUsedPile) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if err := p.Check(env); err != nil {
		return nil, err
	}
	hand := state.HandOf(p.OwnerID)
	seen := make(map[string]bool)
	var duplicates, rest []string
	for _, c := range env.State.Zone(hand) {
		key := c.Title()
		if seen[key] {
			duplicates = append(duplicates, c.ID)
			continue
		}
		seen[key] = true
		rest = append(rest, c.ID)
	}
	for _, idx := range random.Sample(env.Random, len(rest), extraRemoved(env)) {
		duplicates = append(duplicates, rest[idx])
	}

	events, err := moveAll(env, duplicates, hand, state.UsedPileOf(p.OwnerID))
	if err != nil {
		return nil, err
	}
	return env.stamp(events...), nil
}

// extraRemoved folds the modifiers that make the source remove more cards.
func extraRemoved(env *Env) int {
	source := env.Source()
	extra := env.modifiers().Int(env.State, modifiers.ParamExtraCardsRemoved, source, 0)
	if source != nil && env.modifiers().HasRewrite(env.State, source, modifiers.RewriteRemoveTwoMoreCards) {
		extra += 2
	}
	if extra < 0 {
		return 0
	}
	return extra
}

func moveAll(env *Env, ids []string, from, to state.ZoneID) ([]rules.Event, error) {
	events := make([]rules.Event, 0, len(ids))
	for _, id := range ids {
		evt, err := env.State.MoveCard(id, from, to, state.PositionTop)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}
