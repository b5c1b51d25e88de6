package effects

import (
	"fmt"

	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/random"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// MoveCard moves one card between unstacked zones.
type MoveCard struct {
	CardID   string
	From     state.ZoneID
	To       state.ZoneID
	Position state.Position
}

func (m MoveCard) Name() string { return "MoveCard" }

func (m MoveCard) Check(env *Env) error {
	card, ok := env.State.Card(m.CardID)
	if !ok || card.Zone != m.From {
		return fmt.Errorf("move %s: no longer in %s: %w", m.CardID, m.From, rules.ErrTargetUnavailable)
	}
	return nil
}

func (m MoveCard) Request(*Env) *choice.Request { return nil }

func (m MoveCard) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if err := m.Check(env); err != nil {
		return nil, err
	}
	evt, err := env.State.MoveCard(m.CardID, m.From, m.To, m.Position)
	if err != nil {
		return nil, err
	}
	return env.stamp(evt), nil
}

// DrawCards moves cards from the top of a player's reserve deck into their
// hand. Drawing from a short deck draws what is there.
type DrawCards struct {
	PlayerID string
	Count    int
}

func (d DrawCards) Name() string { return "DrawCards" }

func (d DrawCards) Check(env *Env) error {
	if d.Count <= 0 {
		return nil
	}
	if env.State.ZoneSize(state.ReserveDeckOf(d.PlayerID)) == 0 {
		return fmt.Errorf("draw: %s has no reserve deck left: %w", d.PlayerID, rules.ErrTargetUnavailable)
	}
	return nil
}

func (d DrawCards) Request(*Env) *choice.Request { return nil }

func (d DrawCards) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if err := d.Check(env); err != nil {
		return nil, err
	}
	if d.Count <= 0 {
		return nil, nil
	}
	deck := state.ReserveDeckOf(d.PlayerID)
	ids := env.State.ZoneIDs(deck)
	if len(ids) > d.Count {
		ids = ids[:d.Count]
	}
	events := make([]rules.Event, 0, len(ids))
	for _, id := range ids {
		evt, err := env.State.MoveCard(id, deck, state.HandOf(d.PlayerID), state.PositionBottom)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return env.stamp(events...), nil
}

// ShuffleZone randomly reorders an ordered zone.
type ShuffleZone struct {
	Zone state.ZoneID
}

func (s ShuffleZone) Name() string { return "ShuffleZone" }

func (s ShuffleZone) Check(env *Env) error {
	if !s.Zone.Kind.Ordered() {
		return fmt.Errorf("shuffle %s: zone is unordered: %w", s.Zone, rules.ErrTargetUnavailable)
	}
	if env.Random == nil {
		return fmt.Errorf("shuffle %s: no random source: %w", s.Zone, rules.ErrStateInvariant)
	}
	return nil
}

func (s ShuffleZone) Request(*Env) *choice.Request { return nil }

func (s ShuffleZone) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if err := s.Check(env); err != nil {
		return nil, err
	}
	order := env.State.ZoneIDs(s.Zone)
	random.Shuffle(env.Random, len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	evt, err := env.State.Reorder(s.Zone, order)
	if err != nil {
		return nil, err
	}
	return env.stamp(evt), nil
}

// SetTag sets or clears a tag on a card.
type SetTag struct {
	CardID string
	Tag    string
	On     bool
}

func (s SetTag) Name() string { return "SetTag" }

func (s SetTag) Check(env *Env) error {
	card, ok := env.State.Card(s.CardID)
	if !ok || card.OutOfPlay() {
		return fmt.Errorf("tag %s: %w", s.CardID, rules.ErrTargetUnavailable)
	}
	return nil
}

func (s SetTag) Request(*Env) *choice.Request { return nil }

func (s SetTag) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if err := s.Check(env); err != nil {
		return nil, err
	}
	evt, err := env.State.SetTag(s.CardID, s.Tag, s.On)
	if err != nil {
		return nil, err
	}
	return env.stamp(evt), nil
}
