package effects

import (
	"fmt"

	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// StackFromHand has a player choose cards from their hand and stacks them
// beneath a host card.
type StackFromHand struct {
	PlayerID string
	HostID   string
	Count    int
	FaceDown bool
}

func (s StackFromHand) Name() string { return "StackFromHand" }

func (s StackFromHand) Check(env *Env) error {
	host, ok := env.State.Card(s.HostID)
	if !ok || !host.InPlay() {
		return fmt.Errorf("stack on %s: host not in play: %w", s.HostID, rules.ErrTargetUnavailable)
	}
	if have := env.State.ZoneSize(state.HandOf(s.PlayerID)); have < s.Count {
		return fmt.Errorf("stack %d cards: %s holds %d: %w", s.Count, s.PlayerID, have, rules.ErrTargetUnavailable)
	}
	return nil
}

func (s StackFromHand) Request(env *Env) *choice.Request {
	req := env.request(choice.KindSelectCards,
		fmt.Sprintf("Choose %d cards from hand to stack", s.Count),
		cardOptions(env.State.Zone(state.HandOf(s.PlayerID))), s.Count, s.Count)
	req.PlayerID = s.PlayerID
	return req
}

func (s StackFromHand) Apply(env *Env, sel choice.Selection) ([]rules.Event, error) {
	if err := s.Check(env); err != nil {
		return nil, err
	}
	if err := s.Request(env).Validate(sel); err != nil {
		return nil, err
	}
	events := make([]rules.Event, 0, len(sel.Chosen))
	for _, id := range sel.Chosen {
		evt, err := env.State.Attach(id, s.HostID, s.FaceDown)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return env.stamp(events...), nil
}

// TakeStackedIntoHand returns cards stacked on a host to their owners'
// hands. When more cards are stacked than Count the player chooses which.
type TakeStackedIntoHand struct {
	PlayerID string
	HostID   string
	Count    int
}

func (t TakeStackedIntoHand) Name() string { return "TakeStackedIntoHand" }

func (t TakeStackedIntoHand) Check(env *Env) error {
	if len(env.State.StackedOn(t.HostID)) == 0 {
		return fmt.Errorf("take stacked from %s: nothing stacked: %w", t.HostID, rules.ErrTargetUnavailable)
	}
	return nil
}

func (t TakeStackedIntoHand) Request(env *Env) *choice.Request {
	stacked := env.State.StackedOn(t.HostID)
	if len(stacked) <= t.Count {
		return nil
	}
	req := env.request(choice.KindSelectCards,
		fmt.Sprintf("Choose %d stacked cards to take into hand", t.Count),
		cardOptions(stacked), t.Count, t.Count)
	req.PlayerID = t.PlayerID
	return req
}

func (t TakeStackedIntoHand) Apply(env *Env, sel choice.Selection) ([]rules.Event, error) {
	if err := t.Check(env); err != nil {
		return nil, err
	}
	ids := sel.Chosen
	if req := t.Request(env); req != nil {
		if err := req.Validate(sel); err != nil {
			return nil, err
		}
	} else {
		ids = env.State.ZoneIDs(state.StackedOn(t.HostID))
	}

	events := make([]rules.Event, 0, len(ids))
	for _, id := range ids {
		card, _ := env.State.Card(id)
		evt, err := env.State.Detach(id, state.HandOf(card.Owner), state.PositionBottom)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return env.stamp(events...), nil
}
