package state

import (
	"fmt"

	"github.com/gempswccg/swccg-server/internal/game/rules"
)

// CheckInvariants verifies that every card is in exactly one zone, that the
// card and zone indices agree, that the attach relation has no cycles and
// that no Force pool is negative.
func (gs *GameState) CheckInvariants() error {
	seen := make(map[string]ZoneID, len(gs.cards))
	for zone, ids := range gs.zones {
		for _, id := range ids {
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("card %s is in both %s and %s: %w", id, prev, zone, rules.ErrStateInvariant)
			}
			seen[id] = zone

			card, ok := gs.cards[id]
			if !ok {
				return fmt.Errorf("zone %s holds unknown card %s: %w", zone, id, rules.ErrStateInvariant)
			}
			if card.Zone != zone {
				return fmt.Errorf("card %s records %s but sits in %s: %w", id, card.Zone, zone, rules.ErrStateInvariant)
			}
			if zone.Kind == ZoneStacked && card.Host != zone.Scope {
				return fmt.Errorf("card %s stacked on %s records host %q: %w", id, zone.Scope, card.Host, rules.ErrStateInvariant)
			}
			if zone.Kind != ZoneStacked && card.Host != "" {
				return fmt.Errorf("card %s in %s still records host %s: %w", id, zone, card.Host, rules.ErrStateInvariant)
			}
		}
	}

	for _, id := range gs.order {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("card %s is in no zone: %w", id, rules.ErrStateInvariant)
		}
		if gs.attachCycle(id) {
			return fmt.Errorf("card %s is part of an attach cycle: %w", id, rules.ErrStateInvariant)
		}
	}

	for _, p := range gs.players {
		if p.Force.Amount() < 0 {
			return fmt.Errorf("player %s has negative force: %w", p.ID, rules.ErrStateInvariant)
		}
	}
	return nil
}

func (gs *GameState) attachCycle(cardID string) bool {
	steps := 0
	for current := gs.cards[cardID].Host; current != ""; {
		if current == cardID || steps > len(gs.cards) {
			return true
		}
		host, ok := gs.cards[current]
		if !ok {
			return false
		}
		current = host.Host
		steps++
	}
	return false
}
