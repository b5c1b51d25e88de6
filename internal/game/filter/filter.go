// Package filter provides composable predicates over cards. Filters never
// mutate game state and capture only immutable parameters, so one Filter
// value may be evaluated concurrently by independent matches.
package filter

import (
	"strings"

	"github.com/gempswccg/swccg-server/internal/game/state"
)

// Filter decides whether a card qualifies in the given game state.
type Filter func(gs *state.GameState, c *state.Card) bool

// Accepts evaluates the filter. A nil filter accepts every card.
func (f Filter) Accepts(gs *state.GameState, c *state.Card) bool {
	if f == nil {
		return true
	}
	return f(gs, c)
}

// Any accepts every card.
func Any(*state.GameState, *state.Card) bool { return true }

// None rejects every card.
func None(*state.GameState, *state.Card) bool { return false }

// And accepts a card when every filter accepts it, evaluating left to right
// and stopping at the first rejection. And() accepts everything.
func And(filters ...Filter) Filter {
	return func(gs *state.GameState, c *state.Card) bool {
		for _, f := range filters {
			if !f.Accepts(gs, c) {
				return false
			}
		}
		return true
	}
}

// Or accepts a card when any filter accepts it, evaluating left to right and
// stopping at the first acceptance. Or() rejects everything.
func Or(filters ...Filter) Filter {
	return func(gs *state.GameState, c *state.Card) bool {
		for _, f := range filters {
			if f.Accepts(gs, c) {
				return true
			}
		}
		return false
	}
}

// Not accepts exactly the cards the filter rejects.
func Not(f Filter) Filter {
	return func(gs *state.GameState, c *state.Card) bool {
		return !f.Accepts(gs, c)
	}
}

// Title matches a card title, ignoring case and surrounding space.
func Title(title string) Filter {
	title = strings.TrimSpace(title)
	return func(_ *state.GameState, c *state.Card) bool {
		return c.HasTitle(title)
	}
}

// TitleIn matches any of the titles.
func TitleIn(titles ...string) Filter {
	filters := make([]Filter, 0, len(titles))
	for _, title := range titles {
		filters = append(filters, Title(title))
	}
	return Or(filters...)
}

// Is matches one specific card instance.
func Is(cardID string) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		return c.ID == cardID
	}
}

// OfType matches the definition card type.
func OfType(cardType string) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		return c.Def != nil && strings.EqualFold(c.Def.Type, cardType)
	}
}

// InZone matches cards in any zone of the kind.
func InZone(kind state.ZoneKind) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		return c.Zone.Kind == kind
	}
}

// InZoneOf matches cards in one specific zone.
func InZoneOf(zone state.ZoneID) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		return c.Zone == zone
	}
}

// InPlay matches cards on the table.
var InPlay = InZone(state.ZoneTable)

// OwnedBy matches cards owned by the player.
func OwnedBy(player string) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		return c.Owner == player
	}
}

// ControlledBy matches cards controlled by the player.
func ControlledBy(player string) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		return c.Controller == player
	}
}

// AttributeAtLeast matches cards whose base attribute is at least n.
// Cards without the attribute never match.
func AttributeAtLeast(name string, n int) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		v, ok := c.Def.Attribute(name)
		return ok && v >= n
	}
}

// AttributeAtMost matches cards whose base attribute is at most n.
// Cards without the attribute never match.
func AttributeAtMost(name string, n int) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		v, ok := c.Def.Attribute(name)
		return ok && v <= n
	}
}

// HasTag matches cards carrying the tag.
func HasTag(tag string) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		return c.HasTag(tag)
	}
}

// StackedOn matches cards stacked directly beneath the host.
func StackedOn(hostID string) Filter {
	return func(_ *state.GameState, c *state.Card) bool {
		return c.Host == hostID
	}
}

// FaceDown matches face-down cards.
func FaceDown(_ *state.GameState, c *state.Card) bool {
	return c.FaceDown
}

// Select returns the cards the filter accepts, preserving order.
func Select(gs *state.GameState, f Filter, cards []*state.Card) []*state.Card {
	selected := make([]*state.Card, 0, len(cards))
	for _, c := range cards {
		if f.Accepts(gs, c) {
			selected = append(selected, c)
		}
	}
	return selected
}

// Count returns how many cards the filter accepts.
func Count(gs *state.GameState, f Filter, cards []*state.Card) int {
	n := 0
	for _, c := range cards {
		if f.Accepts(gs, c) {
			n++
		}
	}
	return n
}

// Exists reports whether any card in the game satisfies the filter.
func Exists(gs *state.GameState, f Filter) bool {
	for _, c := range gs.Cards() {
		if f.Accepts(gs, c) {
			return true
		}
	}
	return false
}
