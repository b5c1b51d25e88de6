// Package state holds the per-match aggregate: players, zones, cards and
// turn counters. Only the mutation methods in this package change zone
// membership, and each returns the single Effect Result describing it.
package state

import (
	"fmt"

	"github.com/gempswccg/swccg-server/internal/game/rules"
)

// Outcome describes how a match ended.
type Outcome struct {
	Ended  bool
	Winner string
	Draw   bool
	Reason string
	Fault  bool // Ended by a state invariant violation
}

// GameState is the single mutable aggregate of one match.
type GameState struct {
	MatchID string
	Turn    *rules.TurnManager
	Outcome Outcome

	players  []*Player
	zones    map[ZoneID][]string
	cards    map[string]*Card
	order    []string // Card creation order
	revealed map[string]map[string]struct{}
}

// New creates an empty game state for the players, in seat order.
func New(matchID string, turn *rules.TurnManager, players ...*Player) *GameState {
	gs := &GameState{
		MatchID:  matchID,
		Turn:     turn,
		players:  players,
		zones:    make(map[ZoneID][]string),
		cards:    make(map[string]*Card),
		revealed: make(map[string]map[string]struct{}),
	}
	return gs
}

// Players returns the players in seat order.
func (gs *GameState) Players() []*Player {
	return append([]*Player(nil), gs.players...)
}

// Player looks up a player by ID.
func (gs *GameState) Player(id string) (*Player, bool) {
	for _, p := range gs.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Opponent returns the other player in a two-player match.
func (gs *GameState) Opponent(id string) string {
	for _, p := range gs.players {
		if p.ID != id {
			return p.ID
		}
	}
	return ""
}

// Phase returns the current phase.
func (gs *GameState) Phase() rules.Phase {
	return gs.Turn.CurrentPhase()
}

// TurnNumber returns the current turn number.
func (gs *GameState) TurnNumber() int {
	return gs.Turn.TurnNumber()
}

// Ended reports whether the match reached its terminal state.
func (gs *GameState) Ended() bool {
	return gs.Outcome.Ended
}

// End moves the match into its terminal state. Later calls are ignored.
func (gs *GameState) End(outcome Outcome) bool {
	if gs.Outcome.Ended {
		return false
	}
	outcome.Ended = true
	gs.Outcome = outcome
	return true
}

// Card looks up a card by instance ID.
func (gs *GameState) Card(id string) (*Card, bool) {
	card, ok := gs.cards[id]
	return card, ok
}

// Cards returns every card in creation order.
func (gs *GameState) Cards() []*Card {
	cards := make([]*Card, 0, len(gs.order))
	for _, id := range gs.order {
		cards = append(cards, gs.cards[id])
	}
	return cards
}

// Zone returns the cards of a zone in zone order.
func (gs *GameState) Zone(z ZoneID) []*Card {
	ids := gs.zones[z]
	cards := make([]*Card, 0, len(ids))
	for _, id := range ids {
		cards = append(cards, gs.cards[id])
	}
	return cards
}

// ZoneIDs returns the card IDs of a zone in zone order.
func (gs *GameState) ZoneIDs(z ZoneID) []string {
	return append([]string(nil), gs.zones[z]...)
}

// ZoneSize returns the number of cards in a zone.
func (gs *GameState) ZoneSize(z ZoneID) int {
	return len(gs.zones[z])
}

// StackedOn returns the cards stacked beneath the host, top first.
func (gs *GameState) StackedOn(hostID string) []*Card {
	return gs.Zone(StackedOn(hostID))
}

// AddCard creates a card in a starting zone. It is only used while setting
// up a match; afterwards cards change zones through the mutation methods.
func (gs *GameState) AddCard(id string, def *Definition, owner string, zone ZoneID) (*Card, error) {
	if _, exists := gs.cards[id]; exists {
		return nil, fmt.Errorf("add card %s: duplicate id: %w", id, rules.ErrStateInvariant)
	}
	if _, ok := gs.Player(owner); !ok {
		return nil, fmt.Errorf("add card %s: unknown owner %s", id, owner)
	}
	if zone.Kind == ZoneStacked {
		return nil, fmt.Errorf("add card %s: cards cannot start stacked", id)
	}
	if err := gs.validDestination(zone); err != nil {
		return nil, fmt.Errorf("add card %s: %w", id, err)
	}
	card := &Card{
		ID:         id,
		Def:        def,
		Owner:      owner,
		Controller: owner,
		Zone:       zone,
		Tags:       make(map[string]struct{}),
	}
	gs.cards[id] = card
	gs.order = append(gs.order, id)
	gs.zones[zone] = append(gs.zones[zone], id)
	return card, nil
}

// Reveal records that the viewer has seen the cards.
func (gs *GameState) Reveal(viewer string, cardIDs []string) {
	seen, ok := gs.revealed[viewer]
	if !ok {
		seen = make(map[string]struct{})
		gs.revealed[viewer] = seen
	}
	for _, id := range cardIDs {
		seen[id] = struct{}{}
	}
}

// RevealedTo reports whether the viewer has seen the card since reveals were last cleared.
func (gs *GameState) RevealedTo(viewer, cardID string) bool {
	_, ok := gs.revealed[viewer][cardID]
	return ok
}

// ClearReveals forgets every reveal. Called when a phase ends.
func (gs *GameState) ClearReveals() {
	gs.revealed = make(map[string]map[string]struct{})
}

// Clone returns a deep copy. Definitions are shared.
func (gs *GameState) Clone() *GameState {
	clone := &GameState{
		MatchID:  gs.MatchID,
		Turn:     gs.Turn.Clone(),
		Outcome:  gs.Outcome,
		players:  make([]*Player, 0, len(gs.players)),
		zones:    make(map[ZoneID][]string, len(gs.zones)),
		cards:    make(map[string]*Card, len(gs.cards)),
		order:    append([]string(nil), gs.order...),
		revealed: make(map[string]map[string]struct{}, len(gs.revealed)),
	}
	for _, p := range gs.players {
		clone.players = append(clone.players, p.clone())
	}
	for zone, ids := range gs.zones {
		clone.zones[zone] = append([]string(nil), ids...)
	}
	for id, card := range gs.cards {
		clone.cards[id] = card.clone()
	}
	for viewer, seen := range gs.revealed {
		copied := make(map[string]struct{}, len(seen))
		for id := range seen {
			copied[id] = struct{}{}
		}
		clone.revealed[viewer] = copied
	}
	return clone
}

func (gs *GameState) newEvent(eventType rules.EventType, cardID string) rules.Event {
	evt := rules.NewEvent(eventType, cardID, "", "")
	if gs.Turn != nil {
		evt.Turn = gs.Turn.TurnNumber()
		evt.Phase = gs.Turn.CurrentPhase()
	}
	return evt
}
