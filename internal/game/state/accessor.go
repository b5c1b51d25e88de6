package state

import "github.com/gempswccg/swccg-server/internal/game/rules"

var _ rules.GameStateAccessor = (*GameState)(nil)

// FindCard implements rules.GameStateAccessor.
func (gs *GameState) FindCard(cardID string) (rules.CardInfo, bool) {
	card, ok := gs.cards[cardID]
	if !ok {
		return rules.CardInfo{}, false
	}
	return rules.CardInfo{
		ID:           card.ID,
		Title:        card.Title(),
		Zone:         string(card.Zone.Kind),
		ControllerID: card.Controller,
		OwnerID:      card.Owner,
		OutOfPlay:    card.OutOfPlay(),
	}, true
}

// FindPlayer implements rules.GameStateAccessor.
func (gs *GameState) FindPlayer(playerID string) (rules.PlayerInfo, bool) {
	p, ok := gs.Player(playerID)
	if !ok {
		return rules.PlayerInfo{}, false
	}
	return rules.PlayerInfo{PlayerID: p.ID, Force: p.Force.Amount(), Conceded: p.Conceded}, true
}

// CurrentPhase implements rules.GameStateAccessor.
func (gs *GameState) CurrentPhase() rules.Phase {
	return gs.Turn.CurrentPhase()
}

// ActivePlayer implements rules.GameStateAccessor.
func (gs *GameState) ActivePlayer() string {
	return gs.Turn.ActivePlayer()
}

// MatchEnded implements rules.GameStateAccessor.
func (gs *GameState) MatchEnded() bool {
	return gs.Outcome.Ended
}
