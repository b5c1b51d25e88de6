package state

import "github.com/gempswccg/swccg-server/internal/game/force"

// Player is one participant in a match.
type Player struct {
	ID       string
	Force    *force.Pool
	Conceded bool
}

// NewPlayer creates a player with the given starting Force.
func NewPlayer(id string, startingForce int) *Player {
	return &Player{ID: id, Force: force.NewPool(startingForce)}
}

// Zones returns the zones the player owns.
func (p *Player) Zones() []ZoneID {
	zones := make([]ZoneID, 0, len(playerZoneKinds))
	for _, kind := range playerZoneKinds {
		zones = append(zones, ZoneID{Kind: kind, Scope: p.ID})
	}
	return zones
}

func (p *Player) clone() *Player {
	return &Player{ID: p.ID, Force: p.Force.Clone(), Conceded: p.Conceded}
}
