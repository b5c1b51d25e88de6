package cards

import (
	"github.com/gempswccg/swccg-server/internal/game/action"
	"github.com/gempswccg/swccg-server/internal/game/effects"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// playInterrupt is the cost every Lost Interrupt shares: use Force and move
// the card from hand to its owner's Lost Pile.
func playInterrupt(ctx *action.Context, force int) []effects.Primitive {
	self := ctx.Source
	return []effects.Primitive{
		effects.UseForce{PlayerID: ctx.Controller, Amount: force},
		effects.MoveCard{CardID: self.ID, From: state.HandOf(self.Owner), To: state.LostPileOf(self.Owner), Position: state.PositionTop},
	}
}

// Monnok looks at the opponent's hand and makes them place duplicates in
// their Used Pile.
func Monnok() action.Blueprint {
	return action.Blueprint{
		Key: KeyMonnok,
		Activated: []action.Activated{
			{
				Key:        "play",
				Text:       "Look at opponent's hand",
				SourceZone: state.ZoneHand,
				Condition: func(ctx *action.Context) bool {
					return action.CanUseForce(ctx, ctx.Controller, 1)
				},
				Build: func(ctx *action.Context) *action.Action {
					opponent := ctx.Opponent()
					return action.New(ctx.SourceID(), ctx.Controller, "Look at opponent's hand and remove duplicates").
						Cost(playInterrupt(ctx, 1)...).
						Effect(
							effects.RevealHand{OwnerID: opponent, ViewerID: ctx.Controller},
							effects.PlaceDuplicatesOnUsedPile{OwnerID: opponent},
						)
				},
			},
		},
	}
}

// Drop makes the opponent place two random cards from hand in their Used Pile.
func Drop() action.Blueprint {
	return action.Blueprint{
		Key: KeyDrop,
		Activated: []action.Activated{
			{
				Key:        "play",
				Text:       "Make opponent lose two random cards from hand",
				SourceZone: state.ZoneHand,
				Condition: func(ctx *action.Context) bool {
					return action.CanUseForce(ctx, ctx.Controller, 1)
				},
				Build: func(ctx *action.Context) *action.Action {
					return action.New(ctx.SourceID(), ctx.Controller, "Opponent places 2 random cards from hand in Used Pile").
						Cost(playInterrupt(ctx, 1)...).
						Effect(effects.PutRandomCardsFromHandOnUsedPile{OwnerID: ctx.Opponent(), Count: 2})
				},
			},
		},
	}
}
