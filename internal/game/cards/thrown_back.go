package cards

import (
	"github.com/gempswccg/swccg-server/internal/game/action"
	"github.com/gempswccg/swccg-server/internal/game/effects"
	"github.com/gempswccg/swccg-server/internal/game/filter"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

const (
	thrownBackHandThreshold = 15
	thrownBackKeep          = 9
	thrownBackCost          = 2
	thrownBackProtected     = 2
)

// ThrownBack is the Defensive Shield Thrown Back (V).
//
// At end of a turn, if opponent has 15 or more cards in hand, may use 2 Force
// to shuffle all but 9 (random selection) into Used Pile. If Monnok or Drop!
// is about to target your hand, may stack 2 cards from hand on this shield;
// they return to hand once that interrupt finishes. While cards are stacked
// here, Monnok and Drop! remove two more cards.
func ThrownBack() action.Blueprint {
	return action.Blueprint{
		Key: KeyThrownBack,
		Triggers: []action.Trigger{
			{
				Key:      "remove",
				Text:     "Remove cards from opponent's hand",
				Window:   rules.WindowEndOfPhase,
				Optional: true,
				Condition: func(ctx *action.Context, entry rules.Event) bool {
					return action.IsEndOfEachTurn(entry) &&
						action.NumCardsInHand(ctx, ctx.Opponent()) >= thrownBackHandThreshold &&
						action.CanUseForce(ctx, ctx.Controller, thrownBackCost)
				},
				Build: func(ctx *action.Context, _ rules.Event, _ *action.Action) *action.Action {
					opponent := ctx.Opponent()
					return action.New(ctx.SourceID(), ctx.Controller, "Shuffle all but 9 random cards from opponent's hand into opponent's Used Pile").
						Cost(effects.UseForce{PlayerID: ctx.Controller, Amount: thrownBackCost}).
						Effect(
							effects.PutRandomCardsFromHandOnUsedPile{OwnerID: opponent, Keep: thrownBackKeep},
							effects.ShuffleZone{Zone: state.UsedPileOf(opponent)},
						)
				},
			},
			{
				Key:      "protect",
				Text:     "Protect two cards in hand",
				Window:   rules.WindowBefore,
				Optional: true,
				Condition: func(ctx *action.Context, entry rules.Event) bool {
					return action.NumCardsInHand(ctx, ctx.Controller) >= thrownBackProtected &&
						action.IsAboutTo(ctx, entry, ctx.Controller, monnokOrDrop,
							rules.EventAboutToRevealHand, rules.EventAboutToPlaceRandomCards)
				},
				Build: func(ctx *action.Context, _ rules.Event, anchor *action.Action) *action.Action {
					self := ctx.Source
					protect := action.New(self.ID, ctx.Controller, "Protect two cards in hand").
						Effect(effects.StackFromHand{PlayerID: ctx.Controller, HostID: self.ID, Count: thrownBackProtected, FaceDown: true})
					if anchor != nil {
						anchor.AppendAfter(effects.TakeStackedIntoHand{PlayerID: self.Owner, HostID: self.ID, Count: thrownBackProtected})
					}
					return protect
				},
			},
		},
		Statics: []action.Static{
			{
				Key: "remove_two_more",
				Build: func(self *state.Card) []modifiers.Modifier {
					hostID := self.ID
					mod := modifiers.NewGameText(hostID, modifiers.RewriteRemoveTwoMoreCards, monnokOrDrop,
						func(gs *state.GameState) bool {
							return action.HasStacked(gs, hostID, filter.Any)
						})
					mod.ID = hostID + "/remove_two_more"
					mod.Description = "Monnok and Drop! remove two more cards"
					return []modifiers.Modifier{mod}
				},
			},
		},
	}
}
