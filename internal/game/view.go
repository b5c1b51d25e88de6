package game

import (
	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// View is what one player may see of a match.
type View struct {
	MatchID      string
	Viewer       string
	Seq          int64
	Turn         int
	Phase        string
	ActivePlayer string
	Players      []PlayerView
	Table        []CardView
	LegalActions []LegalAction
	Pending      *choice.Request // Only when the decision belongs to the viewer
	Outcome      state.Outcome
}

// PlayerView shows one player's resources and zone sizes. Hand lists only
// the cards the viewer may see.
type PlayerView struct {
	PlayerID    string
	Force       int
	HandSize    int
	ReserveDeck int
	ForcePile   int
	UsedPile    int
	LostPile    int
	OutOfPlay   int
	Hand        []CardView
	Conceded    bool
}

// CardView describes a visible card.
type CardView struct {
	ID         string
	Title      string
	Type       string
	Owner      string
	Controller string
	Stacked    int
	Tags       []string
}

// LegalAction is an ability the viewer may play right now.
type LegalAction struct {
	ID       string
	SourceID string
	Title    string
	Text     string
}

func cardView(gs *state.GameState, c *state.Card) CardView {
	v := CardView{
		ID:         c.ID,
		Title:      c.Title(),
		Owner:      c.Owner,
		Controller: c.Controller,
		Stacked:    len(gs.StackedOn(c.ID)),
		Tags:       c.TagList(),
	}
	if c.Def != nil {
		v.Type = c.Def.Type
	}
	return v
}

// handVisible reports whether the viewer may see a card in a hand.
func (r *Resolver) handVisible(viewer string, c *state.Card) bool {
	if c.Owner == viewer {
		return true
	}
	if r.state.RevealedTo(viewer, c.ID) {
		return true
	}
	return r.mods.Flag(r.state, modifiers.ParamHandVisible, c, false)
}

// View returns the match as the viewer sees it.
func (r *Resolver) View(viewer string) View {
	r.mu.Lock()
	defer r.mu.Unlock()

	gs := r.state
	v := View{
		MatchID:      r.id,
		Viewer:       viewer,
		Seq:          r.log.LastSeq(),
		Turn:         gs.TurnNumber(),
		Phase:        gs.Phase().String(),
		ActivePlayer: gs.ActivePlayer(),
		Outcome:      gs.Outcome,
	}
	for _, p := range gs.Players() {
		pv := PlayerView{
			PlayerID:    p.ID,
			Force:       p.Force.Amount(),
			HandSize:    gs.ZoneSize(state.HandOf(p.ID)),
			ReserveDeck: gs.ZoneSize(state.ReserveDeckOf(p.ID)),
			ForcePile:   gs.ZoneSize(state.ForcePileOf(p.ID)),
			UsedPile:    gs.ZoneSize(state.UsedPileOf(p.ID)),
			LostPile:    gs.ZoneSize(state.LostPileOf(p.ID)),
			OutOfPlay:   gs.ZoneSize(state.OutOfPlayOf(p.ID)),
			Conceded:    p.Conceded,
		}
		for _, c := range gs.Zone(state.HandOf(p.ID)) {
			if r.handVisible(viewer, c) {
				pv.Hand = append(pv.Hand, cardView(gs, c))
			}
		}
		v.Players = append(v.Players, pv)
	}
	for _, c := range gs.Zone(state.Table) {
		v.Table = append(v.Table, cardView(gs, c))
	}
	if r.pending != nil && r.pending.request.PlayerID == viewer {
		req := *r.pending.request
		v.Pending = &req
	}
	v.LegalActions = r.legalActions(viewer)
	return v
}

// legalActions lists the activated abilities the player could start now.
func (r *Resolver) legalActions(player string) []LegalAction {
	if r.state.Ended() || r.pending != nil || len(r.stack) > 0 {
		return nil
	}
	var out []LegalAction
	for i := range r.activated {
		b := &r.activated[i]
		if _, err := r.buildActivated(b, player); err != nil {
			continue
		}
		card, _ := r.state.Card(b.cardID)
		out = append(out, LegalAction{ID: b.id, SourceID: b.cardID, Title: card.Title(), Text: b.desc.Text})
	}
	return out
}
