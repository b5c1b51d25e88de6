package game

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/game/action"
	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/effects"
	"github.com/gempswccg/swccg-server/internal/game/rules"
)

// activatedBinding ties an activated ability to the card carrying it.
type activatedBinding struct {
	id     string
	cardID string
	desc   action.Activated
}

// triggerBinding ties a trigger to the card carrying it. Built-in rules
// triggers have no card.
type triggerBinding struct {
	id     string
	cardID string
	desc   action.Trigger
}

// offer is an optional trigger waiting for its controller to accept or decline.
type offer struct {
	id      string
	binding int // index into Resolver.triggers
	player  string
	entry   rules.Event
	anchor  *action.Action
	depth   int // stack height at which the offer is live
}

// rulesTriggers are the mandatory actions the game performs on its own.
func (r *Resolver) rulesTriggers() []triggerBinding {
	return []triggerBinding{
		{
			id: "rules/activate_force",
			desc: action.Trigger{
				Key:    "activate_force",
				Text:   "Activate Force",
				Window: rules.WindowAfter,
				Condition: func(_ *action.Context, entry rules.Event) bool {
					return entry.Type == rules.EventPhaseChanged && entry.Meta("phase") == rules.PhaseActivate.String()
				},
				Build: func(ctx *action.Context, _ rules.Event, _ *action.Action) *action.Action {
					return action.New("", ctx.Controller, "Activate Force").
						Effect(effects.ActivateForce{PlayerID: ctx.Controller, Amount: r.activationBase})
				},
			},
		},
	}
}

// triggerContext builds the context a trigger is evaluated in. Triggers on
// cards only work while the card is in play.
func (r *Resolver) triggerContext(b *triggerBinding) (*action.Context, bool) {
	ctx := &action.Context{State: r.state, Modifiers: r.mods, Log: r.log}
	if b.cardID == "" {
		ctx.Controller = r.state.ActivePlayer()
		return ctx, true
	}
	card, ok := r.state.Card(b.cardID)
	if !ok || !card.InPlay() {
		return nil, false
	}
	ctx.Source = card
	ctx.Controller = card.Controller
	return ctx, true
}

func (r *Resolver) activatedContext(b *activatedBinding) (*action.Context, bool) {
	card, ok := r.state.Card(b.cardID)
	if !ok || card.Zone.Kind != b.desc.Zone() {
		return nil, false
	}
	return &action.Context{
		State:      r.state,
		Modifiers:  r.mods,
		Log:        r.log,
		Source:     card,
		Controller: card.Controller,
	}, true
}

// checkLegal runs the legality checker for an action. Activated abilities
// also pass their descriptor's timing restrictions.
func (r *Resolver) checkLegal(a *action.Action, desc *action.Activated) error {
	req := rules.LegalityRequest{
		ActionID:   a.ID,
		Kind:       a.Kind,
		Controller: a.Controller,
		SourceID:   a.SourceID,
	}
	if desc != nil {
		req.SourceZone = string(desc.Zone())
		req.Phases = desc.Phases
		req.OwnTurnOnly = desc.OwnTurnOnly
	}
	result := rules.NewLegalityChecker(r.state).Check(req)
	if !result.Legal {
		return fmt.Errorf("action %s: %s: %w", a.ID, result.Reason, rules.ErrIllegalAction)
	}
	return nil
}

// anchorFor returns the resolving action whose announcement produced the entry.
func (r *Resolver) anchorFor(entry rules.Event) *action.Action {
	f := r.top()
	if f == nil || entry.ActionID == "" || f.action.ID != entry.ActionID {
		return nil
	}
	return f.action
}

func (r *Resolver) stampTriggered(a *action.Action, b *triggerBinding, entry rules.Event) {
	if a.ID == "" {
		a.ID = r.nextActionID()
	}
	a.Kind = rules.ActionKindTriggered
	if b.cardID == "" {
		a.Kind = rules.ActionKindRules
	}
	a.TriggerID = b.id
	a.AnchorSeq = entry.Seq
}

// collectTriggers evaluates every trigger against the entries appended since
// the last scan. Each trigger fires at most once per entry.
func (r *Resolver) collectTriggers() {
	for _, entry := range r.log.Since(r.scanned) {
		r.scanned = entry.Seq
		if r.state.Ended() {
			return
		}
		window := rules.WindowFor(entry)

		var responses []*action.Action
		for i := range r.triggers {
			b := &r.triggers[i]
			if b.desc.Window != window || r.fired.Fired(b.id, entry.Seq) {
				continue
			}
			ctx, ok := r.triggerContext(b)
			if !ok {
				continue
			}
			if b.desc.Condition != nil && !b.desc.Condition(ctx, entry) {
				continue
			}
			r.fired.Mark(b.id, entry.Seq)
			anchor := r.anchorFor(entry)

			if b.desc.Optional {
				depth := 0
				if window == rules.WindowBefore {
					depth = len(r.stack)
				}
				r.offers = append(r.offers, offer{
					id:      fmt.Sprintf("%s@%d", b.id, entry.Seq),
					binding: i,
					player:  ctx.Controller,
					entry:   entry,
					anchor:  anchor,
					depth:   depth,
				})
				continue
			}

			a := b.desc.Build(ctx, entry, anchor)
			if a == nil {
				continue
			}
			r.stampTriggered(a, b, entry)
			if window == rules.WindowBefore {
				responses = append(responses, a)
			} else {
				r.queue.Push(a)
			}
		}

		// Mandatory responses resolve before the announced effect, the first
		// registered on top.
		for i := len(responses) - 1; i >= 0; i-- {
			if err := r.begin(responses[i]); err != nil {
				r.logger.Warn("mandatory response could not begin",
					zap.String("match_id", r.id),
					zap.String("action_id", responses[i].ID),
					zap.Error(err),
				)
			}
		}
	}
}

// offerPending parks the match on the live optional triggers, if any.
// Offers whose window closed are dropped, and conditions are checked again
// so an offer that stopped being legal is never shown.
func (r *Resolver) offerPending() bool {
	height := len(r.stack)
	live := r.offers[:0]
	var eligible []offer
	for _, o := range r.offers {
		if o.depth > height {
			continue
		}
		if o.depth == height {
			b := &r.triggers[o.binding]
			ctx, ok := r.triggerContext(b)
			if !ok || (b.desc.Condition != nil && !b.desc.Condition(ctx, o.entry)) {
				r.logger.Debug("optional trigger no longer legal",
					zap.String("match_id", r.id),
					zap.String("offer_id", o.id),
				)
				continue
			}
			eligible = append(eligible, o)
		}
		live = append(live, o)
	}
	r.offers = live
	if len(eligible) == 0 {
		return false
	}

	player := r.offerPlayer(eligible)
	var mine []offer
	for _, o := range eligible {
		if o.player == player {
			mine = append(mine, o)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].binding < mine[j].binding })

	options := make([]choice.Option, 0, len(mine))
	ids := make([]string, 0, len(mine))
	for _, o := range mine {
		options = append(options, choice.Option{ID: o.id, Label: r.triggers[o.binding].desc.Text})
		ids = append(ids, o.id)
	}
	seq := r.log.LastSeq()
	r.pending = &pending{
		request: &choice.Request{
			ID:       fmt.Sprintf("triggers@%d", seq),
			PlayerID: player,
			Seq:      seq,
			Kind:     choice.KindOptionalTriggers,
			Prompt:   "Choose an optional response, or pass",
			Options:  options,
			Min:      0,
			Max:      1,
		},
		offers: ids,
	}
	return true
}

// offerPlayer picks whose offers come first: the active player's, then the opponent's.
func (r *Resolver) offerPlayer(eligible []offer) string {
	active := r.state.ActivePlayer()
	for _, o := range eligible {
		if o.player == active {
			return active
		}
	}
	return eligible[0].player
}

func (r *Resolver) findOffer(id string) (int, bool) {
	for i, o := range r.offers {
		if o.id == id {
			return i, true
		}
	}
	return 0, false
}

// acceptOffer builds and begins the chosen optional trigger. If it cannot
// begin, the anchor's continuation is restored and the offer stays pending.
func (r *Resolver) acceptOffer(id string) error {
	idx, ok := r.findOffer(id)
	if !ok {
		return fmt.Errorf("offer %s: %w", id, rules.ErrInvalidSelection)
	}
	o := r.offers[idx]
	b := &r.triggers[o.binding]
	ctx, ok := r.triggerContext(b)
	if !ok {
		return fmt.Errorf("offer %s: source left play: %w", id, rules.ErrIllegalAction)
	}

	restore := -1
	if o.anchor != nil {
		restore = len(o.anchor.After)
	}
	a := b.desc.Build(ctx, o.entry, o.anchor)
	if a == nil {
		return fmt.Errorf("offer %s: nothing to do: %w", id, rules.ErrIllegalAction)
	}
	r.stampTriggered(a, b, o.entry)
	if err := r.begin(a); err != nil {
		if restore >= 0 {
			o.anchor.After = o.anchor.After[:restore]
		}
		return err
	}
	r.offers = append(r.offers[:idx], r.offers[idx+1:]...)
	return nil
}

// declineOffers drops every offer in the pending request.
func (r *Resolver) declineOffers(ids []string) {
	for _, id := range ids {
		idx, ok := r.findOffer(id)
		if !ok {
			continue
		}
		o := r.offers[idx]
		r.offers = append(r.offers[:idx], r.offers[idx+1:]...)

		b := r.triggers[o.binding]
		evt := rules.NewEvent(rules.EventTriggerDeclined, b.cardID, b.cardID, o.player)
		evt.Metadata["trigger"] = b.id
		evt.Metadata["anchor"] = fmt.Sprintf("%d", o.entry.Seq)
		r.log.Append(evt)
	}
}
