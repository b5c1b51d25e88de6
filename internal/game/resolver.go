package game

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/game/action"
	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/effects"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/random"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
	"github.com/gempswccg/swccg-server/internal/history"
)

// maxSettleSteps bounds one settle pass. A rules loop that never quiesces
// is treated as an invariant failure.
const maxSettleSteps = 10000

type stage int

const (
	stageEffects stage = iota
	stageAfter
)

// frame is an action whose costs are paid and whose effects are resolving.
type frame struct {
	action    *action.Action
	stage     stage
	index     int
	announced bool
	selection *choice.Selection
}

func (f *frame) steps() []effects.Primitive {
	if f.stage == stageEffects {
		return f.action.Effects
	}
	return f.action.After
}

func (f *frame) current() effects.Primitive {
	steps := f.steps()
	if f.index < len(steps) {
		return steps[f.index]
	}
	return nil
}

// position numbers steps across both stages for failure reports.
func (f *frame) position() int {
	if f.stage == stageAfter {
		return len(f.action.Effects) + f.index
	}
	return f.index
}

func (f *frame) next() {
	f.index++
	f.announced = false
	f.selection = nil
}

func (f *frame) enterAfter() {
	f.stage = stageAfter
	f.index = 0
	f.announced = false
	f.selection = nil
}

// pending is the decision the match is parked on: either a primitive's
// choice or the offer of optional triggers.
type pending struct {
	request *choice.Request
	frame   *frame
	offers  []string // offer IDs
}

// Resolver runs one match on a single timeline. Every exported method takes
// the resolver lock; nothing inside holds locks of other matches.
type Resolver struct {
	mu sync.Mutex

	id          string
	format      string
	competitive bool
	decks       map[string]string
	seed        uint64

	state  *state.GameState
	log    *rules.EventLog
	mods   *modifiers.Registry
	random random.Source
	logger *zap.Logger
	depth  *rules.ResolutionContext

	activated []activatedBinding
	triggers  []triggerBinding
	fired     *action.FiredSet
	queue     *action.Queue
	stack     []*frame
	offers    []offer
	pending   *pending

	scanned        int64
	counter        int
	activationBase int
	partials       []*rules.PartialFailure

	summary  *history.Summary
	reported bool
}

func (r *Resolver) env(a *action.Action) *effects.Env {
	return &effects.Env{
		State:     r.state,
		Modifiers: r.mods,
		Random:    r.random,
		Logger:    r.logger,
		ActionID:  a.ID,
		SourceID:  a.SourceID,
		PlayerID:  a.Controller,
	}
}

func (r *Resolver) nextActionID() string {
	r.counter++
	return "a" + strconv.Itoa(r.counter)
}

func (r *Resolver) top() *frame {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// settle runs the match forward until it needs player input, reaches a
// settled point, or ends.
func (r *Resolver) settle() {
	for steps := 0; ; steps++ {
		if steps > maxSettleSteps {
			r.fault(fmt.Errorf("match did not settle after %d steps: %w", maxSettleSteps, rules.ErrStateInvariant))
		}
		if r.state.Ended() {
			r.finish()
			return
		}
		if r.pending != nil {
			return
		}

		r.collectTriggers()
		if r.state.Ended() {
			continue
		}
		if r.offerPending() {
			return
		}

		if f := r.top(); f != nil {
			r.step(f)
			continue
		}
		if a, ok := r.queue.PopFront(); ok {
			if err := r.begin(a); err != nil {
				r.logger.Warn("queued action could not begin",
					zap.String("action_id", a.ID),
					zap.String("source_id", a.SourceID),
					zap.Error(err),
				)
			}
			continue
		}
		if r.state.Turn.Closing() {
			r.advance()
			continue
		}
		return
	}
}

// begin checks legality, pays costs atomically and pushes the action onto
// the resolution stack. On error nothing has changed.
func (r *Resolver) begin(a *action.Action) error {
	if a.ID == "" {
		a.ID = r.nextActionID()
	}
	if err := r.checkLegal(a, nil); err != nil {
		return err
	}
	if err := r.depth.BeginResolution(a.ID); err != nil {
		return fmt.Errorf("begin %s: %v: %w", a.ID, err, rules.ErrIllegalAction)
	}

	staged := r.state.Clone()
	env := r.env(a).WithState(staged)
	var paid []rules.Event
	for i, cost := range a.Costs {
		err := cost.Check(env)
		if err == nil && cost.Request(env) != nil {
			err = errors.New("cost requires a decision")
		}
		var events []rules.Event
		if err == nil {
			events, err = cost.Apply(env, choice.Selection{})
		}
		if err != nil {
			_ = r.depth.EndResolution(a.ID)
			return fmt.Errorf("action %s cost %d (%s): %w: %w", a.ID, i, cost.Name(), rules.ErrUnaffordableCost, err)
		}
		paid = append(paid, events...)
	}
	r.state = staged

	initiated := rules.NewEvent(rules.EventActionInitiated, a.SourceID, a.SourceID, a.Controller)
	initiated.ActionID = a.ID
	initiated.Turn = r.state.TurnNumber()
	initiated.Phase = r.state.Phase()
	initiated.Metadata["kind"] = string(a.Kind)
	initiated.Metadata["text"] = a.Text
	if a.TriggerID != "" {
		initiated.Metadata["trigger"] = a.TriggerID
	}
	r.log.Append(append([]rules.Event{initiated}, paid...)...)
	r.stack = append(r.stack, &frame{action: a})

	r.logger.Debug("action initiated",
		zap.String("match_id", r.id),
		zap.String("action_id", a.ID),
		zap.String("kind", string(a.Kind)),
		zap.String("controller", a.Controller),
		zap.Int("depth", r.depth.Depth()),
	)
	return nil
}

// step advances the frame by at most one primitive.
func (r *Resolver) step(f *frame) {
	p := f.current()
	if p == nil {
		if f.stage == stageEffects {
			f.enterAfter()
			return
		}
		r.complete(f)
		return
	}

	env := r.env(f.action)
	if err := p.Check(env); err != nil {
		r.truncate(f, p, err)
		return
	}
	if ic, ok := p.(effects.Interceptable); ok && !f.announced && f.stage == stageEffects {
		announcement := ic.AboutTo(env)
		announcement.ActionID = f.action.ID
		r.log.Append(announcement)
		f.announced = true
		return
	}

	var sel choice.Selection
	if req := p.Request(env); req != nil {
		if f.selection == nil {
			req.Seq = r.log.LastSeq()
			r.pending = &pending{request: req, frame: f}
			r.logger.Debug("parked on decision",
				zap.String("match_id", r.id),
				zap.String("request_id", req.ID),
				zap.String("player_id", req.PlayerID),
				zap.Int64("seq", req.Seq),
			)
			return
		}
		sel = *f.selection
	}

	events, err := p.Apply(env, sel)
	if err != nil {
		if errors.Is(err, rules.ErrStateInvariant) {
			r.fault(err)
			return
		}
		r.truncate(f, p, err)
		return
	}
	r.log.Append(events...)
	f.next()
}

// truncate abandons the rest of the current stage. A failure among the
// effects still lets the continuation run; a failure in the continuation
// completes the action.
func (r *Resolver) truncate(f *frame, p effects.Primitive, cause error) {
	failure := &rules.PartialFailure{
		ActionID: f.action.ID,
		Index:    f.position(),
		Step:     p.Name(),
		Err:      cause,
	}
	r.partials = append(r.partials, failure)

	evt := rules.NewEventWithAmount(rules.EventPartialEffectFailure, "", f.action.SourceID, f.action.Controller, failure.Index)
	evt.ActionID = f.action.ID
	evt.Metadata["step"] = failure.Step
	evt.Metadata["error"] = cause.Error()
	r.log.Append(evt)

	r.logger.Info("effect sequence truncated",
		zap.String("match_id", r.id),
		zap.String("action_id", f.action.ID),
		zap.Int("index", failure.Index),
		zap.String("step", failure.Step),
		zap.Error(cause),
	)

	if f.stage == stageEffects {
		f.enterAfter()
		return
	}
	r.complete(f)
}

func (r *Resolver) complete(f *frame) {
	r.stack = r.stack[:len(r.stack)-1]
	if err := r.depth.EndResolution(f.action.ID); err != nil {
		r.fault(fmt.Errorf("%v: %w", err, rules.ErrStateInvariant))
		return
	}
	if err := r.state.CheckInvariants(); err != nil {
		r.fault(err)
		return
	}
	done := rules.NewEvent(rules.EventActionCompleted, f.action.SourceID, f.action.SourceID, f.action.Controller)
	done.ActionID = f.action.ID
	r.log.Append(done)
}

// advance enters the next phase once the closing phase has nothing left to resolve.
func (r *Resolver) advance() {
	next := ""
	if r.state.Phase() == rules.PhaseEndOfTurn {
		next = r.state.Opponent(r.state.ActivePlayer())
	}
	r.state.ClearReveals()
	r.log.Append(r.state.Turn.Advance(next)...)
}

// fault ends the match after an internal consistency failure.
func (r *Resolver) fault(cause error) {
	r.logger.Error("state invariant violated, ending match",
		zap.String("match_id", r.id),
		zap.Error(cause),
	)
	if !r.state.End(state.Outcome{Reason: cause.Error(), Fault: true}) {
		return
	}
	failure := rules.NewEvent(rules.EventStateInvariantFailure, "", "", "")
	failure.Metadata["error"] = cause.Error()
	ended := rules.NewEvent(rules.EventMatchEnded, "", "", "")
	ended.Metadata["reason"] = "fault"
	r.log.Append(failure, ended)
}

// end moves the match to its terminal state outside of any effect.
func (r *Resolver) end(outcome state.Outcome) {
	if !r.state.End(outcome) {
		return
	}
	evt := rules.NewEvent(rules.EventMatchEnded, "", "", outcome.Winner)
	evt.TargetPlayerID = outcome.Winner
	evt.Metadata["reason"] = outcome.Reason
	evt.Metadata["draw"] = strconv.FormatBool(outcome.Draw)
	r.log.Append(evt)
}

// finish clears resolution state after the match ended and prepares the
// summary for the history sink.
func (r *Resolver) finish() {
	r.pending = nil
	r.stack = nil
	r.offers = nil
	r.queue = action.NewQueue()
	r.depth.Reset()
	if r.summary != nil || r.reported {
		return
	}

	outcome := r.state.Outcome
	summary := history.Summary{
		MatchID:     r.id,
		Format:      r.format,
		Competitive: r.competitive,
		Winner:      outcome.Winner,
		Draw:        outcome.Draw,
		Reason:      outcome.Reason,
		Fault:       outcome.Fault,
		EndedAt:     time.Now().UTC(),
	}
	for _, p := range r.state.Players() {
		summary.Players = append(summary.Players, history.PlayerResult{
			PlayerID: p.ID,
			DeckName: r.decks[p.ID],
			Won:      outcome.Winner != "" && outcome.Winner == p.ID,
		})
	}
	r.summary = &summary
	r.logger.Info("match ended",
		zap.String("match_id", r.id),
		zap.String("winner", outcome.Winner),
		zap.Bool("draw", outcome.Draw),
		zap.Bool("fault", outcome.Fault),
		zap.String("reason", outcome.Reason),
	)
}

// takeSummary hands out the terminal summary exactly once.
func (r *Resolver) takeSummary() *history.Summary {
	if r.reported || r.summary == nil {
		return nil
	}
	r.reported = true
	s := r.summary
	r.summary = nil
	return s
}
