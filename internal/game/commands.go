package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/game/action"
	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// CommandKind names what a player asks the match to do.
type CommandKind string

const (
	CommandPlayAbility CommandKind = "PLAY_ABILITY"
	CommandRespond     CommandKind = "RESPOND"
	CommandPass        CommandKind = "PASS"
	CommandConcede     CommandKind = "CONCEDE"
)

// Command is one player input.
type Command struct {
	Kind      CommandKind
	PlayerID  string
	ActionID  string // PLAY_ABILITY: a LegalAction ID from the player's view
	Seq       int64  // RESPOND: the sequence number the decision was issued at
	Selection choice.Selection
}

// PlayAbility plays one of the player's legal actions.
func PlayAbility(playerID, actionID string) Command {
	return Command{Kind: CommandPlayAbility, PlayerID: playerID, ActionID: actionID}
}

// Respond answers the pending decision issued at seq.
func Respond(playerID string, seq int64, chosen ...string) Command {
	return Command{Kind: CommandRespond, PlayerID: playerID, Seq: seq, Selection: choice.Selection{Chosen: chosen}}
}

// Pass ends the current phase.
func Pass(playerID string) Command {
	return Command{Kind: CommandPass, PlayerID: playerID}
}

// Concede ends the match in the opponent's favour.
func Concede(playerID string) Command {
	return Command{Kind: CommandConcede, PlayerID: playerID}
}

// Status summarises where a command left the match.
type Status string

const (
	StatusApplied Status = "APPLIED"
	StatusPartial Status = "PARTIAL"
	StatusParked  Status = "PARKED"
	StatusEnded   Status = "ENDED"
)

// Result reports the outcome of one command.
type Result struct {
	MatchID string
	Status  Status
	Seq     int64
	Pending *choice.Request // Set when parked
	Partial []*rules.PartialFailure
	Events  []rules.Event // Entries appended by the command
}

func (r *Resolver) result(from int64) Result {
	res := Result{
		MatchID: r.id,
		Seq:     r.log.LastSeq(),
		Partial: r.partials,
		Events:  r.log.Since(from),
	}
	switch {
	case r.state.Ended():
		res.Status = StatusEnded
	case r.pending != nil:
		res.Status = StatusParked
		req := *r.pending.request
		res.Pending = &req
	case len(r.partials) > 0:
		res.Status = StatusPartial
	default:
		res.Status = StatusApplied
	}
	return res
}

// Apply runs one command to the next settled point. Rejected commands leave
// the match untouched.
func (r *Resolver) Apply(cmd Command) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Ended() {
		return Result{}, fmt.Errorf("match %s: %w", r.id, rules.ErrMatchEnded)
	}
	if _, ok := r.state.Player(cmd.PlayerID); !ok {
		return Result{}, fmt.Errorf("player %q is not in match %s: %w", cmd.PlayerID, r.id, rules.ErrIllegalAction)
	}

	from := r.log.LastSeq()
	r.partials = nil

	var err error
	switch cmd.Kind {
	case CommandPlayAbility:
		err = r.playAbility(cmd)
	case CommandRespond:
		err = r.respond(cmd)
	case CommandPass:
		err = r.pass(cmd)
	case CommandConcede:
		r.concede(cmd.PlayerID)
	default:
		err = fmt.Errorf("unknown command %q: %w", cmd.Kind, rules.ErrIllegalAction)
	}
	if err != nil {
		r.logger.Debug("command rejected",
			zap.String("match_id", r.id),
			zap.String("player_id", cmd.PlayerID),
			zap.String("kind", string(cmd.Kind)),
			zap.Error(err),
		)
		return Result{}, err
	}

	r.settle()
	return r.result(from), nil
}

func (r *Resolver) playAbility(cmd Command) error {
	if r.pending != nil {
		return fmt.Errorf("decision %s is pending: %w", r.pending.request.ID, rules.ErrIllegalAction)
	}
	b, ok := r.findActivated(cmd.ActionID)
	if !ok {
		return fmt.Errorf("unknown action %q: %w", cmd.ActionID, rules.ErrIllegalAction)
	}
	a, err := r.buildActivated(b, cmd.PlayerID)
	if err != nil {
		return err
	}
	return r.begin(a)
}

func (r *Resolver) findActivated(id string) (*activatedBinding, bool) {
	for i := range r.activated {
		if r.activated[i].id == id {
			return &r.activated[i], true
		}
	}
	return nil, false
}

// buildActivated returns the action the binding would start for the player,
// or the reason it is not legal right now.
func (r *Resolver) buildActivated(b *activatedBinding, player string) (*action.Action, error) {
	ctx, ok := r.activatedContext(b)
	if !ok {
		return nil, fmt.Errorf("action %s: source unavailable: %w", b.id, rules.ErrIllegalAction)
	}
	if ctx.Controller != player {
		return nil, fmt.Errorf("action %s: not controlled by %s: %w", b.id, player, rules.ErrIllegalAction)
	}
	candidate := &action.Action{ID: b.id, Kind: rules.ActionKindActivated, SourceID: b.cardID, Controller: player}
	if err := r.checkLegal(candidate, &b.desc); err != nil {
		return nil, err
	}
	if b.desc.Condition != nil && !b.desc.Condition(ctx) {
		return nil, fmt.Errorf("action %s: condition not met: %w", b.id, rules.ErrIllegalAction)
	}
	a := b.desc.Build(ctx)
	if a == nil {
		return nil, fmt.Errorf("action %s: nothing to do: %w", b.id, rules.ErrIllegalAction)
	}
	a.Kind = rules.ActionKindActivated
	return a, nil
}

func (r *Resolver) respond(cmd Command) error {
	if cmd.Seq != r.log.LastSeq() {
		return fmt.Errorf("decision issued at %d, log is at %d: %w", cmd.Seq, r.log.LastSeq(), rules.ErrStaleDecision)
	}
	if r.pending == nil {
		return rules.ErrNoPendingDecision
	}
	req := r.pending.request
	if req.PlayerID != cmd.PlayerID {
		return fmt.Errorf("decision %s belongs to %s: %w", req.ID, req.PlayerID, rules.ErrIllegalAction)
	}
	if err := req.Validate(cmd.Selection); err != nil {
		return err
	}

	if r.pending.frame != nil {
		sel := cmd.Selection
		r.pending.frame.selection = &sel
		r.pending = nil
		return nil
	}

	if len(cmd.Selection.Chosen) == 0 {
		ids := r.pending.offers
		r.pending = nil
		r.declineOffers(ids)
		return nil
	}
	if err := r.acceptOffer(cmd.Selection.Chosen[0]); err != nil {
		return err
	}
	r.pending = nil
	return nil
}

func (r *Resolver) pass(cmd Command) error {
	if r.pending != nil {
		return fmt.Errorf("decision %s is pending: %w", r.pending.request.ID, rules.ErrIllegalAction)
	}
	if cmd.PlayerID != r.state.ActivePlayer() {
		return fmt.Errorf("only %s may end the phase: %w", r.state.ActivePlayer(), rules.ErrIllegalAction)
	}
	if len(r.stack) > 0 || !r.queue.IsEmpty() || r.state.Turn.Closing() {
		return fmt.Errorf("phase is still resolving: %w", rules.ErrIllegalAction)
	}
	r.log.Append(r.state.Turn.EndPhase()...)
	return nil
}

func (r *Resolver) concede(playerID string) {
	if p, ok := r.state.Player(playerID); ok {
		p.Conceded = true
	}
	r.end(state.Outcome{Winner: r.state.Opponent(playerID), Reason: "concession"})
}

// Cancel forces the match into its terminal state without a winner.
func (r *Resolver) Cancel(reason string) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	from := r.log.LastSeq()
	r.partials = nil
	if !r.state.Ended() {
		r.end(state.Outcome{Reason: "cancelled: " + reason})
		r.finish()
	}
	return r.result(from)
}
