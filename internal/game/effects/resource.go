package effects

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/force"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// UseForce spends Force from a player's pool. Cost modifiers scoped to the
// source card adjust the amount.
type UseForce struct {
	PlayerID string
	Amount   int
}

func (u UseForce) Name() string { return "UseForce" }

func (u UseForce) amount(env *Env) int {
	delta := env.modifiers().Int(env.State, modifiers.ParamForceCost, env.Source(), 0)
	return force.Cost(u.Amount, delta)
}

func (u UseForce) Check(env *Env) error {
	player, ok := env.State.Player(u.PlayerID)
	if !ok {
		return fmt.Errorf("use force: unknown player %s: %w", u.PlayerID, rules.ErrTargetUnavailable)
	}
	amount := u.amount(env)
	if !player.Force.CanUse(amount) {
		return fmt.Errorf("use %d force: %s has %d: %w", amount, u.PlayerID, player.Force.Amount(), rules.ErrUnaffordableCost)
	}
	return nil
}

func (u UseForce) Request(*Env) *choice.Request { return nil }

func (u UseForce) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if err := u.Check(env); err != nil {
		return nil, err
	}
	player, _ := env.State.Player(u.PlayerID)
	amount := u.amount(env)
	if err := player.Force.Use(amount); err != nil {
		return nil, fmt.Errorf("use force: %w: %w", err, rules.ErrUnaffordableCost)
	}
	env.logger().Debug("force used", zap.String("player_id", u.PlayerID), zap.Int("amount", amount))

	evt := rules.NewEventWithAmount(rules.EventForceUsed, "", "", "", amount)
	evt.TargetPlayerID = u.PlayerID
	return env.stamp(evt), nil
}

// ActivateForce adds Force to a player's pool.
type ActivateForce struct {
	PlayerID string
	Amount   int
}

func (a ActivateForce) Name() string { return "ActivateForce" }

func (a ActivateForce) Check(env *Env) error {
	if _, ok := env.State.Player(a.PlayerID); !ok {
		return fmt.Errorf("activate force: unknown player %s: %w", a.PlayerID, rules.ErrTargetUnavailable)
	}
	return nil
}

func (a ActivateForce) Request(*Env) *choice.Request { return nil }

func (a ActivateForce) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if err := a.Check(env); err != nil {
		return nil, err
	}
	player, _ := env.State.Player(a.PlayerID)
	amount := env.modifiers().Int(env.State, modifiers.ParamForceActivation, nil, a.Amount)
	if amount < 0 {
		amount = 0
	}
	player.Force.Add(amount)

	evt := rules.NewEventWithAmount(rules.EventForceActivated, "", "", "", amount)
	evt.TargetPlayerID = a.PlayerID
	return env.stamp(evt), nil
}

// EndMatch moves the match into its terminal state.
type EndMatch struct {
	Winner string
	Draw   bool
	Reason string
}

func (e EndMatch) Name() string { return "EndMatch" }

func (e EndMatch) Check(env *Env) error {
	if env.State.Ended() {
		return fmt.Errorf("end match: %w", rules.ErrMatchEnded)
	}
	return nil
}

func (e EndMatch) Request(*Env) *choice.Request { return nil }

func (e EndMatch) Apply(env *Env, _ choice.Selection) ([]rules.Event, error) {
	if !env.State.End(state.Outcome{Winner: e.Winner, Draw: e.Draw, Reason: e.Reason}) {
		return nil, fmt.Errorf("end match: %w", rules.ErrMatchEnded)
	}
	evt := rules.NewEvent(rules.EventMatchEnded, "", "", "")
	evt.TargetPlayerID = e.Winner
	evt.Metadata["reason"] = e.Reason
	if e.Draw {
		evt.Metadata["draw"] = "true"
	}
	return env.stamp(evt), nil
}
