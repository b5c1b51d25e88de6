package rules

import (
	"errors"
	"fmt"
)

// Rejections surfaced to callers. Callers match them with errors.Is.
var (
	// ErrIllegalAction reports an ability that is not currently legal.
	ErrIllegalAction = errors.New("illegal action")
	// ErrUnaffordableCost reports a cost phase that cannot be fully paid.
	ErrUnaffordableCost = errors.New("unaffordable cost")
	// ErrStaleDecision reports a response tied to an outdated log sequence number.
	ErrStaleDecision = errors.New("stale decision")
	// ErrStateInvariant reports an internal consistency failure. Always fatal to the match.
	ErrStateInvariant = errors.New("state invariant violation")
	// ErrTargetUnavailable reports an effect whose target is no longer where it was.
	ErrTargetUnavailable = errors.New("target unavailable")
	// ErrInvalidSelection reports a choice response that does not satisfy the request.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrNoPendingDecision reports a choice response while nothing is awaiting input.
	ErrNoPendingDecision = errors.New("no pending decision")
	// ErrMatchEnded reports a command sent to a match in its terminal state.
	ErrMatchEnded = errors.New("match ended")
	// ErrMatchNotFound reports an unknown match id.
	ErrMatchNotFound = errors.New("match not found")
)

// PartialFailure describes an effect sequence truncated by a failing primitive.
// Primitives before Index stay applied.
type PartialFailure struct {
	ActionID string
	Index    int
	Step     string
	Err      error
}

func (p *PartialFailure) Error() string {
	return fmt.Sprintf("action %s stopped at effect %d (%s): %v", p.ActionID, p.Index, p.Step, p.Err)
}

func (p *PartialFailure) Unwrap() error {
	return p.Err
}
