package server

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gempswccg/swccg-server/internal/game"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/history"
)

var errNoHistory = errors.New("match history is not configured")

func missing(field string) error {
	return fmt.Errorf("%s is required: %w", field, errBadRequest)
}

// codeFor maps an engine error to the gRPC code clients branch on.
func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, rules.ErrMatchNotFound):
		return codes.NotFound
	case errors.Is(err, rules.ErrStaleDecision):
		return codes.Aborted
	case errors.Is(err, errBadRequest),
		errors.Is(err, game.ErrInvalidSetup),
		errors.Is(err, rules.ErrInvalidSelection):
		return codes.InvalidArgument
	case errors.Is(err, rules.ErrIllegalAction),
		errors.Is(err, rules.ErrUnaffordableCost),
		errors.Is(err, rules.ErrNoPendingDecision),
		errors.Is(err, rules.ErrMatchEnded):
		return codes.FailedPrecondition
	case errors.Is(err, history.ErrDuplicateMatch):
		return codes.AlreadyExists
	case errors.Is(err, errNoHistory):
		return codes.Unimplemented
	default:
		return codes.Internal
	}
}

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codeFor(err), err.Error())
}
