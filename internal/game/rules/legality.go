package rules

import (
	"fmt"
)

// LegalityChecker validates whether an action may be offered or started.
type LegalityChecker struct {
	gameState GameStateAccessor
}

// GameStateAccessor provides access to game state needed for legality checks.
type GameStateAccessor interface {
	// FindCard finds a card by ID in any zone
	FindCard(cardID string) (CardInfo, bool)
	// FindPlayer finds player info by ID
	FindPlayer(playerID string) (PlayerInfo, bool)
	// CurrentPhase returns the phase in progress
	CurrentPhase() Phase
	// ActivePlayer returns the player whose turn it is
	ActivePlayer() string
	// MatchEnded reports whether the match reached its terminal state
	MatchEnded() bool
}

// CardInfo provides information about a card for legality checks.
type CardInfo struct {
	ID           string
	Title        string
	Zone         string
	ControllerID string
	OwnerID      string
	OutOfPlay    bool
}

// PlayerInfo provides information about a player for legality checks.
type PlayerInfo struct {
	PlayerID string
	Force    int
	Conceded bool
}

// ActionKind describes where an action came from.
type ActionKind string

const (
	// ActionKindActivated is an ability a player chose to use.
	ActionKindActivated ActionKind = "ACTIVATED"
	// ActionKindTriggered is an ability produced by a trigger condition.
	ActionKindTriggered ActionKind = "TRIGGERED"
	// ActionKindRules is an action the game rules perform on their own.
	ActionKindRules ActionKind = "RULES"
)

// LegalityRequest describes the action being checked.
type LegalityRequest struct {
	ActionID    string
	Kind        ActionKind
	Controller  string
	SourceID    string
	SourceZone  string  // Zone kind the source must occupy; empty means any
	Phases      []Phase // Phases the action may start in; empty means any
	OwnTurnOnly bool
}

// LegalityResult represents the result of a legality check.
type LegalityResult struct {
	Legal   bool
	Reason  string
	Details map[string]string
}

// NewLegalityChecker creates a new legality checker.
func NewLegalityChecker(gameState GameStateAccessor) *LegalityChecker {
	return &LegalityChecker{
		gameState: gameState,
	}
}

// Check validates an action request against the current game state.
func (lc *LegalityChecker) Check(req LegalityRequest) LegalityResult {
	if lc == nil || lc.gameState == nil {
		return LegalityResult{
			Legal:  false,
			Reason: "Legality checker not initialized",
		}
	}

	// Check 1: Match still running
	if lc.gameState.MatchEnded() {
		return LegalityResult{Legal: false, Reason: "Match has ended"}
	}

	// Check 2: Controller still in the match
	if req.Controller != "" {
		player, found := lc.gameState.FindPlayer(req.Controller)
		if !found {
			return LegalityResult{
				Legal:   false,
				Reason:  "Controller not found",
				Details: map[string]string{"controller_id": req.Controller},
			}
		}
		if player.Conceded {
			return LegalityResult{
				Legal:   false,
				Reason:  "Controller has conceded",
				Details: map[string]string{"controller_id": req.Controller},
			}
		}
	}

	// Check 3: Source card exists, is where the ability works from, and is controlled by the caller
	if req.SourceID != "" {
		if result := lc.checkSource(req); !result.Legal {
			return result
		}
	}

	// Check 4: Timing restrictions
	if result := lc.checkTiming(req); !result.Legal {
		return result
	}

	return LegalityResult{
		Legal:  true,
		Reason: "All legality checks passed",
	}
}

func (lc *LegalityChecker) checkSource(req LegalityRequest) LegalityResult {
	card, found := lc.gameState.FindCard(req.SourceID)
	if !found {
		return LegalityResult{
			Legal:   false,
			Reason:  "Source card not found",
			Details: map[string]string{"source_id": req.SourceID},
		}
	}
	if card.OutOfPlay {
		return LegalityResult{
			Legal:   false,
			Reason:  "Source card is out of play",
			Details: map[string]string{"source_id": req.SourceID},
		}
	}
	if req.SourceZone != "" && card.Zone != req.SourceZone {
		return LegalityResult{
			Legal:  false,
			Reason: "Source card not in valid zone",
			Details: map[string]string{
				"source_id":     req.SourceID,
				"source_zone":   card.Zone,
				"required_zone": req.SourceZone,
			},
		}
	}
	if req.Kind == ActionKindActivated && req.Controller != "" && card.ControllerID != req.Controller {
		return LegalityResult{
			Legal:  false,
			Reason: "Source card controlled by another player",
			Details: map[string]string{
				"source_id":     req.SourceID,
				"controller_id": card.ControllerID,
			},
		}
	}
	return LegalityResult{Legal: true}
}

func (lc *LegalityChecker) checkTiming(req LegalityRequest) LegalityResult {
	// Triggered and rules actions start whenever their window opens.
	if req.Kind != ActionKindActivated {
		return LegalityResult{Legal: true}
	}

	if req.OwnTurnOnly && lc.gameState.ActivePlayer() != req.Controller {
		return LegalityResult{
			Legal:   false,
			Reason:  "Action only allowed during own turn",
			Details: map[string]string{"active_player": lc.gameState.ActivePlayer()},
		}
	}

	if len(req.Phases) == 0 {
		return LegalityResult{Legal: true}
	}
	current := lc.gameState.CurrentPhase()
	for _, phase := range req.Phases {
		if phase == current {
			return LegalityResult{Legal: true}
		}
	}
	return LegalityResult{
		Legal:  false,
		Reason: "Timing restriction violation",
		Details: map[string]string{
			"phase":  current.String(),
			"phases": fmt.Sprintf("%v", req.Phases),
		},
	}
}
