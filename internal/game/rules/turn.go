package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase represents the phases of a Star Wars CCG turn.
type Phase int

const (
	PhaseStartOfTurn Phase = iota
	PhaseActivate
	PhaseControl
	PhaseDeploy
	PhaseBattle
	PhaseMove
	PhaseDraw
	PhaseEndOfTurn
)

var phaseNames = map[Phase]string{
	PhaseStartOfTurn: "START_OF_TURN",
	PhaseActivate:    "ACTIVATE",
	PhaseControl:     "CONTROL",
	PhaseDeploy:      "DEPLOY",
	PhaseBattle:      "BATTLE",
	PhaseMove:        "MOVE",
	PhaseDraw:        "DRAW",
	PhaseEndOfTurn:   "END_OF_TURN",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// ParsePhase converts a phase name back into a Phase.
func ParsePhase(name string) (Phase, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for phase, phaseName := range phaseNames {
		if phaseName == name {
			return phase, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// turnSequence is the fixed order of phases within one turn.
var turnSequence = []Phase{
	PhaseStartOfTurn,
	PhaseActivate,
	PhaseControl,
	PhaseDeploy,
	PhaseBattle,
	PhaseMove,
	PhaseDraw,
	PhaseEndOfTurn,
}

// TurnManager tracks the active player and phase progression.
// A transition happens in two halves: EndPhase announces the end of the
// current phase, and Advance enters the next one once nothing is pending.
type TurnManager struct {
	orderIndex   int
	turnNumber   int
	activePlayer string
	closing      bool
}

// NewTurnManager creates a new turn manager initialized at turn 1, start of turn.
func NewTurnManager(activePlayer string) *TurnManager {
	return &TurnManager{
		turnNumber:   1,
		activePlayer: strings.TrimSpace(activePlayer),
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	return tm.activePlayer
}

// Closing reports whether the current phase has ended and is waiting to advance.
func (tm *TurnManager) Closing() bool {
	return tm.closing
}

// Begin returns the entries that open the very first turn of a match.
func (tm *TurnManager) Begin() []Event {
	return tm.enterEvents()
}

// EndPhase marks the current phase as ending and returns its end-of-phase
// anchors. Ending the last phase of a turn also produces the end-of-turn anchor.
func (tm *TurnManager) EndPhase() []Event {
	if tm.closing {
		return nil
	}
	tm.closing = true

	events := []Event{tm.stamp(NewEvent(EventEndOfPhase, "", "", tm.activePlayer))}
	if tm.CurrentPhase() == PhaseEndOfTurn {
		events = append(events, tm.stamp(NewEvent(EventEndOfTurn, "", "", tm.activePlayer)))
	}
	return events
}

// Advance enters the next phase. When the end of the turn is reached the turn
// number is incremented and the active player is rotated to nextActivePlayer
// if provided.
func (tm *TurnManager) Advance(nextActivePlayer string) []Event {
	tm.closing = false
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
		if next := strings.TrimSpace(nextActivePlayer); next != "" {
			tm.activePlayer = next
		}
	}
	return tm.enterEvents()
}

// Clone returns an independent copy of the turn manager.
func (tm *TurnManager) Clone() *TurnManager {
	clone := *tm
	return &clone
}

func (tm *TurnManager) enterEvents() []Event {
	changed := tm.stamp(NewEvent(EventPhaseChanged, "", "", tm.activePlayer))
	changed.Metadata["phase"] = tm.CurrentPhase().String()
	events := []Event{changed}
	if tm.CurrentPhase() == PhaseStartOfTurn {
		events = append(events, tm.stamp(NewEvent(EventStartOfTurn, "", "", tm.activePlayer)))
	}
	return events
}

func (tm *TurnManager) stamp(evt Event) Event {
	evt.Turn = tm.turnNumber
	evt.Phase = tm.CurrentPhase()
	evt.Metadata["turn"] = strconv.Itoa(tm.turnNumber)
	return evt
}
