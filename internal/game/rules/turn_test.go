package rules

import "testing"

func TestTurnManagerSequence(t *testing.T) {
	tm := NewTurnManager("Alice")

	expected := []Phase{
		PhaseStartOfTurn,
		PhaseActivate,
		PhaseControl,
		PhaseDeploy,
		PhaseBattle,
		PhaseMove,
		PhaseDraw,
		PhaseEndOfTurn,
	}

	for i, exp := range expected {
		if tm.CurrentPhase() != exp {
			t.Fatalf("step %d: expected phase %s, got %s", i, exp, tm.CurrentPhase())
		}
		if i < len(expected)-1 {
			tm.EndPhase()
			tm.Advance("")
		}
	}
}

func TestTurnManagerAdvanceWrapsTurn(t *testing.T) {
	tm := NewTurnManager("Alice")

	// Advance through all but the last phase to remain on turn 1.
	for i := 0; i < 7; i++ {
		tm.EndPhase()
		tm.Advance("Bob")
		if tm.TurnNumber() != 1 {
			t.Fatalf("expected to remain on turn 1, got turn %d at phase %d", tm.TurnNumber(), i)
		}
		if tm.ActivePlayer() != "Alice" {
			t.Fatalf("expected active player to remain Alice during turn, got %s", tm.ActivePlayer())
		}
	}

	endEvents := tm.EndPhase()
	if len(endEvents) != 2 || endEvents[0].Type != EventEndOfPhase || endEvents[1].Type != EventEndOfTurn {
		t.Fatalf("expected end-of-phase and end-of-turn anchors, got %+v", endEvents)
	}
	if endEvents[1].Turn != 1 || endEvents[1].PlayerID != "Alice" {
		t.Fatalf("expected end-of-turn anchor for Alice's turn 1, got turn %d player %s", endEvents[1].Turn, endEvents[1].PlayerID)
	}

	enter := tm.Advance("Bob")
	if tm.TurnNumber() != 2 {
		t.Fatalf("expected turn number 2 after wrap, got %d", tm.TurnNumber())
	}
	if tm.ActivePlayer() != "Bob" {
		t.Fatalf("expected active player Bob after wrap, got %s", tm.ActivePlayer())
	}
	if tm.CurrentPhase() != PhaseStartOfTurn {
		t.Fatalf("expected start of turn after wrap, got %s", tm.CurrentPhase())
	}
	if len(enter) != 2 || enter[0].Type != EventPhaseChanged || enter[1].Type != EventStartOfTurn {
		t.Fatalf("expected phase change and start-of-turn entries, got %+v", enter)
	}
}

func TestTurnManagerEndPhaseIsIdempotentUntilAdvance(t *testing.T) {
	tm := NewTurnManager("Alice")

	if events := tm.EndPhase(); len(events) != 1 {
		t.Fatalf("expected one end-of-phase entry, got %d", len(events))
	}
	if !tm.Closing() {
		t.Fatalf("expected phase to be closing")
	}
	if events := tm.EndPhase(); events != nil {
		t.Fatalf("expected no entries for a phase already closing, got %+v", events)
	}

	events := tm.Advance("Bob")
	if tm.Closing() {
		t.Fatalf("expected closing flag cleared after advance")
	}
	if events[0].Meta("phase") != PhaseActivate.String() {
		t.Fatalf("expected phase metadata %s, got %s", PhaseActivate, events[0].Meta("phase"))
	}
}

func TestTurnManagerCloneIsIndependent(t *testing.T) {
	tm := NewTurnManager("Alice")
	clone := tm.Clone()
	clone.EndPhase()
	clone.Advance("")

	if tm.CurrentPhase() != PhaseStartOfTurn {
		t.Fatalf("expected original to stay at start of turn, got %s", tm.CurrentPhase())
	}
	if clone.CurrentPhase() != PhaseActivate {
		t.Fatalf("expected clone at activate, got %s", clone.CurrentPhase())
	}
}

func TestParsePhase(t *testing.T) {
	for phase, name := range phaseNames {
		parsed, err := ParsePhase(name)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		if parsed != phase {
			t.Fatalf("expected %s, got %s", phase, parsed)
		}
	}
	if _, err := ParsePhase("upkeep"); err == nil {
		t.Fatalf("expected error for unknown phase")
	}
}
