package rules

import (
	"testing"
)

// mockGameStateAccessor implements GameStateAccessor for testing
type mockGameStateAccessor struct {
	cards   map[string]CardInfo
	players map[string]PlayerInfo
	phase   Phase
	active  string
	ended   bool
}

func newMockGameStateAccessor() *mockGameStateAccessor {
	return &mockGameStateAccessor{
		cards:   make(map[string]CardInfo),
		players: make(map[string]PlayerInfo),
		phase:   PhaseDeploy,
		active:  "player1",
	}
}

func (m *mockGameStateAccessor) FindCard(cardID string) (CardInfo, bool) {
	card, ok := m.cards[cardID]
	return card, ok
}

func (m *mockGameStateAccessor) FindPlayer(playerID string) (PlayerInfo, bool) {
	player, ok := m.players[playerID]
	return player, ok
}

func (m *mockGameStateAccessor) CurrentPhase() Phase { return m.phase }

func (m *mockGameStateAccessor) ActivePlayer() string { return m.active }

func (m *mockGameStateAccessor) MatchEnded() bool { return m.ended }

func newLegalityFixture() *mockGameStateAccessor {
	mockState := newMockGameStateAccessor()
	mockState.players["player1"] = PlayerInfo{PlayerID: "player1", Force: 5}
	mockState.players["player2"] = PlayerInfo{PlayerID: "player2", Force: 5}
	mockState.cards["shield"] = CardInfo{
		ID:           "shield",
		Title:        "Thrown Back (V)",
		Zone:         "TABLE",
		ControllerID: "player1",
		OwnerID:      "player1",
	}
	return mockState
}

func TestLegalityChecker_ControllerValidation(t *testing.T) {
	mockState := newLegalityFixture()
	checker := NewLegalityChecker(mockState)

	req := LegalityRequest{
		ActionID:   "shield/remove",
		Kind:       ActionKindActivated,
		Controller: "player1",
		SourceID:   "shield",
		SourceZone: "TABLE",
	}

	if result := checker.Check(req); !result.Legal {
		t.Errorf("Expected legal action, got illegal: %s", result.Reason)
	}

	req.Controller = "nonexistent"
	if result := checker.Check(req); result.Legal {
		t.Errorf("Expected illegal action with unknown controller")
	}

	mockState.players["player1"] = PlayerInfo{PlayerID: "player1", Conceded: true}
	req.Controller = "player1"
	if result := checker.Check(req); result.Legal || result.Reason != "Controller has conceded" {
		t.Errorf("Expected conceded controller to be rejected, got %+v", result)
	}
}

func TestLegalityChecker_SourceValidation(t *testing.T) {
	mockState := newLegalityFixture()
	checker := NewLegalityChecker(mockState)

	req := LegalityRequest{
		Kind:       ActionKindActivated,
		Controller: "player1",
		SourceID:   "shield",
		SourceZone: "TABLE",
	}

	// Source left the table
	mockState.cards["shield"] = CardInfo{ID: "shield", Zone: "USED_PILE", ControllerID: "player1"}
	if result := checker.Check(req); result.Legal || result.Details["source_zone"] != "USED_PILE" {
		t.Errorf("Expected source zone violation, got %+v", result)
	}

	// Source out of play
	mockState.cards["shield"] = CardInfo{ID: "shield", Zone: "OUT_OF_PLAY", ControllerID: "player1", OutOfPlay: true}
	if result := checker.Check(req); result.Legal {
		t.Errorf("Expected out of play source to be illegal")
	}

	// Source controlled by the opponent
	mockState.cards["shield"] = CardInfo{ID: "shield", Zone: "TABLE", ControllerID: "player2"}
	if result := checker.Check(req); result.Legal {
		t.Errorf("Expected opponent-controlled source to be illegal")
	}

	// Triggered actions do not require the caller to control the source
	req.Kind = ActionKindTriggered
	if result := checker.Check(req); !result.Legal {
		t.Errorf("Expected triggered action to be legal, got %s", result.Reason)
	}

	delete(mockState.cards, "shield")
	if result := checker.Check(req); result.Legal {
		t.Errorf("Expected missing source to be illegal")
	}
}

func TestLegalityChecker_Timing(t *testing.T) {
	mockState := newLegalityFixture()
	checker := NewLegalityChecker(mockState)

	req := LegalityRequest{
		Kind:        ActionKindActivated,
		Controller:  "player1",
		SourceID:    "shield",
		Phases:      []Phase{PhaseDeploy, PhaseMove},
		OwnTurnOnly: true,
	}

	if result := checker.Check(req); !result.Legal {
		t.Fatalf("Expected legal during deploy, got %s", result.Reason)
	}

	mockState.phase = PhaseBattle
	if result := checker.Check(req); result.Legal || result.Reason != "Timing restriction violation" {
		t.Fatalf("Expected timing violation during battle, got %+v", result)
	}

	mockState.phase = PhaseMove
	mockState.active = "player2"
	if result := checker.Check(req); result.Legal {
		t.Fatalf("Expected own-turn restriction to apply")
	}

	// Triggered actions ignore phase restrictions.
	req.Kind = ActionKindTriggered
	if result := checker.Check(req); !result.Legal {
		t.Fatalf("Expected triggered action to ignore timing, got %s", result.Reason)
	}
}

func TestLegalityChecker_MatchEnded(t *testing.T) {
	mockState := newLegalityFixture()
	mockState.ended = true
	checker := NewLegalityChecker(mockState)

	if result := checker.Check(LegalityRequest{Kind: ActionKindRules}); result.Legal {
		t.Fatalf("Expected nothing to be legal after the match ended")
	}
}

func TestLegalityChecker_Uninitialized(t *testing.T) {
	var checker *LegalityChecker
	if result := checker.Check(LegalityRequest{}); result.Legal {
		t.Fatalf("Expected nil checker to reject")
	}
}
