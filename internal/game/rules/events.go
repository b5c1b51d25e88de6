package rules

import (
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Turn and phase events
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventStartOfTurn  EventType = "START_OF_TURN"
	EventEndOfPhase   EventType = "END_OF_PHASE"
	EventEndOfTurn    EventType = "END_OF_TURN"

	// Card movement events
	EventCardMoved    EventType = "CARD_MOVED"
	EventCardStacked  EventType = "CARD_STACKED"
	EventCardDetached EventType = "CARD_DETACHED"
	EventZoneShuffled EventType = "ZONE_SHUFFLED"

	// Force events
	EventForceUsed      EventType = "FORCE_USED"
	EventForceActivated EventType = "FORCE_ACTIVATED"

	// Information events
	EventHandRevealed EventType = "HAND_REVEALED"
	EventTagSet       EventType = "TAG_SET"
	EventTagCleared   EventType = "TAG_CLEARED"

	// About-to events open a before window for the primitive that announced them.
	EventAboutToRevealHand       EventType = "ABOUT_TO_REVEAL_HAND"
	EventAboutToPlaceRandomCards EventType = "ABOUT_TO_PLACE_RANDOM_CARDS"

	// Resolution bookkeeping
	EventActionInitiated       EventType = "ACTION_INITIATED"
	EventActionCompleted       EventType = "ACTION_COMPLETED"
	EventTriggerDeclined       EventType = "TRIGGER_DECLINED"
	EventPartialEffectFailure  EventType = "PARTIAL_EFFECT_FAILURE"
	EventMatchEnded            EventType = "MATCH_ENDED"
	EventStateInvariantFailure EventType = "STATE_INVARIANT_FAILURE"
)

// Timing distinguishes entries describing something that already happened
// from entries announcing something about to happen.
type Timing string

const (
	TimingAfter  Timing = "AFTER"
	TimingBefore Timing = "BEFORE"
)

// Event is an immutable Effect Result recorded in the event log.
type Event struct {
	Seq            int64 // Assigned by the event log on append
	Type           EventType
	Timing         Timing
	ActionID       string   // Action that produced the entry
	SourceID       string   // Card whose ability produced the entry
	PlayerID       string   // Player who caused the entry
	TargetID       string   // Primary card affected
	TargetPlayerID string   // Player whose cards or resources are affected
	CardIDs        []string // Every card affected, for multi-card entries
	Amount         int
	FromZone       string
	ToZone         string
	Turn           int
	Phase          Phase
	Metadata       map[string]string
	Timestamp      time.Time
}

// IsBefore reports whether the entry announces an effect that has not happened yet.
func (e Event) IsBefore() bool {
	return e.Timing == TimingBefore
}

// Involves reports whether the entry names the card.
func (e Event) Involves(cardID string) bool {
	if e.TargetID == cardID {
		return true
	}
	for _, id := range e.CardIDs {
		if id == cardID {
			return true
		}
	}
	return false
}

// Meta returns a metadata value or the empty string.
func (e Event) Meta(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, targetID, sourceID, playerID string) Event {
	return Event{
		Type:      eventType,
		Timing:    TimingAfter,
		TargetID:  targetID,
		SourceID:  sourceID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, targetID, sourceID, playerID string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID, playerID)
	evt.Amount = amount
	return evt
}

// NewAboutToEvent creates a before-timing entry announcing an effect on a player's cards.
func NewAboutToEvent(eventType EventType, sourceID, playerID, targetPlayerID string) Event {
	evt := NewEvent(eventType, "", sourceID, playerID)
	evt.Timing = TimingBefore
	evt.TargetPlayerID = targetPlayerID
	return evt
}
