package rules

// WindowKind identifies the timing window a log entry opens.
type WindowKind string

const (
	// WindowBefore opens on an about-to entry, before the announced effect applies.
	WindowBefore WindowKind = "BEFORE"
	// WindowAfter opens on an entry describing something that happened.
	WindowAfter WindowKind = "AFTER"
	// WindowEndOfPhase opens on the end-of-phase and end-of-turn anchors.
	WindowEndOfPhase WindowKind = "END_OF_PHASE"
)

// WindowFor returns the timing window opened by an entry.
func WindowFor(evt Event) WindowKind {
	if evt.IsBefore() {
		return WindowBefore
	}
	switch evt.Type {
	case EventEndOfPhase, EventEndOfTurn:
		return WindowEndOfPhase
	default:
		return WindowAfter
	}
}
