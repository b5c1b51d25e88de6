package action

import (
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// Activated is an ability a player plays deliberately.
type Activated struct {
	Key         string
	Text        string
	Phases      []rules.Phase // Empty allows every phase
	OwnTurnOnly bool
	SourceZone  state.ZoneKind // Zero value means the table
	Condition   func(ctx *Context) bool
	Build       func(ctx *Context) *Action
}

// Zone returns the zone the source must be in.
func (a Activated) Zone() state.ZoneKind {
	if a.SourceZone == "" {
		return state.ZoneTable
	}
	return a.SourceZone
}

// Condition is a trigger condition evaluated against one log entry. It is
// evaluated fresh every time its window opens.
type Condition func(ctx *Context, entry rules.Event) bool

// Trigger reacts to log entries in one timing window.
type Trigger struct {
	Key       string
	Text      string
	Window    rules.WindowKind
	Optional  bool
	Condition Condition
	// Build produces the action. anchor is the action whose announcement
	// opened a before window, nil in other windows.
	Build func(ctx *Context, entry rules.Event, anchor *Action) *Action
}

// Static grants modifiers while the source is in play.
type Static struct {
	Key   string
	Build func(source *state.Card) []modifiers.Modifier
}

// Blueprint is the ability set a card definition contributes.
type Blueprint struct {
	Key       string
	Activated []Activated
	Triggers  []Trigger
	Statics   []Static
}
