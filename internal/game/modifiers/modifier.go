// Package modifiers implements continuously active rule overrides. Modifiers
// are consulted, never executed: a component asking for a parameter folds
// every modifier whose source is in play and whose condition holds right now.
package modifiers

import (
	"github.com/gempswccg/swccg-server/internal/game/filter"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// Kind is the shape of a modifier's transformation.
type Kind int

const (
	// KindNumeric adds Delta to a numeric parameter.
	KindNumeric Kind = iota + 1
	// KindFlag overrides a behavioral flag with Flag.
	KindFlag
	// KindGameText rewrites the game text of the cards in scope.
	KindGameText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "NUMERIC"
	case KindFlag:
		return "FLAG"
	case KindGameText:
		return "GAME_TEXT"
	default:
		return "UNKNOWN"
	}
}

// Param names a parameter other components query.
type Param string

const (
	// ParamExtraCardsRemoved is how many additional cards an effect removes.
	ParamExtraCardsRemoved Param = "EXTRA_CARDS_REMOVED"
	// ParamHandVisible makes a card in an otherwise private hand visible to its opponent.
	ParamHandVisible Param = "HAND_VISIBLE"
	// ParamForceCost adjusts the Force cost of an action from the subject card.
	ParamForceCost Param = "FORCE_COST"
	// ParamForceActivation adjusts how much Force a player activates.
	ParamForceActivation Param = "FORCE_ACTIVATION"
	// ParamCardsKeptInHand adjusts how many cards an effect leaves in a hand.
	ParamCardsKeptInHand Param = "CARDS_KEPT_IN_HAND"
)

// Rewrite names a game-text rewrite.
type Rewrite string

const (
	// RewriteRemoveTwoMoreCards makes an effect that removes cards from a hand remove two more.
	RewriteRemoveTwoMoreCards Rewrite = "REMOVE_TWO_MORE_CARDS"
)

// Condition reports whether a modifier is active in the current state.
type Condition func(gs *state.GameState) bool

// Modifier is one rule override.
type Modifier struct {
	ID          string
	SourceID    string // Card granting the modifier; empty for match-level modifiers
	Kind        Kind
	Param       Param         // Numeric and flag modifiers
	Rewrite     Rewrite       // Game-text modifiers
	Scope       filter.Filter // Subject cards affected; nil affects every subject
	Condition   Condition     // nil means always active
	Delta       int
	Flag        bool
	Specificity int // Orders modifiers registered together; lower folds first
	Description string

	seq int
}

// Seq returns the registration sequence the registry assigned.
func (m Modifier) Seq() int {
	return m.seq
}

// NewNumeric creates a numeric modifier.
func NewNumeric(sourceID string, param Param, delta int, scope filter.Filter, cond Condition) Modifier {
	return Modifier{SourceID: sourceID, Kind: KindNumeric, Param: param, Delta: delta, Scope: scope, Condition: cond}
}

// NewFlag creates a flag modifier.
func NewFlag(sourceID string, param Param, value bool, scope filter.Filter, cond Condition) Modifier {
	return Modifier{SourceID: sourceID, Kind: KindFlag, Param: param, Flag: value, Scope: scope, Condition: cond}
}

// NewGameText creates a game-text rewrite modifier.
func NewGameText(sourceID string, rewrite Rewrite, scope filter.Filter, cond Condition) Modifier {
	return Modifier{SourceID: sourceID, Kind: KindGameText, Rewrite: rewrite, Scope: scope, Condition: cond}
}
