// Package choice describes the decisions a match parks on while waiting for a player.
package choice

import (
	"fmt"
	"strings"

	"github.com/gempswccg/swccg-server/internal/game/rules"
)

// Kind represents the type of decision requested.
type Kind string

const (
	// KindSelectCards asks the player to pick cards.
	KindSelectCards Kind = "SELECT_CARDS"
	// KindOptionalTriggers asks the player which optional trigger, if any, to use.
	KindOptionalTriggers Kind = "OPTIONAL_TRIGGERS"
)

// Option is one selectable answer.
type Option struct {
	ID    string
	Label string
}

// Request is a decision a player must make before the match can continue.
type Request struct {
	// ID identifies the request
	ID string
	// PlayerID is the player who must answer
	PlayerID string
	// Seq is the event log sequence number valid when the request was issued
	Seq int64
	// Kind is the type of decision
	Kind Kind
	// Prompt is a human-readable description
	Prompt string
	// Options lists every legal answer
	Options []Option
	// Min is the minimum number of options to select
	Min int
	// Max is the maximum number of options to select
	Max int
}

// Selection is a player's answer to a request.
type Selection struct {
	Chosen []string
}

// Has reports whether the request offers the option.
func (r *Request) Has(optionID string) bool {
	for _, opt := range r.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// OptionIDs returns the option identifiers in offer order.
func (r *Request) OptionIDs() []string {
	ids := make([]string, 0, len(r.Options))
	for _, opt := range r.Options {
		ids = append(ids, opt.ID)
	}
	return ids
}

// Validate checks that the selection answers the request.
func (r *Request) Validate(sel Selection) error {
	if r == nil {
		return fmt.Errorf("request is nil: %w", rules.ErrInvalidSelection)
	}
	count := len(sel.Chosen)
	if count < r.Min {
		return fmt.Errorf("not enough choices: need at least %d, got %d: %w", r.Min, count, rules.ErrInvalidSelection)
	}
	if count > r.Max {
		return fmt.Errorf("too many choices: need at most %d, got %d: %w", r.Max, count, rules.ErrInvalidSelection)
	}

	seen := make(map[string]bool, count)
	var unknown []string
	for _, id := range sel.Chosen {
		if seen[id] {
			return fmt.Errorf("option %s chosen twice: %w", id, rules.ErrInvalidSelection)
		}
		seen[id] = true
		if !r.Has(id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("options not offered: %s: %w", strings.Join(unknown, ","), rules.ErrInvalidSelection)
	}
	return nil
}
