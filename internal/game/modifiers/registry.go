package modifiers

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/game/state"
)

// Registry stores the modifiers of one match. Modifiers are never removed;
// a modifier whose source left play or whose condition is false is skipped.
type Registry struct {
	mu      sync.RWMutex
	mods    []Modifier
	index   map[string]int
	nextSeq int
	logger  *zap.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		index:  make(map[string]int),
		logger: logger,
	}
}

// Register adds a batch of modifiers sharing one registration sequence and
// returns their IDs. Modifiers whose ID is already registered are ignored.
func (r *Registry) Register(mods ...Modifier) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	ids := make([]string, 0, len(mods))
	for _, m := range mods {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if _, exists := r.index[m.ID]; exists {
			ids = append(ids, m.ID)
			continue
		}
		m.seq = r.nextSeq
		r.index[m.ID] = len(r.mods)
		r.mods = append(r.mods, m)
		ids = append(ids, m.ID)
		r.logger.Debug("modifier registered",
			zap.String("modifier_id", m.ID),
			zap.String("source_id", m.SourceID),
			zap.Stringer("kind", m.Kind),
			zap.String("param", string(m.Param)),
			zap.String("rewrite", string(m.Rewrite)),
		)
	}
	return ids
}

// Len returns the number of registered modifiers, active or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mods)
}

// Active returns the modifiers of the kind that currently apply to the
// subject, in fold order: registration sequence, then specificity. A nil
// subject only matches unscoped modifiers.
func (r *Registry) Active(gs *state.GameState, kind Kind, match func(Modifier) bool, subject *state.Card) []Modifier {
	r.mu.RLock()
	candidates := make([]Modifier, 0, len(r.mods))
	for _, m := range r.mods {
		if m.Kind == kind && (match == nil || match(m)) {
			candidates = append(candidates, m)
		}
	}
	r.mu.RUnlock()

	active := candidates[:0]
	for _, m := range candidates {
		if !sourceInPlay(gs, m.SourceID) {
			continue
		}
		if m.Scope != nil && (subject == nil || !m.Scope(gs, subject)) {
			continue
		}
		if m.Condition != nil && !m.Condition(gs) {
			continue
		}
		active = append(active, m)
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].seq != active[j].seq {
			return active[i].seq < active[j].seq
		}
		return active[i].Specificity < active[j].Specificity
	})
	return active
}

// Int folds the numeric modifiers for the parameter onto base.
func (r *Registry) Int(gs *state.GameState, param Param, subject *state.Card, base int) int {
	value := base
	for _, m := range r.Active(gs, KindNumeric, byParam(param), subject) {
		value += m.Delta
	}
	return value
}

// Flag folds the flag modifiers for the parameter onto base. The last
// modifier in fold order decides.
func (r *Registry) Flag(gs *state.GameState, param Param, subject *state.Card, base bool) bool {
	value := base
	for _, m := range r.Active(gs, KindFlag, byParam(param), subject) {
		value = m.Flag
	}
	return value
}

// HasRewrite reports whether an active game-text modifier rewrites the subject.
func (r *Registry) HasRewrite(gs *state.GameState, subject *state.Card, rewrite Rewrite) bool {
	return len(r.Active(gs, KindGameText, func(m Modifier) bool { return m.Rewrite == rewrite }, subject)) > 0
}

func byParam(param Param) func(Modifier) bool {
	return func(m Modifier) bool { return m.Param == param }
}

func sourceInPlay(gs *state.GameState, sourceID string) bool {
	if sourceID == "" {
		return true
	}
	card, ok := gs.Card(sourceID)
	return ok && card.InPlay()
}
