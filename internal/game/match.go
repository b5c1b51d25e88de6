package game

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/game/action"
	"github.com/gempswccg/swccg-server/internal/game/catalog"
	"github.com/gempswccg/swccg-server/internal/game/modifiers"
	"github.com/gempswccg/swccg-server/internal/game/random"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// ErrInvalidSetup reports a match setup that cannot be started.
var ErrInvalidSetup = errors.New("invalid match setup")

// CardSetup places one card in a starting zone.
type CardSetup struct {
	ID         string // Optional; derived from the match and seat when empty
	Definition string
	Zone       state.ZoneKind
}

// PlayerSetup describes one seat.
type PlayerSetup struct {
	PlayerID string
	DeckName string
	Force    int
	Cards    []CardSetup
}

// MatchSetup is everything needed to start a match. The first player takes
// the first turn.
type MatchSetup struct {
	MatchID        string
	Format         string
	Competitive    bool
	Seed           uint64 // Zero draws a fresh seed
	ActivationBase int
	Players        []PlayerSetup
}

func (s MatchSetup) validate() error {
	if len(s.Players) != 2 {
		return fmt.Errorf("need 2 players, got %d: %w", len(s.Players), ErrInvalidSetup)
	}
	seen := make(map[string]struct{}, len(s.Players))
	for _, p := range s.Players {
		if p.PlayerID == "" {
			return fmt.Errorf("player id is empty: %w", ErrInvalidSetup)
		}
		if _, dup := seen[p.PlayerID]; dup {
			return fmt.Errorf("player %s seated twice: %w", p.PlayerID, ErrInvalidSetup)
		}
		seen[p.PlayerID] = struct{}{}
		if p.Force < 0 {
			return fmt.Errorf("player %s starts with negative Force: %w", p.PlayerID, ErrInvalidSetup)
		}
	}
	if s.ActivationBase < 0 {
		return fmt.Errorf("negative activation base: %w", ErrInvalidSetup)
	}
	return nil
}

// startZone maps a setup zone kind to the player's zone.
func startZone(kind state.ZoneKind, player string) (state.ZoneID, error) {
	switch kind {
	case state.ZoneTable:
		return state.Table, nil
	case state.ZoneHand, state.ZoneReserveDeck, state.ZoneForcePile,
		state.ZoneUsedPile, state.ZoneLostPile, state.ZoneOutOfPlay:
		return state.ZoneID{Kind: kind, Scope: player}, nil
	case "":
		return state.ReserveDeckOf(player), nil
	default:
		return state.ZoneID{}, fmt.Errorf("cards cannot start in %s: %w", kind, ErrInvalidSetup)
	}
}

// newResolver builds the match, binds every card's abilities and runs it to
// its first settled point.
func newResolver(setup MatchSetup, cat *catalog.Catalog, logger *zap.Logger, maxDepth int) (*Resolver, error) {
	if err := setup.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if setup.MatchID == "" {
		setup.MatchID = uuid.NewString()
	}
	if setup.Seed == 0 {
		setup.Seed = random.NewSeed()
	}
	logger = logger.With(zap.String("match_id", setup.MatchID))

	players := make([]*state.Player, 0, len(setup.Players))
	decks := make(map[string]string, len(setup.Players))
	for _, p := range setup.Players {
		players = append(players, state.NewPlayer(p.PlayerID, p.Force))
		decks[p.PlayerID] = p.DeckName
	}
	gs := state.New(setup.MatchID, rules.NewTurnManager(setup.Players[0].PlayerID), players...)

	r := &Resolver{
		id:             setup.MatchID,
		format:         setup.Format,
		competitive:    setup.Competitive,
		decks:          decks,
		seed:           setup.Seed,
		state:          gs,
		log:            rules.NewEventLog(),
		mods:           modifiers.NewRegistry(logger),
		random:         random.NewSeeded(setup.Seed),
		logger:         logger,
		depth:          rules.NewResolutionContext(maxDepth),
		fired:          action.NewFiredSet(),
		queue:          action.NewQueue(),
		activationBase: setup.ActivationBase,
	}
	r.log.Subscribe(func(evt rules.Event) {
		logger.Debug("entry appended",
			zap.Int64("seq", evt.Seq),
			zap.String("type", string(evt.Type)),
			zap.String("window", string(rules.WindowFor(evt))),
			zap.String("action_id", evt.ActionID),
		)
	})
	r.triggers = append(r.triggers, r.rulesTriggers()...)

	for _, p := range setup.Players {
		for i, c := range p.Cards {
			def, ok := cat.Definition(c.Definition)
			if !ok {
				return nil, fmt.Errorf("player %s card %d: unknown definition %q: %w", p.PlayerID, i, c.Definition, ErrInvalidSetup)
			}
			zone, err := startZone(c.Zone, p.PlayerID)
			if err != nil {
				return nil, err
			}
			id := c.ID
			if id == "" {
				id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(setup.MatchID+"/"+p.PlayerID+"/"+strconv.Itoa(i))).String()
			}
			card, err := gs.AddCard(id, def, p.PlayerID, zone)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", err, ErrInvalidSetup)
			}
			r.bind(card, cat.BlueprintsFor(def))
		}
	}
	if err := gs.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}

	r.log.Append(gs.Turn.Begin()...)
	r.settle()

	logger.Info("match started",
		zap.Int("cards", len(gs.Cards())),
		zap.Int("activated", len(r.activated)),
		zap.Int("triggers", len(r.triggers)),
		zap.Int("modifiers", r.mods.Len()),
		zap.Uint64("seed", setup.Seed),
	)
	return r, nil
}

// bind registers the abilities a card's blueprints contribute.
func (r *Resolver) bind(card *state.Card, blueprints []action.Blueprint) {
	for _, bp := range blueprints {
		for _, desc := range bp.Activated {
			r.activated = append(r.activated, activatedBinding{
				id:     card.ID + "/" + bp.Key + "/" + desc.Key,
				cardID: card.ID,
				desc:   desc,
			})
		}
		for _, desc := range bp.Triggers {
			r.triggers = append(r.triggers, triggerBinding{
				id:     card.ID + "/" + bp.Key + "/" + desc.Key,
				cardID: card.ID,
				desc:   desc,
			})
		}
		for _, static := range bp.Statics {
			r.mods.Register(static.Build(card)...)
		}
	}
}
