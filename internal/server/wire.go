package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gempswccg/swccg-server/internal/game"
	"github.com/gempswccg/swccg-server/internal/game/choice"
	"github.com/gempswccg/swccg-server/internal/game/rules"
	"github.com/gempswccg/swccg-server/internal/game/state"
	"github.com/gempswccg/swccg-server/internal/history"
)

// errBadRequest reports a request body that does not decode.
var errBadRequest = errors.New("malformed request")

// decode reads a Struct message into a request type.
func decode(in *structpb.Struct, v any) error {
	if in == nil {
		return fmt.Errorf("empty body: %w", errBadRequest)
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("%v: %w", err, errBadRequest)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%v: %w", err, errBadRequest)
	}
	return nil
}

// encode writes a response type as a Struct message.
func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

type cardSetupMsg struct {
	ID         string `json:"id,omitempty"`
	Definition string `json:"definition"`
	Zone       string `json:"zone,omitempty"`
}

type playerSetupMsg struct {
	PlayerID string         `json:"player_id"`
	DeckName string         `json:"deck_name,omitempty"`
	Force    int            `json:"force"`
	Cards    []cardSetupMsg `json:"cards,omitempty"`
}

type startMatchRequest struct {
	MatchID        string           `json:"match_id,omitempty"`
	Format         string           `json:"format,omitempty"`
	Competitive    bool             `json:"competitive,omitempty"`
	Seed           uint64           `json:"seed,omitempty"`
	ActivationBase *int             `json:"activation_base,omitempty"`
	Players        []playerSetupMsg `json:"players"`
}

func (r startMatchRequest) setup(defaultBase int, defaultSeed uint64) game.MatchSetup {
	setup := game.MatchSetup{
		MatchID:        r.MatchID,
		Format:         r.Format,
		Competitive:    r.Competitive,
		Seed:           r.Seed,
		ActivationBase: defaultBase,
	}
	if r.ActivationBase != nil {
		setup.ActivationBase = *r.ActivationBase
	}
	if setup.Seed == 0 {
		setup.Seed = defaultSeed
	}
	for _, p := range r.Players {
		ps := game.PlayerSetup{PlayerID: p.PlayerID, DeckName: p.DeckName, Force: p.Force}
		for _, c := range p.Cards {
			ps.Cards = append(ps.Cards, game.CardSetup{ID: c.ID, Definition: c.Definition, Zone: state.ZoneKind(c.Zone)})
		}
		setup.Players = append(setup.Players, ps)
	}
	return setup
}

type commandRequest struct {
	MatchID  string   `json:"match_id"`
	Kind     string   `json:"kind"`
	PlayerID string   `json:"player_id"`
	ActionID string   `json:"action_id,omitempty"`
	Seq      int64    `json:"seq,omitempty"`
	Chosen   []string `json:"chosen,omitempty"`
}

func (r commandRequest) command() game.Command {
	return game.Command{
		Kind:      game.CommandKind(r.Kind),
		PlayerID:  r.PlayerID,
		ActionID:  r.ActionID,
		Seq:       r.Seq,
		Selection: choice.Selection{Chosen: r.Chosen},
	}
}

type viewRequest struct {
	MatchID string `json:"match_id"`
	Viewer  string `json:"viewer"`
}

type cancelRequest struct {
	MatchID string `json:"match_id"`
	Reason  string `json:"reason,omitempty"`
}

type historyRequest struct {
	MatchID string `json:"match_id"`
	Since   int64  `json:"since,omitempty"`
}

type statsRequest struct {
	PlayerID string `json:"player_id"`
}

type optionMsg struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type decisionMsg struct {
	ID       string      `json:"id"`
	PlayerID string      `json:"player_id"`
	Seq      int64       `json:"seq"`
	Kind     string      `json:"kind"`
	Prompt   string      `json:"prompt"`
	Options  []optionMsg `json:"options"`
	Min      int         `json:"min"`
	Max      int         `json:"max"`
}

func decisionFrom(req *choice.Request) *decisionMsg {
	if req == nil {
		return nil
	}
	msg := &decisionMsg{
		ID:       req.ID,
		PlayerID: req.PlayerID,
		Seq:      req.Seq,
		Kind:     string(req.Kind),
		Prompt:   req.Prompt,
		Min:      req.Min,
		Max:      req.Max,
	}
	for _, opt := range req.Options {
		msg.Options = append(msg.Options, optionMsg{ID: opt.ID, Label: opt.Label})
	}
	return msg
}

type eventMsg struct {
	Seq            int64             `json:"seq"`
	Type           string            `json:"type"`
	Timing         string            `json:"timing,omitempty"`
	ActionID       string            `json:"action_id,omitempty"`
	SourceID       string            `json:"source_id,omitempty"`
	PlayerID       string            `json:"player_id,omitempty"`
	TargetID       string            `json:"target_id,omitempty"`
	TargetPlayerID string            `json:"target_player_id,omitempty"`
	CardIDs        []string          `json:"card_ids,omitempty"`
	Amount         int               `json:"amount,omitempty"`
	FromZone       string            `json:"from_zone,omitempty"`
	ToZone         string            `json:"to_zone,omitempty"`
	Turn           int               `json:"turn"`
	Phase          string            `json:"phase"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

func eventsFrom(events []rules.Event) []eventMsg {
	out := make([]eventMsg, 0, len(events))
	for _, e := range events {
		out = append(out, eventMsg{
			Seq:            e.Seq,
			Type:           string(e.Type),
			Timing:         string(e.Timing),
			ActionID:       e.ActionID,
			SourceID:       e.SourceID,
			PlayerID:       e.PlayerID,
			TargetID:       e.TargetID,
			TargetPlayerID: e.TargetPlayerID,
			CardIDs:        e.CardIDs,
			Amount:         e.Amount,
			FromZone:       e.FromZone,
			ToZone:         e.ToZone,
			Turn:           e.Turn,
			Phase:          e.Phase.String(),
			Metadata:       e.Metadata,
			Timestamp:      e.Timestamp,
		})
	}
	return out
}

type partialMsg struct {
	ActionID string `json:"action_id"`
	Index    int    `json:"index"`
	Step     string `json:"step"`
	Error    string `json:"error"`
}

type resultMsg struct {
	MatchID string       `json:"match_id"`
	Status  string       `json:"status"`
	Seq     int64        `json:"seq"`
	Pending *decisionMsg `json:"pending,omitempty"`
	Partial []partialMsg `json:"partial,omitempty"`
	Events  []eventMsg   `json:"events"`
}

func resultFrom(res game.Result) resultMsg {
	msg := resultMsg{
		MatchID: res.MatchID,
		Status:  string(res.Status),
		Seq:     res.Seq,
		Pending: decisionFrom(res.Pending),
		Events:  eventsFrom(res.Events),
	}
	for _, p := range res.Partial {
		msg.Partial = append(msg.Partial, partialMsg{ActionID: p.ActionID, Index: p.Index, Step: p.Step, Error: p.Err.Error()})
	}
	return msg
}

type cardMsg struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Type       string   `json:"type,omitempty"`
	Owner      string   `json:"owner"`
	Controller string   `json:"controller"`
	Stacked    int      `json:"stacked,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func cardsFrom(cards []game.CardView) []cardMsg {
	out := make([]cardMsg, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardMsg{ID: c.ID, Title: c.Title, Type: c.Type, Owner: c.Owner, Controller: c.Controller, Stacked: c.Stacked, Tags: c.Tags})
	}
	return out
}

type playerMsg struct {
	PlayerID    string    `json:"player_id"`
	Force       int       `json:"force"`
	HandSize    int       `json:"hand_size"`
	ReserveDeck int       `json:"reserve_deck"`
	ForcePile   int       `json:"force_pile"`
	UsedPile    int       `json:"used_pile"`
	LostPile    int       `json:"lost_pile"`
	OutOfPlay   int       `json:"out_of_play"`
	Hand        []cardMsg `json:"hand"`
	Conceded    bool      `json:"conceded,omitempty"`
}

type legalActionMsg struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

type outcomeMsg struct {
	Ended  bool   `json:"ended"`
	Winner string `json:"winner,omitempty"`
	Draw   bool   `json:"draw,omitempty"`
	Reason string `json:"reason,omitempty"`
	Fault  bool   `json:"fault,omitempty"`
}

type viewMsg struct {
	MatchID      string           `json:"match_id"`
	Viewer       string           `json:"viewer"`
	Seq          int64            `json:"seq"`
	Turn         int              `json:"turn"`
	Phase        string           `json:"phase"`
	ActivePlayer string           `json:"active_player"`
	Players      []playerMsg      `json:"players"`
	Table        []cardMsg        `json:"table"`
	LegalActions []legalActionMsg `json:"legal_actions"`
	Pending      *decisionMsg     `json:"pending,omitempty"`
	Outcome      outcomeMsg       `json:"outcome"`
}

func viewFrom(v game.View) viewMsg {
	msg := viewMsg{
		MatchID:      v.MatchID,
		Viewer:       v.Viewer,
		Seq:          v.Seq,
		Turn:         v.Turn,
		Phase:        v.Phase,
		ActivePlayer: v.ActivePlayer,
		Table:        cardsFrom(v.Table),
		Pending:      decisionFrom(v.Pending),
		Outcome: outcomeMsg{
			Ended:  v.Outcome.Ended,
			Winner: v.Outcome.Winner,
			Draw:   v.Outcome.Draw,
			Reason: v.Outcome.Reason,
			Fault:  v.Outcome.Fault,
		},
	}
	for _, p := range v.Players {
		msg.Players = append(msg.Players, playerMsg{
			PlayerID:    p.PlayerID,
			Force:       p.Force,
			HandSize:    p.HandSize,
			ReserveDeck: p.ReserveDeck,
			ForcePile:   p.ForcePile,
			UsedPile:    p.UsedPile,
			LostPile:    p.LostPile,
			OutOfPlay:   p.OutOfPlay,
			Hand:        cardsFrom(p.Hand),
			Conceded:    p.Conceded,
		})
	}
	for _, a := range v.LegalActions {
		msg.LegalActions = append(msg.LegalActions, legalActionMsg{ID: a.ID, SourceID: a.SourceID, Title: a.Title, Text: a.Text})
	}
	return msg
}

type deckStatsMsg struct {
	DeckName string  `json:"deck_name"`
	Format   string  `json:"format"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Perc     float64 `json:"perc"`
}

type statsMsg struct {
	PlayerID    string         `json:"player_id"`
	Casual      []deckStatsMsg `json:"casual"`
	Competitive []deckStatsMsg `json:"competitive"`
}

func deckStatsFrom(stats []history.DeckStats) []deckStatsMsg {
	out := make([]deckStatsMsg, 0, len(stats))
	for _, d := range stats {
		out = append(out, deckStatsMsg{DeckName: d.DeckName, Format: d.Format, Wins: d.Wins, Losses: d.Losses, Perc: d.WinPercentage()})
	}
	return out
}

func statsFrom(s history.Stats) statsMsg {
	return statsMsg{
		PlayerID:    s.PlayerID,
		Casual:      deckStatsFrom(s.Casual),
		Competitive: deckStatsFrom(s.Competitive),
	}
}
