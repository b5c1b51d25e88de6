package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/gempswccg/swccg-server/internal/game/state"
)

// checksum hashes a canonical rendering of everything that affects play:
// turn position, players, zone contents in order, card flags, reveals,
// the log position and the pending decision. Map iteration never leaks in.
func (r *Resolver) checksum() string {
	gs := r.state
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("MATCH:%s|%d|%s|%s|%t|%d\n",
		gs.MatchID,
		gs.TurnNumber(),
		gs.Phase(),
		gs.ActivePlayer(),
		gs.Turn.Closing(),
		r.log.LastSeq(),
	))
	o := gs.Outcome
	buf.WriteString(fmt.Sprintf("OUTCOME:%t|%s|%t|%t|%s\n", o.Ended, o.Winner, o.Draw, o.Fault, o.Reason))

	players := gs.Players()
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	for _, p := range players {
		buf.WriteString(fmt.Sprintf("PLAYER:%s|%d|%t\n", p.ID, p.Force.Amount(), p.Conceded))
		for _, zone := range p.Zones() {
			writeZone(&buf, gs, zone)
		}
	}
	writeZone(&buf, gs, state.Table)

	for _, c := range gs.Cards() {
		stacked := gs.ZoneIDs(state.StackedOn(c.ID))
		if len(stacked) > 0 {
			writeZone(&buf, gs, state.StackedOn(c.ID))
		}
		buf.WriteString(fmt.Sprintf("CARD:%s|%s|%s|%t|%s\n",
			c.ID, c.Controller, c.Host, c.FaceDown, strings.Join(c.TagList(), ",")))
		for _, p := range players {
			if gs.RevealedTo(p.ID, c.ID) {
				buf.WriteString(fmt.Sprintf("REVEALED:%s|%s\n", p.ID, c.ID))
			}
		}
	}

	for _, f := range r.stack {
		buf.WriteString(fmt.Sprintf("FRAME:%s|%d|%d|%t\n", f.action.ID, f.stage, f.index, f.announced))
	}
	for _, a := range r.queue.List() {
		buf.WriteString(fmt.Sprintf("QUEUED:%s\n", a.ID))
	}
	for _, o := range r.offers {
		buf.WriteString(fmt.Sprintf("OFFER:%s|%d\n", o.id, o.depth))
	}
	if r.pending != nil {
		req := r.pending.request
		buf.WriteString(fmt.Sprintf("PENDING:%s|%s|%d|%s\n", req.ID, req.PlayerID, req.Seq, strings.Join(req.OptionIDs(), ",")))
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func writeZone(buf *bytes.Buffer, gs *state.GameState, zone state.ZoneID) {
	ids := gs.ZoneIDs(zone)
	if !zone.Kind.Ordered() {
		sort.Strings(ids)
	}
	buf.WriteString(fmt.Sprintf("ZONE:%s|%s\n", zone, strings.Join(ids, ",")))
}

// Checksum returns the current state hash.
func (r *Resolver) Checksum() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checksum()
}
