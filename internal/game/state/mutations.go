package state

import (
	"fmt"

	"github.com/gempswccg/swccg-server/internal/game/rules"
)

// MoveCard moves a card between two unstacked zones. The caller states where
// it believes the card is; a mismatch is reported as a state invariant
// violation and nothing changes.
func (gs *GameState) MoveCard(cardID string, from, to ZoneID, pos Position) (rules.Event, error) {
	card, idx, err := gs.locate(cardID, from)
	if err != nil {
		return rules.Event{}, fmt.Errorf("move: %w", err)
	}
	if from.Kind == ZoneStacked || to.Kind == ZoneStacked {
		return rules.Event{}, fmt.Errorf("move %s: stacked cards change zones through attach and detach: %w", cardID, rules.ErrStateInvariant)
	}
	if from.Kind == ZoneOutOfPlay {
		return rules.Event{}, fmt.Errorf("move %s: out of play is terminal: %w", cardID, rules.ErrStateInvariant)
	}
	if err := gs.validDestination(to); err != nil {
		return rules.Event{}, fmt.Errorf("move %s: %w", cardID, err)
	}

	gs.removeAt(from, idx)
	gs.insert(to, cardID, pos)
	card.Zone = to
	if to.Kind != ZoneTable {
		card.Controller = card.Owner
	}
	if err := gs.verifyPlacement(card, to); err != nil {
		return rules.Event{}, fmt.Errorf("move %s: %w", cardID, err)
	}

	evt := gs.newEvent(rules.EventCardMoved, cardID)
	evt.CardIDs = []string{cardID}
	evt.TargetPlayerID = card.Owner
	evt.FromZone = from.String()
	evt.ToZone = to.String()
	return evt, nil
}

// Attach stacks a card beneath a host. The attach relation stays acyclic: a
// card may not be stacked on anything it ultimately contains.
func (gs *GameState) Attach(cardID, hostID string, faceDown bool) (rules.Event, error) {
	card, ok := gs.cards[cardID]
	if !ok {
		return rules.Event{}, fmt.Errorf("attach: unknown card %s: %w", cardID, rules.ErrStateInvariant)
	}
	host, ok := gs.cards[hostID]
	if !ok {
		return rules.Event{}, fmt.Errorf("attach %s: unknown host %s: %w", cardID, hostID, rules.ErrStateInvariant)
	}
	if host.OutOfPlay() || card.OutOfPlay() {
		return rules.Event{}, fmt.Errorf("attach %s to %s: out of play is terminal: %w", cardID, hostID, rules.ErrStateInvariant)
	}
	for ancestor := hostID; ancestor != ""; ancestor = gs.cards[ancestor].Host {
		if ancestor == cardID {
			return rules.Event{}, fmt.Errorf("attach %s to %s would create a cycle: %w", cardID, hostID, rules.ErrStateInvariant)
		}
	}

	from := card.Zone
	_, idx, err := gs.locate(cardID, from)
	if err != nil {
		return rules.Event{}, fmt.Errorf("attach: %w", err)
	}
	to := StackedOn(hostID)

	gs.removeAt(from, idx)
	gs.insert(to, cardID, PositionBottom)
	card.Zone = to
	card.Host = hostID
	card.FaceDown = faceDown
	card.Controller = card.Owner
	if err := gs.verifyPlacement(card, to); err != nil {
		return rules.Event{}, fmt.Errorf("attach %s: %w", cardID, err)
	}

	evt := gs.newEvent(rules.EventCardStacked, cardID)
	evt.CardIDs = []string{cardID}
	evt.TargetPlayerID = card.Owner
	evt.FromZone = from.String()
	evt.ToZone = to.String()
	evt.Metadata["host"] = hostID
	if faceDown {
		evt.Metadata["face_down"] = "true"
	}
	return evt, nil
}

// Detach removes a stacked card from beneath its host and places it in the
// destination zone.
func (gs *GameState) Detach(cardID string, to ZoneID, pos Position) (rules.Event, error) {
	card, ok := gs.cards[cardID]
	if !ok {
		return rules.Event{}, fmt.Errorf("detach: unknown card %s: %w", cardID, rules.ErrStateInvariant)
	}
	if card.Host == "" {
		return rules.Event{}, fmt.Errorf("detach %s: card is not stacked: %w", cardID, rules.ErrStateInvariant)
	}
	from := StackedOn(card.Host)
	_, idx, err := gs.locate(cardID, from)
	if err != nil {
		return rules.Event{}, fmt.Errorf("detach: %w", err)
	}
	if to.Kind == ZoneStacked {
		return rules.Event{}, fmt.Errorf("detach %s: destination cannot be a stack: %w", cardID, rules.ErrStateInvariant)
	}
	if err := gs.validDestination(to); err != nil {
		return rules.Event{}, fmt.Errorf("detach %s: %w", cardID, err)
	}

	host := card.Host
	gs.removeAt(from, idx)
	gs.insert(to, cardID, pos)
	card.Zone = to
	card.Host = ""
	card.FaceDown = false
	if err := gs.verifyPlacement(card, to); err != nil {
		return rules.Event{}, fmt.Errorf("detach %s: %w", cardID, err)
	}

	evt := gs.newEvent(rules.EventCardDetached, cardID)
	evt.CardIDs = []string{cardID}
	evt.TargetPlayerID = card.Owner
	evt.FromZone = from.String()
	evt.ToZone = to.String()
	evt.Metadata["host"] = host
	return evt, nil
}

// Reorder replaces the order of an ordered zone with a permutation of its cards.
func (gs *GameState) Reorder(z ZoneID, order []string) (rules.Event, error) {
	current := gs.zones[z]
	if len(order) != len(current) {
		return rules.Event{}, fmt.Errorf("reorder %s: got %d cards, zone holds %d: %w", z, len(order), len(current), rules.ErrStateInvariant)
	}
	members := make(map[string]int, len(current))
	for _, id := range current {
		members[id]++
	}
	for _, id := range order {
		if members[id] == 0 {
			return rules.Event{}, fmt.Errorf("reorder %s: %s is not a member: %w", z, id, rules.ErrStateInvariant)
		}
		members[id]--
	}
	gs.zones[z] = append([]string(nil), order...)

	evt := gs.newEvent(rules.EventZoneShuffled, "")
	evt.TargetPlayerID = z.Scope
	evt.ToZone = z.String()
	evt.Amount = len(order)
	return evt, nil
}

// SetTag sets or clears a tag on a card.
func (gs *GameState) SetTag(cardID, tag string, on bool) (rules.Event, error) {
	card, ok := gs.cards[cardID]
	if !ok {
		return rules.Event{}, fmt.Errorf("tag: unknown card %s: %w", cardID, rules.ErrStateInvariant)
	}
	eventType := rules.EventTagCleared
	if on {
		card.Tags[tag] = struct{}{}
		eventType = rules.EventTagSet
	} else {
		delete(card.Tags, tag)
	}
	evt := gs.newEvent(eventType, cardID)
	evt.CardIDs = []string{cardID}
	evt.Metadata["tag"] = tag
	return evt, nil
}

// locate confirms the card is in the zone the caller believes it is in.
func (gs *GameState) locate(cardID string, zone ZoneID) (*Card, int, error) {
	card, ok := gs.cards[cardID]
	if !ok {
		return nil, -1, fmt.Errorf("unknown card %s: %w", cardID, rules.ErrStateInvariant)
	}
	if card.Zone != zone {
		return nil, -1, fmt.Errorf("card %s is in %s, not %s: %w", cardID, card.Zone, zone, rules.ErrStateInvariant)
	}
	idx := indexOf(gs.zones[zone], cardID)
	if idx < 0 {
		return nil, -1, fmt.Errorf("card %s missing from %s: %w", cardID, zone, rules.ErrStateInvariant)
	}
	return card, idx, nil
}

func (gs *GameState) validDestination(z ZoneID) error {
	switch z.Kind {
	case ZoneTable:
		if z.Scope != "" {
			return fmt.Errorf("table zone cannot be scoped to %s: %w", z.Scope, rules.ErrStateInvariant)
		}
	case ZoneStacked:
		if _, ok := gs.cards[z.Scope]; !ok {
			return fmt.Errorf("stack host %s does not exist: %w", z.Scope, rules.ErrStateInvariant)
		}
	case ZoneHand, ZoneReserveDeck, ZoneForcePile, ZoneUsedPile, ZoneLostPile, ZoneOutOfPlay:
		if _, ok := gs.Player(z.Scope); !ok {
			return fmt.Errorf("zone %s belongs to no player: %w", z, rules.ErrStateInvariant)
		}
	default:
		return fmt.Errorf("unknown zone kind %s: %w", z.Kind, rules.ErrStateInvariant)
	}
	return nil
}

func (gs *GameState) verifyPlacement(card *Card, zone ZoneID) error {
	count := 0
	for _, id := range gs.zones[zone] {
		if id == card.ID {
			count++
		}
	}
	if count != 1 || card.Zone != zone {
		return fmt.Errorf("card %s appears %d times in %s: %w", card.ID, count, zone, rules.ErrStateInvariant)
	}
	return nil
}

func (gs *GameState) removeAt(zone ZoneID, idx int) {
	ids := gs.zones[zone]
	ids = append(ids[:idx:idx], ids[idx+1:]...)
	if len(ids) == 0 {
		delete(gs.zones, zone)
		return
	}
	gs.zones[zone] = ids
}

func (gs *GameState) insert(zone ZoneID, cardID string, pos Position) {
	ids := gs.zones[zone]
	idx := int(pos)
	if idx < 0 || idx > len(ids) {
		idx = len(ids)
	}
	updated := make([]string, 0, len(ids)+1)
	updated = append(updated, ids[:idx]...)
	updated = append(updated, cardID)
	updated = append(updated, ids[idx:]...)
	gs.zones[zone] = updated
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}
