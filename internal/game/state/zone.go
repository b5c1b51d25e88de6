package state

import "fmt"

// ZoneKind names a kind of card container.
type ZoneKind string

const (
	ZoneHand        ZoneKind = "HAND"
	ZoneReserveDeck ZoneKind = "RESERVE_DECK"
	ZoneForcePile   ZoneKind = "FORCE_PILE"
	ZoneUsedPile    ZoneKind = "USED_PILE"
	ZoneLostPile    ZoneKind = "LOST_PILE"
	ZoneOutOfPlay   ZoneKind = "OUT_OF_PLAY"
	// ZoneTable holds every card in play, for both players.
	ZoneTable ZoneKind = "TABLE"
	// ZoneStacked holds the cards stacked beneath one host card.
	ZoneStacked ZoneKind = "STACKED"
)

// playerZoneKinds lists the zones every player owns, in display order.
var playerZoneKinds = []ZoneKind{
	ZoneHand,
	ZoneReserveDeck,
	ZoneForcePile,
	ZoneUsedPile,
	ZoneLostPile,
	ZoneOutOfPlay,
}

// Ordered reports whether the order of cards in the zone is meaningful.
func (k ZoneKind) Ordered() bool {
	return k != ZoneHand
}

// ZoneID identifies one zone. Scope is the owning player for player zones,
// the host card for stacked zones and empty for the table.
type ZoneID struct {
	Kind  ZoneKind
	Scope string
}

func (z ZoneID) String() string {
	if z.Scope == "" {
		return string(z.Kind)
	}
	return fmt.Sprintf("%s:%s", z.Kind, z.Scope)
}

// Table is the shared in-play zone.
var Table = ZoneID{Kind: ZoneTable}

// HandOf returns the player's hand.
func HandOf(player string) ZoneID { return ZoneID{Kind: ZoneHand, Scope: player} }

// ReserveDeckOf returns the player's Reserve Deck.
func ReserveDeckOf(player string) ZoneID { return ZoneID{Kind: ZoneReserveDeck, Scope: player} }

// ForcePileOf returns the player's Force Pile.
func ForcePileOf(player string) ZoneID { return ZoneID{Kind: ZoneForcePile, Scope: player} }

// UsedPileOf returns the player's Used Pile.
func UsedPileOf(player string) ZoneID { return ZoneID{Kind: ZoneUsedPile, Scope: player} }

// LostPileOf returns the player's Lost Pile.
func LostPileOf(player string) ZoneID { return ZoneID{Kind: ZoneLostPile, Scope: player} }

// OutOfPlayOf returns the player's out-of-play area. Cards never leave it.
func OutOfPlayOf(player string) ZoneID { return ZoneID{Kind: ZoneOutOfPlay, Scope: player} }

// StackedOn returns the zone holding cards stacked beneath the host.
func StackedOn(hostID string) ZoneID { return ZoneID{Kind: ZoneStacked, Scope: hostID} }

// Position selects where a card lands in an ordered zone.
type Position int

const (
	// PositionTop places the card first.
	PositionTop Position = 0
	// PositionBottom places the card last.
	PositionBottom Position = -1
)
