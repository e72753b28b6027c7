package game

import (
	"github.com/silentapi/riftbounddecks/internal/catalog"
)

// Zone names a container of cards within a match.
type Zone string

const (
	ZoneLibrary     Zone = "libraryDeck"
	ZoneHand        Zone = "hand"
	ZoneDiscard     Zone = "discardPile"
	ZoneRuneLibrary Zone = "runeLibrary"
	ZoneRuneField   Zone = "runeField"
	ZoneLegend      Zone = "legendSlot"
	ZoneChampion    Zone = "championSlot"
)

// Rune zone capacities.
const (
	MaxRuneField   = 12
	MaxRuneLibrary = 12
)

// Rune is a rune card on the field. Token identifies the instance from the
// moment it is channelled until it leaves the field; the exhausted flag is
// bound to the instance, not to its position.
type Rune struct {
	ID        catalog.CardID `json:"id"`
	Token     string         `json:"token"`
	Exhausted bool           `json:"exhausted"`
}

// LegendSlot holds the legend of the deck.
type LegendSlot struct {
	ID        catalog.CardID `json:"id"`
	Exhausted bool           `json:"exhausted"`
}

// Empty reports whether no legend is present.
func (l LegendSlot) Empty() bool {
	return l.ID.IsEmpty()
}

// zones is the mutable runtime state owned by a Match.
type zones struct {
	library     []catalog.CardID // head is the next draw
	hand        []catalog.CardID
	discard     []catalog.CardID // appended at the tail
	runeLibrary []catalog.CardID // head is the top
	runeField   []Rune
	legend      LegendSlot
	champion    catalog.CardID
}

func removeAt[T any](items []T, i int) ([]T, T) {
	item := items[i]
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	out = append(out, items[i+1:]...)
	return out, item
}

func pushFront[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

func cloneSlice[T any](items []T) []T {
	return append(make([]T, 0, len(items)), items...)
}
