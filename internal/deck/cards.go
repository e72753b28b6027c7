// Package deck holds the persisted deck configuration and the rune library
// derivation that depends on it.
package deck

import (
	"time"

	"github.com/silentapi/riftbounddecks/internal/catalog"
)

// Deck construction limits.
const (
	MainDeckSize    = 40
	SideDeckSize    = 8
	BattlefieldSize = 3
	MaxRunes        = 12
	CopyLimit       = 3
)

// Cards is the card-list configuration of a deck record.
// Empty CardIDs in MainDeck, SideDeck and Battlefields are empty slots.
type Cards struct {
	MainDeck          []catalog.CardID `json:"mainDeck"`
	ChosenChampion    catalog.CardID   `json:"chosenChampion,omitempty"`
	SideDeck          []catalog.CardID `json:"sideDeck"`
	Battlefields      []catalog.CardID `json:"battlefields"`
	RuneACount        int              `json:"runeACount"`
	RuneBCount        int              `json:"runeBCount"`
	RuneAVariantIndex int              `json:"runeAVariantIndex"`
	RuneBVariantIndex int              `json:"runeBVariantIndex"`
	LegendCard        catalog.CardID   `json:"legendCard,omitempty"`
}

// Record is a persisted deck.
type Record struct {
	ID        string
	Name      string
	Cards     Cards
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MainCards returns the non-empty main deck entries in slot order.
func (c Cards) MainCards() []catalog.CardID {
	return nonEmpty(c.MainDeck)
}

// SideCards returns the non-empty side deck entries in slot order.
func (c Cards) SideCards() []catalog.CardID {
	return nonEmpty(c.SideDeck)
}

// BattlefieldCards returns the non-empty battlefield entries.
func (c Cards) BattlefieldCards() []catalog.CardID {
	return nonEmpty(c.Battlefields)
}

// HasLegend reports whether a legend is chosen.
func (c Cards) HasLegend() bool {
	return !c.LegendCard.IsEmpty()
}

// HasChampion reports whether a champion is chosen.
func (c Cards) HasChampion() bool {
	return !c.ChosenChampion.IsEmpty()
}

// PlayableCards returns main ∪ side ∪ {champion}, the set checked by the
// color, copy-limit and signature rules.
func (c Cards) PlayableCards() []catalog.CardID {
	cards := make([]catalog.CardID, 0, len(c.MainDeck)+len(c.SideDeck)+1)
	cards = append(cards, c.MainCards()...)
	cards = append(cards, c.SideCards()...)
	if c.HasChampion() {
		cards = append(cards, c.ChosenChampion)
	}
	return cards
}

// Normalize enforces the structural bounds of a deck record: slot lists are
// truncated to their maximum length and rune settings are clamped so that
// each count is 0..12, the sum is at most 12 and variant indices are >= 0.
// Legality (exact sizes, colors, tags) is the validator's job, not this one.
func (c Cards) Normalize() Cards {
	out := c
	out.MainDeck = truncate(c.MainDeck, MainDeckSize)
	out.SideDeck = truncate(c.SideDeck, SideDeckSize)
	out.Battlefields = truncate(c.Battlefields, BattlefieldSize)

	out.RuneACount, out.RuneBCount = ClampRuneCounts(c.RuneACount, c.RuneBCount)
	if out.RuneAVariantIndex < 0 {
		out.RuneAVariantIndex = 0
	}
	if out.RuneBVariantIndex < 0 {
		out.RuneBVariantIndex = 0
	}
	return out
}

// ClampRuneCounts clamps both counts to 0..12 and trims rune B so that the
// sum does not exceed 12.
func ClampRuneCounts(a, b int) (int, int) {
	a = clamp(a, 0, MaxRunes)
	b = clamp(b, 0, MaxRunes)
	if a+b > MaxRunes {
		b = MaxRunes - a
	}
	return a, b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(ids []catalog.CardID, max int) []catalog.CardID {
	if len(ids) > max {
		ids = ids[:max]
	}
	return append([]catalog.CardID(nil), ids...)
}

func nonEmpty(ids []catalog.CardID) []catalog.CardID {
	out := make([]catalog.CardID, 0, len(ids))
	for _, id := range ids {
		if !id.IsEmpty() {
			out = append(out, id)
		}
	}
	return out
}
