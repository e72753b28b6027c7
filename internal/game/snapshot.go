package game

import (
	"time"

	"github.com/silentapi/riftbounddecks/internal/catalog"
)

// Snapshot is a read-only copy of a match's zones, sufficient to render
// every zone and count. Mutating it does not affect the match.
type Snapshot struct {
	SessionID      string           `json:"sessionId"`
	Sequence       int              `json:"sequence"` // incremented by every successful mutation
	Library        []catalog.CardID `json:"libraryDeck"`
	Hand           []catalog.CardID `json:"hand"`
	Discard        []catalog.CardID `json:"discardPile"`
	RuneLibrary    []catalog.CardID `json:"runeLibrary"`
	RuneField      []Rune           `json:"runeField"`
	ExhaustedRunes []int            `json:"exhaustedRunes"` // field positions currently exhausted, ascending
	Legend         LegendSlot       `json:"legendSlot"`
	Champion       catalog.CardID   `json:"championSlot"`
	Timestamp      time.Time        `json:"timestamp"`
}

// ZoneCounts summarises zone sizes.
type ZoneCounts struct {
	Library     int `json:"libraryDeck"`
	Hand        int `json:"hand"`
	Discard     int `json:"discardPile"`
	RuneLibrary int `json:"runeLibrary"`
	RuneField   int `json:"runeField"`
	Exhausted   int `json:"exhausted"`
}

// Counts returns the size of every zone.
func (s Snapshot) Counts() ZoneCounts {
	return ZoneCounts{
		Library:     len(s.Library),
		Hand:        len(s.Hand),
		Discard:     len(s.Discard),
		RuneLibrary: len(s.RuneLibrary),
		RuneField:   len(s.RuneField),
		Exhausted:   len(s.ExhaustedRunes),
	}
}

// MainDeckTotal is |library| + |hand| + |discard|.
func (s Snapshot) MainDeckTotal() int {
	return len(s.Library) + len(s.Hand) + len(s.Discard)
}

// RuneTotal is |rune library| + |rune field|.
func (s Snapshot) RuneTotal() int {
	return len(s.RuneLibrary) + len(s.RuneField)
}

// Zone returns the cards of a list zone. Rune field entries are returned by id.
func (s Snapshot) Zone(zone Zone) []catalog.CardID {
	switch zone {
	case ZoneLibrary:
		return s.Library
	case ZoneHand:
		return s.Hand
	case ZoneDiscard:
		return s.Discard
	case ZoneRuneLibrary:
		return s.RuneLibrary
	case ZoneRuneField:
		ids := make([]catalog.CardID, len(s.RuneField))
		for i, r := range s.RuneField {
			ids[i] = r.ID
		}
		return ids
	case ZoneLegend:
		if s.Legend.Empty() {
			return nil
		}
		return []catalog.CardID{s.Legend.ID}
	case ZoneChampion:
		if s.Champion.IsEmpty() {
			return nil
		}
		return []catalog.CardID{s.Champion}
	}
	return nil
}

func (z *zones) snapshot(sessionID string, sequence int) Snapshot {
	exhausted := make([]int, 0)
	for i, r := range z.runeField {
		if r.Exhausted {
			exhausted = append(exhausted, i)
		}
	}

	return Snapshot{
		SessionID:      sessionID,
		Sequence:       sequence,
		Library:        cloneSlice(z.library),
		Hand:           cloneSlice(z.hand),
		Discard:        cloneSlice(z.discard),
		RuneLibrary:    cloneSlice(z.runeLibrary),
		RuneField:      cloneSlice(z.runeField),
		ExhaustedRunes: exhausted,
		Legend:         z.legend,
		Champion:       z.champion,
		Timestamp:      time.Now(),
	}
}
