package deck

import (
	"strings"

	"github.com/silentapi/riftbounddecks/internal/catalog"
)

// RuneTable maps a legend color to the base id of its rune card.
type RuneTable map[string]string

// DefaultRuneTable is the six-color table of the base set.
var DefaultRuneTable = RuneTable{
	"Fury":  "OGN-007",
	"Calm":  "OGN-042",
	"Mind":  "OGN-089",
	"Body":  "OGN-126",
	"Chaos": "OGN-166",
	"Order": "OGN-214",
}

// Resolve returns the rune base id for color.
func (t RuneTable) Resolve(color string) (string, bool) {
	if t == nil {
		t = DefaultRuneTable
	}
	id, ok := t[color]
	return id, ok && id != ""
}

// RuneTableFrom overlays overrides on a copy of DefaultRuneTable. Keys are
// matched against the default colors case-insensitively, since config
// loaders lower-case map keys; other keys are added as given.
func RuneTableFrom(overrides map[string]string) RuneTable {
	table := make(RuneTable, len(DefaultRuneTable)+len(overrides))
	for color, id := range DefaultRuneTable {
		table[color] = id
	}

	for key, id := range overrides {
		color := key
		for known := range DefaultRuneTable {
			if strings.EqualFold(known, key) {
				color = known
				break
			}
		}
		table[color] = id
	}
	return table
}

// BuildRuneLibrary derives the rune library of a deck: runeACount copies of
// the rune for the legend's first color, then runeBCount copies of the rune
// for its second color, in insertion order. Shuffling is a separate step.
//
// The result is empty when the legend is missing or unknown, has fewer than
// two colors, or either color is not in the table; callers read an empty
// library as "no runes configured".
func BuildRuneLibrary(
	legend catalog.CardID,
	runeACount, runeBCount int,
	runeAVariantIndex, runeBVariantIndex int,
	lookup catalog.Lookup,
	table RuneTable,
) []catalog.CardID {
	if legend.IsEmpty() {
		return []catalog.CardID{}
	}

	meta, ok := lookup.Card(legend)
	if !ok || len(meta.Colors) < 2 {
		return []catalog.CardID{}
	}

	runeA, okA := table.Resolve(meta.Colors[0])
	runeB, okB := table.Resolve(meta.Colors[1])
	if !okA || !okB {
		return []catalog.CardID{}
	}

	runeACount, runeBCount = ClampRuneCounts(runeACount, runeBCount)
	if runeAVariantIndex < 0 {
		runeAVariantIndex = 0
	}
	if runeBVariantIndex < 0 {
		runeBVariantIndex = 0
	}

	library := make([]catalog.CardID, 0, runeACount+runeBCount)
	idA := catalog.NewCardID(runeA, runeAVariantIndex)
	idB := catalog.NewCardID(runeB, runeBVariantIndex)
	for i := 0; i < runeACount; i++ {
		library = append(library, idA)
	}
	for i := 0; i < runeBCount; i++ {
		library = append(library, idB)
	}

	return library
}

// BuildRuneLibraryFor is BuildRuneLibrary over a deck's own settings.
func BuildRuneLibraryFor(cards Cards, lookup catalog.Lookup, table RuneTable) []catalog.CardID {
	return BuildRuneLibrary(
		cards.LegendCard,
		cards.RuneACount, cards.RuneBCount,
		cards.RuneAVariantIndex, cards.RuneBVariantIndex,
		lookup, table,
	)
}
