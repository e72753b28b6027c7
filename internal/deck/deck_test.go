package deck

import (
	"testing"

	"github.com/silentapi/riftbounddecks/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookup() catalog.Lookup {
	return catalog.NewMemoryGateway(
		catalog.CardMetadata{BaseID: "OGN-300", Name: "Jinx", Type: "Legend", Colors: []string{"Fury", "Calm"}},
		catalog.CardMetadata{BaseID: "OGN-301", Name: "Mono", Type: "Legend", Colors: []string{"Mind"}},
		catalog.CardMetadata{BaseID: "OGN-302", Name: "Odd", Type: "Legend", Colors: []string{"Fury", "Void"}},
	).Lookup()
}

func TestBuildRuneLibraryOrder(t *testing.T) {
	runes := BuildRuneLibrary("OGN-300", 6, 6, 0, 0, testLookup(), nil)
	require.Len(t, runes, 12)

	for i := 0; i < 6; i++ {
		assert.Equal(t, DefaultRuneTable["Fury"], runes[i].BaseID(), "rune %d", i)
	}
	for i := 6; i < 12; i++ {
		assert.Equal(t, DefaultRuneTable["Calm"], runes[i].BaseID(), "rune %d", i)
	}
}

func TestBuildRuneLibraryVariants(t *testing.T) {
	runes := BuildRuneLibrary("OGN-300", 2, 1, 1, 0, testLookup(), nil)
	require.Len(t, runes, 3)
	assert.Equal(t, catalog.NewCardID(DefaultRuneTable["Fury"], 1), runes[0])
	assert.Equal(t, 1, runes[1].VariantIndex())
	assert.Equal(t, catalog.CardID(DefaultRuneTable["Calm"]), runes[2])
}

func TestBuildRuneLibraryEmptyCases(t *testing.T) {
	lookup := testLookup()

	assert.Empty(t, BuildRuneLibrary("", 6, 6, 0, 0, lookup, nil), "missing legend")
	assert.Empty(t, BuildRuneLibrary("OGN-999", 6, 6, 0, 0, lookup, nil), "unknown legend")
	assert.Empty(t, BuildRuneLibrary("OGN-301", 6, 6, 0, 0, lookup, nil), "single color legend")
	assert.Empty(t, BuildRuneLibrary("OGN-302", 6, 6, 0, 0, lookup, nil), "unresolvable color")
	assert.NotNil(t, BuildRuneLibrary("", 6, 6, 0, 0, lookup, nil))
}

func TestBuildRuneLibraryCustomTable(t *testing.T) {
	table := RuneTable{"Fury": "CUS-1", "Calm": "CUS-2"}
	runes := BuildRuneLibrary("OGN-300", 1, 1, 0, 0, testLookup(), table)
	assert.Equal(t, []catalog.CardID{"CUS-1", "CUS-2"}, runes)
}

func TestBuildRuneLibraryClampsCounts(t *testing.T) {
	runes := BuildRuneLibrary("OGN-300", 10, 10, 0, 0, testLookup(), nil)
	assert.Len(t, runes, MaxRunes)
}

func TestBuildRuneLibraryFor(t *testing.T) {
	cards := Cards{LegendCard: "OGN-300", RuneACount: 7, RuneBCount: 5}
	assert.Len(t, BuildRuneLibraryFor(cards, testLookup(), DefaultRuneTable), 12)
}

func TestNormalize(t *testing.T) {
	main := make([]catalog.CardID, 45)
	for i := range main {
		main[i] = "OGN-001"
	}
	cards := Cards{
		MainDeck:          main,
		SideDeck:          make([]catalog.CardID, 10),
		Battlefields:      []catalog.CardID{"B1", "B2", "B3", "B4"},
		RuneACount:        9,
		RuneBCount:        9,
		RuneAVariantIndex: -1,
	}

	n := cards.Normalize()
	assert.Len(t, n.MainDeck, MainDeckSize)
	assert.Len(t, n.SideDeck, SideDeckSize)
	assert.Len(t, n.Battlefields, BattlefieldSize)
	assert.Equal(t, 9, n.RuneACount)
	assert.Equal(t, 3, n.RuneBCount)
	assert.Equal(t, 0, n.RuneAVariantIndex)

	// the input is left untouched
	assert.Len(t, cards.MainDeck, 45)
}

func TestPlayableCardsSkipsEmptySlots(t *testing.T) {
	cards := Cards{
		MainDeck:       []catalog.CardID{"A", "", "B"},
		SideDeck:       []catalog.CardID{"", "C"},
		ChosenChampion: "D",
	}
	assert.Equal(t, []catalog.CardID{"A", "B", "C", "D"}, cards.PlayableCards())
	assert.Len(t, cards.MainCards(), 2)
}

func TestRuneTableFrom(t *testing.T) {
	table := RuneTableFrom(map[string]string{"fury": "OGN-001", "Void": "OGN-300"})

	id, ok := table.Resolve("Fury")
	require.True(t, ok)
	assert.Equal(t, "OGN-001", id)

	id, ok = table.Resolve("Calm")
	require.True(t, ok)
	assert.Equal(t, "OGN-042", id)

	_, ok = table.Resolve("Void")
	assert.True(t, ok)

	assert.Equal(t, "OGN-007", DefaultRuneTable["Fury"])
}
