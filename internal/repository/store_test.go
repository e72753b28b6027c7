package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/silentapi/riftbounddecks/internal/catalog"
	"github.com/silentapi/riftbounddecks/internal/config"
	"github.com/silentapi/riftbounddecks/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sampleRecord(id, name string) deck.Record {
	main := make([]catalog.CardID, 0, deck.MainDeckSize)
	for i := 0; i < 13; i++ {
		card := catalog.NewCardID(fmt.Sprintf("OGN-%03d", 10+i), i%3)
		main = append(main, card, card, card)
	}

	return deck.Record{
		ID:   id,
		Name: name,
		Cards: deck.Cards{
			MainDeck:          main,
			ChosenChampion:    "OGN-050",
			SideDeck:          []catalog.CardID{"OGN-060", "OGN-061"},
			Battlefields:      []catalog.CardID{"OGN-290", "OGN-291", "OGN-292"},
			RuneACount:        7,
			RuneBCount:        9, // clamped to 5 on save
			RuneAVariantIndex: 1,
			LegendCard:        "OGN-299",
		},
	}
}

// exerciseStore runs the same contract against every DeckStore.
func exerciseStore(t *testing.T, store DeckStore) {
	ctx := context.Background()

	_, err := store.LoadDeck(ctx, "missing")
	require.ErrorIs(t, err, ErrDeckNotFound)

	require.Error(t, store.SaveDeck(ctx, deck.Record{Name: "no id"}))

	record := sampleRecord("deck-1", "Jinx Aggro")
	require.NoError(t, store.SaveDeck(ctx, record))

	loaded, err := store.LoadDeck(ctx, "deck-1")
	require.NoError(t, err)
	assert.Equal(t, "Jinx Aggro", loaded.Name)
	assert.Equal(t, record.Cards.MainDeck, loaded.Cards.MainDeck)
	assert.Equal(t, record.Cards.SideDeck, loaded.Cards.SideDeck)
	assert.Equal(t, record.Cards.Battlefields, loaded.Cards.Battlefields)
	assert.Equal(t, catalog.CardID("OGN-299"), loaded.Cards.LegendCard)
	assert.Equal(t, catalog.CardID("OGN-050"), loaded.Cards.ChosenChampion)
	assert.Equal(t, 7, loaded.Cards.RuneACount)
	assert.Equal(t, 5, loaded.Cards.RuneBCount)
	assert.Equal(t, 1, loaded.Cards.RuneAVariantIndex)
	assert.False(t, loaded.CreatedAt.IsZero())
	created := loaded.CreatedAt

	record.Name = "Jinx Control"
	record.Cards.SideDeck = nil
	require.NoError(t, store.SaveDeck(ctx, record))

	loaded, err = store.LoadDeck(ctx, "deck-1")
	require.NoError(t, err)
	assert.Equal(t, "Jinx Control", loaded.Name)
	assert.Empty(t, loaded.Cards.SideDeck)
	assert.True(t, created.Equal(loaded.CreatedAt), "created_at survives updates")
	assert.False(t, loaded.UpdatedAt.Before(created))

	require.NoError(t, store.SaveDeck(ctx, sampleRecord("deck-2", "Garen Midrange")))
	all, err := store.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "deck-2", all[0].ID)
	assert.Equal(t, "deck-1", all[1].ID)
}

func TestMemoryDeckStore(t *testing.T) {
	exerciseStore(t, NewMemoryDeckStore())
}

func TestSQLiteDeckStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "riftbound.db")
	db, err := OpenSQLite(config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		Path:        path,
		MaxConns:    4,
		BusyTimeout: time.Second,
		AutoMigrate: true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exerciseStore(t, NewSQLiteDeckStore(db))
}

func TestSQLiteInMemory(t *testing.T) {
	db, err := OpenSQLite(config.DatabaseConfig{Path: ":memory:", AutoMigrate: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exerciseStore(t, NewSQLiteDeckStore(db))
}

func TestMigrationManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	mgr, err := NewMigrationManager(path)
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	version, dirty, err := mgr.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, mgr.Up())
	require.NoError(t, mgr.Up(), "re-running is a no-op")

	version, _, err = mgr.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, mgr.Down())
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(config.DatabaseConfig{}, nil)
	assert.Error(t, err)
}

func TestPostgresDeckStore(t *testing.T) {
	url := os.Getenv("RIFTBOUND_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RIFTBOUND_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := NewDB(ctx, config.DatabaseConfig{URL: url, AutoMigrate: true}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "DELETE FROM decks WHERE id IN ('deck-1', 'deck-2')")
	require.NoError(t, err)

	exerciseStore(t, NewPostgresDeckStore(pool))
}
