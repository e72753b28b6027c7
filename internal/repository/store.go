// Package repository persists deck records.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/silentapi/riftbounddecks/internal/deck"
)

// ErrDeckNotFound is returned by LoadDeck when no deck has the given id.
var ErrDeckNotFound = errors.New("deck not found")

// DeckStore loads and saves deck records.
type DeckStore interface {
	// LoadDeck returns the deck with id, or ErrDeckNotFound.
	LoadDeck(ctx context.Context, id string) (deck.Record, error)

	// SaveDeck inserts or replaces a deck. Cards are normalized first and
	// timestamps maintained by the store.
	SaveDeck(ctx context.Context, record deck.Record) error

	// ListDecks returns every deck ordered by name.
	ListDecks(ctx context.Context) ([]deck.Record, error)
}

// prepare normalizes a record for storage.
func prepare(record deck.Record, now time.Time) (deck.Record, error) {
	if record.ID == "" {
		return deck.Record{}, errors.New("deck id is required")
	}
	record.Cards = record.Cards.Normalize()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	return record, nil
}

func encodeCards(cards deck.Cards) ([]byte, error) {
	data, err := json.Marshal(cards)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck cards: %w", err)
	}
	return data, nil
}

func decodeCards(data []byte) (deck.Cards, error) {
	var cards deck.Cards
	if err := json.Unmarshal(data, &cards); err != nil {
		return deck.Cards{}, fmt.Errorf("failed to decode deck cards: %w", err)
	}
	return cards, nil
}

// MemoryDeckStore keeps decks in process memory.
type MemoryDeckStore struct {
	mu    sync.RWMutex
	decks map[string]deck.Record
	now   func() time.Time
}

// NewMemoryDeckStore creates an empty store.
func NewMemoryDeckStore() *MemoryDeckStore {
	return &MemoryDeckStore{
		decks: make(map[string]deck.Record),
		now:   time.Now,
	}
}

// LoadDeck implements DeckStore.
func (s *MemoryDeckStore) LoadDeck(_ context.Context, id string) (deck.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.decks[id]
	if !ok {
		return deck.Record{}, fmt.Errorf("deck %s: %w", id, ErrDeckNotFound)
	}
	return record, nil
}

// SaveDeck implements DeckStore.
func (s *MemoryDeckStore) SaveDeck(_ context.Context, record deck.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.decks[record.ID]; ok && record.CreatedAt.IsZero() {
		record.CreatedAt = existing.CreatedAt
	}
	record, err := prepare(record, s.now())
	if err != nil {
		return err
	}
	s.decks[record.ID] = record
	return nil
}

// ListDecks implements DeckStore.
func (s *MemoryDeckStore) ListDecks(_ context.Context) ([]deck.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]deck.Record, 0, len(s.decks))
	for _, record := range s.decks {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Name == records[j].Name {
			return records[i].ID < records[j].ID
		}
		return records[i].Name < records[j].Name
	})
	return records, nil
}
