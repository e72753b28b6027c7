package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/silentapi/riftbounddecks/internal/catalog"
	"github.com/silentapi/riftbounddecks/internal/deck"
	"go.uber.org/zap"
)

// DeckSource loads stored decks. repository.DeckStore satisfies it.
type DeckSource interface {
	LoadDeck(ctx context.Context, id string) (deck.Record, error)
}

// ManagerOptions configures session creation.
type ManagerOptions struct {
	Decks   DeckSource
	Catalog catalog.Gateway

	// RuneTable overrides the color to rune mapping. Default: deck.DefaultRuneTable
	RuneTable deck.RuneTable

	// Seed fixes the shuffle source of every session. Zero draws a fresh
	// crypto seed per session.
	Seed int64

	// Recorder keeps a replay of every session when set.
	Recorder *ReplayRecorder
}

// Manager owns the live sessions.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	options  ManagerOptions
	logger   *zap.Logger
}

// NewManager creates a session manager.
func NewManager(logger *zap.Logger, options ManagerOptions) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		options:  options,
		logger:   logger,
	}
}

// Create loads deckID (and opponentDeckID when non-empty), resolves the card
// metadata both decks need and starts an uninitialized session. All I/O
// happens here; the session's match never blocks.
func (m *Manager) Create(ctx context.Context, deckID, opponentDeckID string) (*Session, error) {
	if m.options.Decks == nil {
		return nil, fmt.Errorf("no deck source configured")
	}

	record, err := m.options.Decks.LoadDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deck %s: %w", deckID, err)
	}
	cards := record.Cards.Normalize()

	var opponent *OpponentMirror
	if opponentDeckID != "" {
		other, err := m.options.Decks.LoadDeck(ctx, opponentDeckID)
		if err != nil {
			return nil, fmt.Errorf("failed to load opponent deck %s: %w", opponentDeckID, err)
		}
		mirror := newOpponentMirror(other)
		opponent = &mirror
	}

	lookup, err := m.resolve(ctx, cards)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	events := NewEventBus()

	rng := Rand(nil)
	if m.options.Seed != 0 {
		rng = NewRand(m.options.Seed)
	}

	session := &Session{
		ID:        id,
		DeckID:    record.ID,
		CreatedAt: time.Now(),
		cards:     cards,
		lookup:    lookup,
		events:    events,
		opponent:  opponent,
		recorder:  m.options.Recorder,
		logger:    m.logger,
		match: NewMatch(lookup, MatchOptions{
			SessionID: id,
			Rand:      rng,
			RuneTable: m.options.RuneTable,
			Events:    events,
			Logger:    m.logger,
		}),
	}

	if session.recorder != nil {
		session.recorder.StartRecording(id)
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", id),
		zap.String("deck_id", record.ID),
		zap.String("opponent_deck_id", opponentDeckID),
	)

	return session, nil
}

// resolve prefetches metadata for every card the validator or the rune
// builder may ask about.
func (m *Manager) resolve(ctx context.Context, cards deck.Cards) (catalog.Lookup, error) {
	if m.options.Catalog == nil {
		return catalog.NewMemoryGateway().Lookup(), nil
	}

	ids := make([]catalog.CardID, 0, len(cards.MainDeck)+len(cards.SideDeck)+len(cards.Battlefields)+2)
	ids = append(ids, cards.LegendCard, cards.ChosenChampion)
	ids = append(ids, cards.MainDeck...)
	ids = append(ids, cards.SideDeck...)
	ids = append(ids, cards.Battlefields...)

	resolved, err := catalog.Prefetch(ctx, m.options.Catalog, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve deck cards: %w", err)
	}

	return resolved.Lookup(), nil
}

// Get returns a live session.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	return session, ok
}

// Close ends a session. Its replay, if any, is saved to disk.
func (m *Manager) Close(sessionID string) error {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}

	m.logger.Info("session closed", zap.String("session_id", sessionID))

	if session.recorder == nil {
		return nil
	}
	if session.recorder.IsRecording(sessionID) {
		session.recorder.StopRecording(sessionID)
	}
	if err := session.recorder.SaveReplay(sessionID); err != nil {
		return fmt.Errorf("failed to save replay for session %s: %w", sessionID, err)
	}
	return nil
}

// CloseAll ends every live session, saving replays, and returns the first
// error encountered.
func (m *Manager) CloseAll() error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var first error
	for _, id := range ids {
		if err := m.Close(id); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
