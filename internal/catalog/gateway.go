package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Gateway resolves a base id to catalog metadata.
// A missing card is reported with found=false and a nil error; err is
// reserved for failures of the backing store.
type Gateway interface {
	GetCardMetadata(ctx context.Context, baseID string) (meta CardMetadata, found bool, err error)
}

// Lookup is the synchronous view of a catalog used by the validator and
// rune builder. A miss means "unknown card".
type Lookup func(baseID string) (CardMetadata, bool)

// Card resolves a full CardID through the lookup.
func (l Lookup) Card(id CardID) (CardMetadata, bool) {
	if l == nil || id.IsEmpty() {
		return CardMetadata{}, false
	}
	return l(id.BaseID())
}

// LookupFrom adapts a Gateway to a Lookup bound to ctx.
// Gateway errors are logged and treated as misses so that validation and
// rendering degrade to "unknown card" instead of failing.
func LookupFrom(ctx context.Context, gw Gateway, logger *zap.Logger) Lookup {
	return func(baseID string) (CardMetadata, bool) {
		meta, found, err := gw.GetCardMetadata(ctx, baseID)
		if err != nil {
			if logger != nil {
				logger.Warn("catalog lookup failed",
					zap.String("base_id", baseID),
					zap.Error(err),
				)
			}
			return CardMetadata{}, false
		}
		return meta, found
	}
}

// MemoryGateway is an in-process catalog.
type MemoryGateway struct {
	mu    sync.RWMutex
	cards map[string]CardMetadata
}

// NewMemoryGateway creates a catalog holding the given cards.
func NewMemoryGateway(cards ...CardMetadata) *MemoryGateway {
	g := &MemoryGateway{cards: make(map[string]CardMetadata, len(cards))}
	for _, c := range cards {
		g.cards[c.BaseID] = c
	}
	return g
}

// Put adds or replaces a card.
func (g *MemoryGateway) Put(card CardMetadata) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cards[card.BaseID] = card
}

// Remove deletes a card.
func (g *MemoryGateway) Remove(baseID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.cards, baseID)
}

// Len returns the number of cards held.
func (g *MemoryGateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cards)
}

// GetCardMetadata implements Gateway.
func (g *MemoryGateway) GetCardMetadata(_ context.Context, baseID string) (CardMetadata, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	card, ok := g.cards[baseID]
	return card, ok, nil
}

// Lookup returns a context-free Lookup over the in-memory cards.
func (g *MemoryGateway) Lookup() Lookup {
	return func(baseID string) (CardMetadata, bool) {
		card, ok, _ := g.GetCardMetadata(context.Background(), baseID)
		return card, ok
	}
}

// Replace swaps the whole catalog for cards.
func (g *MemoryGateway) Replace(cards ...CardMetadata) {
	next := make(map[string]CardMetadata, len(cards))
	for _, c := range cards {
		next[c.BaseID] = c
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.cards = next
}

// LoadFile reads a JSON array of CardMetadata into a MemoryGateway.
func LoadFile(path string) (*MemoryGateway, error) {
	cards, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryGateway(cards...), nil
}

func readFile(path string) ([]CardMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cards []CardMetadata
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", path, err)
	}
	return cards, nil
}

// Prefetch resolves every distinct base id referenced by ids through gw and
// returns the hits as a MemoryGateway. Misses are skipped; the first gateway
// error aborts the fetch.
func Prefetch(ctx context.Context, gw Gateway, ids ...CardID) (*MemoryGateway, error) {
	out := NewMemoryGateway()
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if id.IsEmpty() {
			continue
		}
		base := id.BaseID()
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}

		meta, found, err := gw.GetCardMetadata(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch card %s: %w", base, err)
		}
		if found {
			out.Put(meta)
		}
	}

	return out, nil
}
