package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGateway reads card metadata from the cards table populated by
// scripts/import_cards.go.
type PostgresGateway struct {
	pool *pgxpool.Pool
}

// NewPostgresGateway creates a gateway over an existing pool.
func NewPostgresGateway(pool *pgxpool.Pool) *PostgresGateway {
	return &PostgresGateway{pool: pool}
}

const selectCardSQL = `
	SELECT base_id, name, card_type,
	       COALESCE(colors, '{}'), COALESCE(tags, '{}'), COALESCE(stats, '{}'::jsonb),
	       COALESCE(variant_images, '{}'), COALESCE(super_type, ''), release_date
	FROM cards
	WHERE base_id = $1
`

// GetCardMetadata implements Gateway.
func (g *PostgresGateway) GetCardMetadata(ctx context.Context, baseID string) (CardMetadata, bool, error) {
	var (
		meta        CardMetadata
		stats       map[string]int
		releaseDate *time.Time
	)

	err := g.pool.QueryRow(ctx, selectCardSQL, baseID).Scan(
		&meta.BaseID,
		&meta.Name,
		&meta.Type,
		&meta.Colors,
		&meta.Tags,
		&stats,
		&meta.VariantImages,
		&meta.Super,
		&releaseDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return CardMetadata{}, false, nil
	}
	if err != nil {
		return CardMetadata{}, false, fmt.Errorf("failed to query card %s: %w", baseID, err)
	}

	meta.Stats = stats
	if releaseDate != nil {
		meta.ReleaseDate = *releaseDate
	}

	return meta, true, nil
}
