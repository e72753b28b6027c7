package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/silentapi/riftbounddecks/internal/config"
	"github.com/silentapi/riftbounddecks/internal/deck"
	"go.uber.org/zap"
)

//go:embed schema_postgres.sql
var postgresSchema string

// NewDB opens a pgx connection pool and verifies it with a ping.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	if logger != nil {
		logger.Info("connected to postgres",
			zap.String("host", poolCfg.ConnConfig.Host),
			zap.String("database", poolCfg.ConnConfig.Database),
			zap.Int32("max_conns", poolCfg.MaxConns),
		)
	}

	return pool, nil
}

// EnsurePostgresSchema creates the decks and cards tables if missing.
func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply postgres schema: %w", err)
	}
	return nil
}

// PostgresDeckStore stores decks in PostgreSQL with cards as JSONB.
type PostgresDeckStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresDeckStore creates a store over an existing pool.
func NewPostgresDeckStore(pool *pgxpool.Pool) *PostgresDeckStore {
	return &PostgresDeckStore{pool: pool, now: time.Now}
}

// LoadDeck implements DeckStore.
func (s *PostgresDeckStore) LoadDeck(ctx context.Context, id string) (deck.Record, error) {
	query := `
		SELECT id, name, cards, created_at, updated_at
		FROM decks
		WHERE id = $1
	`

	record, err := scanPostgresDeck(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return deck.Record{}, fmt.Errorf("deck %s: %w", id, ErrDeckNotFound)
	}
	if err != nil {
		return deck.Record{}, fmt.Errorf("failed to load deck %s: %w", id, err)
	}
	return record, nil
}

// SaveDeck implements DeckStore.
func (s *PostgresDeckStore) SaveDeck(ctx context.Context, record deck.Record) error {
	record, err := prepare(record, s.now())
	if err != nil {
		return err
	}
	cards, err := encodeCards(record.Cards)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO decks (id, name, cards, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, cards = EXCLUDED.cards, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query,
		record.ID,
		record.Name,
		string(cards),
		record.CreatedAt,
		record.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to save deck %s: %w", record.ID, err)
	}
	return nil
}

// ListDecks implements DeckStore.
func (s *PostgresDeckStore) ListDecks(ctx context.Context) ([]deck.Record, error) {
	query := `
		SELECT id, name, cards, created_at, updated_at
		FROM decks
		ORDER BY name, id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var records []deck.Record
	for rows.Next() {
		record, err := scanPostgresDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}
	return records, nil
}

func scanPostgresDeck(row pgx.Row) (deck.Record, error) {
	var (
		record deck.Record
		cards  []byte
	)
	if err := row.Scan(&record.ID, &record.Name, &cards, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return deck.Record{}, err
	}

	decoded, err := decodeCards(cards)
	if err != nil {
		return deck.Record{}, err
	}
	record.Cards = decoded
	return record, nil
}
