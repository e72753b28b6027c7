package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/silentapi/riftbounddecks/internal/config"
	"github.com/silentapi/riftbounddecks/internal/deck"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

const memoryPath = ":memory:"

// OpenSQLite opens the SQLite database described by cfg, creating its
// directory and applying migrations when AutoMigrate is set.
func OpenSQLite(cfg config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	if cfg.Path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		if cfg.AutoMigrate {
			if err := Migrate(cfg.Path); err != nil {
				return nil, err
			}
		}
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", filepath.Clean(cfg.Path), busy.Milliseconds())
	if cfg.Path != memoryPath {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	if cfg.Path == memoryPath {
		db.SetMaxOpenConns(1)
	} else if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to close database after ping error: %w (original error: %v)", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Path == memoryPath && cfg.AutoMigrate {
		if _, err := db.Exec(sqliteMemorySchema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create in-memory schema: %w", err)
		}
	}

	if logger != nil {
		logger.Info("opened sqlite database",
			zap.String("path", cfg.Path),
			zap.Bool("auto_migrate", cfg.AutoMigrate),
		)
	}

	return db, nil
}

// sqliteMemorySchema mirrors the migrations for :memory: databases, which
// golang-migrate cannot reach through a separate connection.
const sqliteMemorySchema = `
	CREATE TABLE IF NOT EXISTS decks (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		cards      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
`

// SQLiteDeckStore stores decks in SQLite with cards as JSON text.
type SQLiteDeckStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDeckStore creates a store over an open database.
func NewSQLiteDeckStore(db *sql.DB) *SQLiteDeckStore {
	return &SQLiteDeckStore{db: db, now: time.Now}
}

// LoadDeck implements DeckStore.
func (s *SQLiteDeckStore) LoadDeck(ctx context.Context, id string) (deck.Record, error) {
	query := `
		SELECT id, name, cards, created_at, updated_at
		FROM decks
		WHERE id = ?
	`

	record, err := scanSQLiteDeck(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return deck.Record{}, fmt.Errorf("deck %s: %w", id, ErrDeckNotFound)
	}
	if err != nil {
		return deck.Record{}, fmt.Errorf("failed to load deck %s: %w", id, err)
	}
	return record, nil
}

// SaveDeck implements DeckStore.
func (s *SQLiteDeckStore) SaveDeck(ctx context.Context, record deck.Record) error {
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
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE
		SET name = excluded.name, cards = excluded.cards, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Name,
		string(cards),
		formatTime(record.CreatedAt),
		formatTime(record.UpdatedAt),
	); err != nil {
		return fmt.Errorf("failed to save deck %s: %w", record.ID, err)
	}
	return nil
}

// ListDecks implements DeckStore.
func (s *SQLiteDeckStore) ListDecks(ctx context.Context) ([]deck.Record, error) {
	query := `
		SELECT id, name, cards, created_at, updated_at
		FROM decks
		ORDER BY name, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var records []deck.Record
	for rows.Next() {
		record, err := scanSQLiteDeck(rows)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDeck(row scanner) (deck.Record, error) {
	var (
		record           deck.Record
		cards            string
		created, updated string
	)
	if err := row.Scan(&record.ID, &record.Name, &cards, &created, &updated); err != nil {
		return deck.Record{}, err
	}

	decoded, err := decodeCards([]byte(cards))
	if err != nil {
		return deck.Record{}, err
	}
	record.Cards = decoded

	if record.CreatedAt, err = parseTime(created); err != nil {
		return deck.Record{}, err
	}
	if record.UpdatedAt, err = parseTime(updated); err != nil {
		return deck.Record{}, err
	}
	return record, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
