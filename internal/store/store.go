package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS university_searches (
	query TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	fetched_at TIMESTAMP NOT NULL
);`

// Store implements domain.TokenStore and domain.SearchCache on a local
// SQLite file. It stands in for the browser's durable key-value storage.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite file at path and bootstraps
// the schema. The caller should call Close when the store is no longer
// needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTokens upserts the single session row.
func (s *Store) SaveTokens(ctx context.Context, tokens domain.Tokens) error {
	query := `
		INSERT INTO session (id, access_token, refresh_token, expires_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at`

	_, err := s.db.ExecContext(ctx, query,
		tokens.AccessToken,
		tokens.RefreshToken,
		tokens.ExpiresAt.UTC(),
	)
	return err
}

// LoadTokens returns the stored tokens, or a zero value if none are stored.
func (s *Store) LoadTokens(ctx context.Context) (domain.Tokens, error) {
	var tokens domain.Tokens
	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, expires_at FROM session WHERE id = 1`,
	).Scan(&tokens.AccessToken, &tokens.RefreshToken, &tokens.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tokens{}, nil
	}
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("load tokens: %w", err)
	}
	return tokens, nil
}

// ClearTokens removes the session row.
func (s *Store) ClearTokens(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`)
	return err
}

// GetSearch returns the cached payload for key. A miss returns ok=false.
func (s *Store) GetSearch(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	var payload []byte
	var fetchedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM university_searches WHERE query = ?`, key,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("get cached search: %w", err)
	}
	return payload, fetchedAt, true, nil
}

// PutSearch upserts a cached search result.
func (s *Store) PutSearch(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error {
	query := `
		INSERT INTO university_searches (query, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (query) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`

	_, err := s.db.ExecContext(ctx, query, key, payload, fetchedAt.UTC())
	return err
}

// EvictExpiredSearches removes entries fetched before cutoff and returns the
// number of rows deleted.
func (s *Store) EvictExpiredSearches(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM university_searches WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
