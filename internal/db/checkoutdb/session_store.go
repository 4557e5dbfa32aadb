// Package checkoutdb persists checkout sessions in Postgres.
package checkoutdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sharetribe/web-template-sub009/internal/checkout/session"
)

// SessionStore persists checkout sessions as JSON rows in Postgres.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore constructs a session store backed by Postgres.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// NewSessionStoreWithSchema initializes the schema then returns the store.
func NewSessionStoreWithSchema(ctx context.Context, db *sql.DB) (*SessionStore, error) {
	store := NewSessionStore(db)
	if err := store.InitSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// InitSchema creates the sessions table if it does not exist.
func (s *SessionStore) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS checkout_sessions (
			session_key TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (s *SessionStore) Load(ctx context.Context, key string) (*session.Session, error) {
	var raw []byte
	row := s.db.QueryRowContext(ctx, `SELECT data FROM checkout_sessions WHERE session_key = $1`, key)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %q: %w", key, err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	if sess.Key == "" {
		return fmt.Errorf("session key required")
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", sess.Key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkout_sessions (session_key, data)
		VALUES ($1, $2)
		ON CONFLICT (session_key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		sess.Key, raw,
	)
	return err
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM checkout_sessions WHERE session_key = $1`, key)
	return err
}
