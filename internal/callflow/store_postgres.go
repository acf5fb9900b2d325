package callflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the subset of pgxpool.Pool used by the Postgres store.
// Declared here so tests can substitute a pgxmock pool.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSessionStore persists call sessions in the call_sessions table.
// Upserts are synchronous, so a Save is visible to the next Get of the same
// session (read-after-write per session).
type PostgresSessionStore struct {
	db pgxQuerier
}

// NewPostgresSessionStore creates a session store backed by Postgres.
func NewPostgresSessionStore(db pgxQuerier) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

func (s *PostgresSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT state FROM call_sessions WHERE id = $1`, id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("session store: get %s: %w", id, err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session store: unmarshal %s: %w", id, err)
	}
	return &sess, nil
}

func (s *PostgresSessionStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session store: session id required")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session store: marshal %s: %w", sess.ID, err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO call_sessions (id, phase, state, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE
		 SET phase = EXCLUDED.phase, state = EXCLUDED.state, updated_at = now()`,
		sess.ID, string(sess.Phase), data,
	)
	if err != nil {
		return fmt.Errorf("session store: save %s: %w", sess.ID, err)
	}
	return nil
}

func (s *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM call_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("session store: delete %s: %w", id, err)
	}
	return nil
}
