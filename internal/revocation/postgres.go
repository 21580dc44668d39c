package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres хранит хэши отозванных токенов в таблице revoked_tokens
// (миграция 2_revoked_tokens.up.sql). Пул принадлежит вызывающей стороне.
type Postgres struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewPostgres создаёт хранилище поверх существующего пула.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// Revoke сохраняет хэш токена. Для токена без читаемого exp
// expires_at = now, и запись удалит ближайший Sweep.
func (p *Postgres) Revoke(ctx context.Context, token string) error {
	const op = "revocation.Postgres.Revoke"

	now := p.now().UTC()
	exp, ok := ExpiresAt(token)
	if !ok {
		exp = now
	}

	query := `
		INSERT INTO revoked_tokens(token_hash, expires_at, revoked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO NOTHING
	`

	if _, err := p.db.Exec(ctx, query, hashToken(token), exp, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *Postgres) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "revocation.Postgres.IsRevoked"

	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_hash = $1)`

	var exists bool
	if err := p.db.QueryRow(ctx, query, hashToken(token)).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// Sweep удаляет записи с expires_at <= cutoff.
func (p *Postgres) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	const op = "revocation.Postgres.Sweep"

	query := `
		DELETE FROM revoked_tokens
		WHERE expires_at <= $1
	`

	tag, err := p.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int(tag.RowsAffected()), nil
}

// Close ничего не делает: пулом владеет хранилище пользователей.
func (p *Postgres) Close() error { return nil }

var _ Store = (*Postgres)(nil)
