package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"groupchat/api/internal/models"
)

var ErrTokenNotFound = errors.New("token not found")

const revokedKeyPrefix = "token:revoked:"

// TokenRegistry records every issued session token and its revocation
// state. Postgres is the source of truth; Redis carries revocation
// markers (expiring at the token's natural expiry) so the hot-path
// revocation check usually avoids a database round trip.
type TokenRegistry struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

func NewTokenRegistry(pool *pgxpool.Pool, cache *redis.Client) *TokenRegistry {
	return &TokenRegistry{pool: pool, cache: cache}
}

func (r *TokenRegistry) Create(ctx context.Context, token models.AuthToken) error {
	const query = `
		INSERT INTO auth_tokens (id, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.IssuedAt,
		token.ExpiresAt,
	)
	return err
}

func (r *TokenRegistry) Get(ctx context.Context, id string) (models.AuthToken, error) {
	const query = `
		SELECT id, user_id, issued_at, expires_at, revoked_at
		FROM auth_tokens WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var token models.AuthToken
	if err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.RevokedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AuthToken{}, ErrTokenNotFound
		}
		return models.AuthToken{}, err
	}
	return token, nil
}

// Revoke marks a token revoked. Revoking an already revoked or unknown
// token succeeds, so logout can never fail on double invocation.
func (r *TokenRegistry) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	const query = `
		UPDATE auth_tokens SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return err
	}

	r.markRevoked(ctx, id, expiresAt)
	return nil
}

// RevokeAllForUser revokes every outstanding token of a user, used when
// the password is reset.
func (r *TokenRegistry) RevokeAllForUser(ctx context.Context, userID string) error {
	const query = `
		UPDATE auth_tokens SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
		RETURNING id, expires_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type revoked struct {
		id        string
		expiresAt time.Time
	}
	var tokens []revoked
	for rows.Next() {
		var t revoked
		if err := rows.Scan(&t.id, &t.expiresAt); err != nil {
			return err
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, t := range tokens {
		r.markRevoked(ctx, t.id, t.expiresAt)
	}
	return nil
}

// IsRevoked reports whether the token may no longer be used. A token
// absent from the registry counts as revoked: only tokens this registry
// issued are acceptable.
func (r *TokenRegistry) IsRevoked(ctx context.Context, id string) (bool, error) {
	if r.cache != nil {
		n, err := r.cache.Exists(ctx, revokedKeyPrefix+id).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		// cache errors and misses both fall through to the database
	}

	token, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return true, nil
		}
		return false, err
	}
	return token.RevokedAt != nil, nil
}

// PurgeExpired deletes registry rows whose natural expiry has passed;
// they no longer affect validation. Run by the cleanup job.
func (r *TokenRegistry) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM auth_tokens WHERE expires_at < $1`
	cmd, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *TokenRegistry) markRevoked(ctx context.Context, id string, expiresAt time.Time) {
	if r.cache == nil {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	// best effort: the database row already carries the revocation
	_ = r.cache.Set(ctx, revokedKeyPrefix+id, "1", ttl).Err()
}
