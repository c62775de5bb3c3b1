package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
)

type challengesRepo struct {
	q querier
}

func (r *challengesRepo) PutTOTPChallenge(ctx context.Context, c domain.TOTPChallenge) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO totp_challenges (user_id, attempts, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			attempts = excluded.attempts,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		c.UserID, c.Attempts, formatTime(c.CreatedAt), formatTime(c.ExpiresAt),
	)
	return err
}

func (r *challengesRepo) GetTOTPChallenge(ctx context.Context, userID string) (domain.TOTPChallenge, error) {
	return scanChallenge(r.q.QueryRowContext(ctx, `
		SELECT user_id, attempts, created_at, expires_at
		FROM totp_challenges WHERE user_id = ?`,
		userID,
	))
}

func (r *challengesRepo) IncrementTOTPAttempts(ctx context.Context, userID string) (domain.TOTPChallenge, error) {
	return scanChallenge(r.q.QueryRowContext(ctx, `
		UPDATE totp_challenges SET attempts = attempts + 1
		WHERE user_id = ?
		RETURNING user_id, attempts, created_at, expires_at`,
		userID,
	))
}

func (r *challengesRepo) DeleteTOTPChallenge(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM totp_challenges WHERE user_id = ?`, userID)
	return err
}

func (r *challengesRepo) PutLinkRequest(ctx context.Context, l domain.LinkRequest) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO link_requests (state_hash, user_id, provider, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		l.StateHash, mapStringNull(l.UserID), l.Provider, formatTime(l.CreatedAt), formatTime(l.ExpiresAt),
	)
	return mapConstraint(err)
}

func (r *challengesRepo) TakeLinkRequest(ctx context.Context, stateHash string) (domain.LinkRequest, error) {
	var (
		l                    domain.LinkRequest
		userID               sql.NullString
		createdAt, expiresAt string
	)

	err := r.q.QueryRowContext(ctx, `
		DELETE FROM link_requests WHERE state_hash = ?
		RETURNING state_hash, user_id, provider, created_at, expires_at`,
		stateHash,
	).Scan(&l.StateHash, &userID, &l.Provider, &createdAt, &expiresAt)
	if err != nil {
		return domain.LinkRequest{}, mapNotFound(err)
	}

	l.UserID = mapNullString(userID)
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.LinkRequest{}, err
	}
	if l.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return domain.LinkRequest{}, err
	}
	return l, nil
}

func (r *challengesRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cutoff := formatTime(now)

	var total int64
	for _, query := range []string{
		`DELETE FROM totp_challenges WHERE expires_at <= ?`,
		`DELETE FROM link_requests WHERE expires_at <= ?`,
	} {
		res, err := r.q.ExecContext(ctx, query, cutoff)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Ping is a no-op; the owning Store reports database health.
func (r *challengesRepo) Ping(ctx context.Context) error { return nil }

func scanChallenge(row *sql.Row) (domain.TOTPChallenge, error) {
	var (
		c                    domain.TOTPChallenge
		createdAt, expiresAt string
	)

	if err := row.Scan(&c.UserID, &c.Attempts, &createdAt, &expiresAt); err != nil {
		return domain.TOTPChallenge{}, mapNotFound(err)
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.TOTPChallenge{}, err
	}
	if c.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return domain.TOTPChallenge{}, err
	}
	return c, nil
}
