package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
)

const userColumns = `id, username, password_hash, role, google_id,
	display_name, first_name, last_name, picture_url, email, email_verified,
	email_from_provider, auto_link_disabled, totp_secret, totp_enabled,
	version, created_at, updated_at`

type usersRepo struct {
	q querier
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *usersRepo) GetUserByGoogleID(ctx context.Context, googleID string) (domain.User, error) {
	if googleID == "" {
		return domain.User{}, store.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = ?`, googleID)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if email == "" {
		return domain.User{}, store.ErrNotFound
	}
	return r.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY created_at, id LIMIT 1`,
		email,
	)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role), mapStringNull(u.GoogleID),
		u.Profile.DisplayName, u.Profile.FirstName, u.Profile.LastName, u.Profile.PictureURL,
		u.Profile.Email, u.Profile.EmailVerified,
		u.EmailFromProvider, u.AutoLinkDisabled, u.TOTPSecret, u.TOTPEnabled,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) (domain.User, error) {
	u.UpdatedAt = time.Now().UTC()

	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET
			username = ?, password_hash = ?, role = ?, google_id = ?,
			display_name = ?, first_name = ?, last_name = ?, picture_url = ?,
			email = ?, email_verified = ?, email_from_provider = ?,
			auto_link_disabled = ?, totp_secret = ?, totp_enabled = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		u.Username, u.PasswordHash, string(u.Role), mapStringNull(u.GoogleID),
		u.Profile.DisplayName, u.Profile.FirstName, u.Profile.LastName, u.Profile.PictureURL,
		u.Profile.Email, u.Profile.EmailVerified, u.EmailFromProvider,
		u.AutoLinkDisabled, u.TOTPSecret, u.TOTPEnabled,
		formatTime(u.UpdatedAt),
		u.ID, u.Version,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, err
	}
	if n == 0 {
		// Either the row is gone or someone saved first.
		var exists int
		err := r.q.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, u.ID).Scan(&exists)
		if err != nil {
			return domain.User{}, mapNotFound(err)
		}
		return domain.User{}, store.ErrConflict
	}

	u.Version++
	return u, nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *usersRepo) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u                  domain.User
		role               string
		googleID           sql.NullString
		createdAt, updated string
	)

	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &role, &googleID,
		&u.Profile.DisplayName, &u.Profile.FirstName, &u.Profile.LastName, &u.Profile.PictureURL,
		&u.Profile.Email, &u.Profile.EmailVerified,
		&u.EmailFromProvider, &u.AutoLinkDisabled, &u.TOTPSecret, &u.TOTPEnabled,
		&u.Version, &createdAt, &updated,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = domain.Role(role)
	u.GoogleID = mapNullString(googleID)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
