package db

import (
	"context"

	"github.com/statustrack/backend/internal/model"
)

const userColumns = `id, email, name, password_hash, external_subject, is_active, is_admin, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.ExternalSubject,
		&user.IsActive,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) CreateUser(ctx context.Context, email, name string, passwordHash, externalSubject *string, isAdmin bool) (*model.User, error) {
	query := `
		INSERT INTO users (email, name, password_hash, external_subject, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, email, name, passwordHash, externalSubject, isAdmin))
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, userID))
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) GetUserByExternalSubject(ctx context.Context, subject string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_subject = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, subject))
}

func (db *Postgres) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

func (db *Postgres) ListUsers(ctx context.Context, offset int64, limit int) ([]model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateUser applies a partial update in a single statement so all
// field mutations are committed together. Nil arguments leave the
// corresponding column untouched.
func (db *Postgres) UpdateUser(ctx context.Context, userID int64, name, passwordHash *string, isActive, isAdmin *bool) (*model.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    password_hash = COALESCE($3, password_hash),
		    is_active = COALESCE($4, is_active),
		    is_admin = COALESCE($5, is_admin),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, userID, name, passwordHash, isActive, isAdmin))
}

// LinkExternalSubject records the provider-assigned identifier for an
// existing local profile.
func (db *Postgres) LinkExternalSubject(ctx context.Context, userID int64, subject string) error {
	query := `UPDATE users SET external_subject = $2, updated_at = NOW() WHERE id = $1`
	_, err := db.Pool.Exec(ctx, query, userID, subject)
	return err
}

// DeleteUser removes the user; owned statuses go with it via the
// ON DELETE CASCADE constraint.
func (db *Postgres) DeleteUser(ctx context.Context, userID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return err
}
