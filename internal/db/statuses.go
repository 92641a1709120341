package db

import (
	"context"
	"fmt"

	"github.com/statustrack/backend/internal/model"
)

const statusColumns = `id, title, description, state, user_id, created_at, updated_at`

func scanStatus(row interface{ Scan(dest ...any) error }) (*model.Status, error) {
	var status model.Status
	err := row.Scan(
		&status.ID,
		&status.Title,
		&status.Description,
		&status.State,
		&status.UserID,
		&status.CreatedAt,
		&status.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (db *Postgres) CreateStatus(ctx context.Context, title string, description *string, state string, userID int64) (*model.Status, error) {
	query := `
		INSERT INTO statuses (title, description, state, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + statusColumns
	return scanStatus(db.Pool.QueryRow(ctx, query, title, description, state, userID))
}

func (db *Postgres) GetStatusByID(ctx context.Context, statusID int64) (*model.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM statuses WHERE id = $1`
	return scanStatus(db.Pool.QueryRow(ctx, query, statusID))
}

func statusFilterClause(filter model.StatusFilter) (string, []any) {
	where := ""
	args := []any{}
	appendCond := func(cond string, value any) {
		args = append(args, value)
		if where == "" {
			where = "WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}

	if filter.UserID != 0 {
		appendCond("user_id = $%d", filter.UserID)
	}
	if filter.State != "" {
		appendCond("state = $%d", filter.State)
	}
	return where, args
}

func (db *Postgres) CountStatuses(ctx context.Context, filter model.StatusFilter) (int64, error) {
	where, args := statusFilterClause(filter)
	var total int64
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM statuses `+where, args...).Scan(&total)
	return total, err
}

func (db *Postgres) ListStatuses(ctx context.Context, filter model.StatusFilter, offset int64, limit int) ([]model.Status, error) {
	where, args := statusFilterClause(filter)
	query := fmt.Sprintf(`
		SELECT `+statusColumns+`
		FROM statuses %s
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := []model.Status{}
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	return statuses, rows.Err()
}

// UpdateStatus applies a partial update in one statement; nil arguments
// leave the corresponding column untouched.
func (db *Postgres) UpdateStatus(ctx context.Context, statusID int64, title, description, state *string) (*model.Status, error) {
	query := `
		UPDATE statuses
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    state = COALESCE($4, state),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + statusColumns
	return scanStatus(db.Pool.QueryRow(ctx, query, statusID, title, description, state))
}

func (db *Postgres) DeleteStatus(ctx context.Context, statusID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM statuses WHERE id = $1`, statusID)
	return err
}
