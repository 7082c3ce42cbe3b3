package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vkurushin/wordchain/internal/model"
	"github.com/vkurushin/wordchain/internal/repository"
)

// SettingRepo handles game mode database operations.
type SettingRepo struct {
	db *sql.DB
}

// NewSettingRepo creates a SettingRepo.
func NewSettingRepo(db *sql.DB) *SettingRepo {
	return &SettingRepo{db: db}
}

// Create inserts a setting.
func (r *SettingRepo) Create(ctx context.Context, title string, timeout int64) (*model.Setting, error) {
	var s model.Setting
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO settings (title, timeout) VALUES ($1, $2)
		 RETURNING id, title, timeout`,
		title, timeout,
	).Scan(&s.ID, &s.Title, &s.Timeout)
	if err != nil {
		return nil, wrapErr("create setting", err)
	}
	return &s, nil
}

// GetByTitle returns a setting by title, or (nil, nil).
func (r *SettingRepo) GetByTitle(ctx context.Context, title string) (*model.Setting, error) {
	var s model.Setting
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, timeout FROM settings WHERE title = $1`, title,
	).Scan(&s.ID, &s.Title, &s.Timeout)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &s, nil
}

// GetByID returns a setting by ID, or (nil, nil).
func (r *SettingRepo) GetByID(ctx context.Context, id int64) (*model.Setting, error) {
	var s model.Setting
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, timeout FROM settings WHERE id = $1`, id,
	).Scan(&s.ID, &s.Title, &s.Timeout)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &s, nil
}

// List returns all settings.
func (r *SettingRepo) List(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, timeout FROM settings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.ID, &s.Title, &s.Timeout); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Patch updates a setting's title and/or timeout and returns the
// updated row. A missing setting yields ErrNotFound.
func (r *SettingRepo) Patch(ctx context.Context, id int64, title *string, timeout *int64) (*model.Setting, error) {
	sets := []string{}
	args := []any{}
	if title != nil {
		args = append(args, *title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if timeout != nil {
		args = append(args, *timeout)
		sets = append(sets, fmt.Sprintf("timeout = $%d", len(args)))
	}
	if len(sets) == 0 {
		s, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("patch setting: %w", repository.ErrNotFound)
		}
		return s, nil
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE settings SET %s WHERE id = $%d RETURNING id, title, timeout`,
		strings.Join(sets, ", "), len(args))

	var s model.Setting
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Title, &s.Timeout)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patch setting: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr("patch setting", err)
	}
	return &s, nil
}

// Delete removes a setting.
func (r *SettingRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete setting: %w", repository.ErrNotFound)
	}
	return nil
}
