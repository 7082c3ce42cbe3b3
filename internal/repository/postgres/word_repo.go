package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vkurushin/wordchain/internal/model"
	"github.com/vkurushin/wordchain/internal/repository"
)

// WordRepo handles dictionary word database operations.
type WordRepo struct {
	db *sql.DB
}

// NewWordRepo creates a WordRepo.
func NewWordRepo(db *sql.DB) *WordRepo {
	return &WordRepo{db: db}
}

// Create inserts a word.
func (r *WordRepo) Create(ctx context.Context, title string, isCorrect bool) (*model.Word, error) {
	var w model.Word
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO words (title, is_correct) VALUES ($1, $2)
		 RETURNING id, title, is_correct`,
		title, isCorrect,
	).Scan(&w.ID, &w.Title, &w.IsCorrect)
	if err != nil {
		return nil, wrapErr("create word", err)
	}
	return &w, nil
}

// GetByTitle returns a word by exact title, or (nil, nil).
func (r *WordRepo) GetByTitle(ctx context.Context, title string) (*model.Word, error) {
	var w model.Word
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, is_correct FROM words WHERE title = $1`, title,
	).Scan(&w.ID, &w.Title, &w.IsCorrect)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get word: %w", err)
	}
	return &w, nil
}

// GetByID returns a word by ID, or (nil, nil).
func (r *WordRepo) GetByID(ctx context.Context, id int64) (*model.Word, error) {
	var w model.Word
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, is_correct FROM words WHERE id = $1`, id,
	).Scan(&w.ID, &w.Title, &w.IsCorrect)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get word: %w", err)
	}
	return &w, nil
}

// List returns words, optionally filtered by is_correct.
func (r *WordRepo) List(ctx context.Context, isCorrect *bool) ([]model.Word, error) {
	query := `SELECT id, title, is_correct FROM words`
	args := []any{}
	if isCorrect != nil {
		query += ` WHERE is_correct = $1`
		args = append(args, *isCorrect)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()

	var words []model.Word
	for rows.Next() {
		var w model.Word
		if err := rows.Scan(&w.ID, &w.Title, &w.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Patch updates a word's title and/or correctness flag and returns the
// updated row. A missing word yields ErrNotFound.
func (r *WordRepo) Patch(ctx context.Context, id int64, title *string, isCorrect *bool) (*model.Word, error) {
	sets := []string{}
	args := []any{}
	if title != nil {
		args = append(args, *title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if isCorrect != nil {
		args = append(args, *isCorrect)
		sets = append(sets, fmt.Sprintf("is_correct = $%d", len(args)))
	}
	if len(sets) == 0 {
		w, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, fmt.Errorf("patch word: %w", repository.ErrNotFound)
		}
		return w, nil
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE words SET %s WHERE id = $%d RETURNING id, title, is_correct`,
		strings.Join(sets, ", "), len(args))

	var w model.Word
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&w.ID, &w.Title, &w.IsCorrect)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patch word: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr("patch word", err)
	}
	return &w, nil
}

// Delete removes a word.
func (r *WordRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM words WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete word: %w", repository.ErrNotFound)
	}
	return nil
}
