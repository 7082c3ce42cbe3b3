package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vkurushin/wordchain/internal/model"
)

// AdminRepo handles admin account database operations.
type AdminRepo struct {
	db *sql.DB
}

// NewAdminRepo creates an AdminRepo.
func NewAdminRepo(db *sql.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

// GetByEmail returns an admin by email, or (nil, nil).
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var a model.Admin
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password FROM admins WHERE email = $1`, email,
	).Scan(&a.ID, &a.Email, &a.Password)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &a, nil
}

// Create stores an admin with an already-hashed password.
func (r *AdminRepo) Create(ctx context.Context, email, passwordHash string) (*model.Admin, error) {
	var a model.Admin
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO admins (email, password) VALUES ($1, $2)
		 RETURNING id, email, password`,
		email, passwordHash,
	).Scan(&a.ID, &a.Email, &a.Password)
	if err != nil {
		return nil, wrapErr("create admin", err)
	}
	return &a, nil
}
