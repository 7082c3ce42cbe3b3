package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vkurushin/wordchain/internal/model"
)

// CityRepo handles city reference-list database operations.
type CityRepo struct {
	db *sql.DB
}

// NewCityRepo creates a CityRepo.
func NewCityRepo(db *sql.DB) *CityRepo {
	return &CityRepo{db: db}
}

// GetByTitle returns a city by its canonical capitalized title, or
// (nil, nil). Callers capitalize the lookup first.
func (r *CityRepo) GetByTitle(ctx context.Context, title string) (*model.City, error) {
	var (
		c       model.City
		region  sql.NullInt64
		country sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, id_region, id_country FROM cities WHERE title = $1`, title,
	).Scan(&c.ID, &c.Title, &region, &country)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get city: %w", err)
	}
	if region.Valid {
		c.RegionID = &region.Int64
	}
	if country.Valid {
		c.CountryID = &country.Int64
	}
	return &c, nil
}

// List returns all cities.
func (r *CityRepo) List(ctx context.Context) ([]model.City, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, id_region, id_country FROM cities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var cities []model.City
	for rows.Next() {
		var (
			c       model.City
			region  sql.NullInt64
			country sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.Title, &region, &country); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		if region.Valid {
			c.RegionID = &region.Int64
		}
		if country.Valid {
			c.CountryID = &country.Int64
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}
