package store

import (
	"context"
	"fmt"

	"catalog-service/internal/models"
)

// AddCategory inserts a category into the lookup table
func (s *Store) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	ctx, done := s.begin(ctx, "add_category")
	defer done()

	var category models.Category
	err := s.db.GetContext(ctx, &category,
		"INSERT INTO categories (name) VALUES ($1) RETURNING id, name, created_at", name)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add category: %w", err)
	}
	return &category, nil
}

// AddUnit inserts a unit into the lookup table
func (s *Store) AddUnit(ctx context.Context, name string) (*models.Unit, error) {
	ctx, done := s.begin(ctx, "add_unit")
	defer done()

	var unit models.Unit
	err := s.db.GetContext(ctx, &unit,
		"INSERT INTO units (name) VALUES ($1) RETURNING id, name, created_at", name)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add unit: %w", err)
	}
	return &unit, nil
}
