package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"catalog-service/internal/models"

	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, category, unit, business_unit, location,
	price, product_type, is_available, created_at, updated_at`

// ListProducts returns one page of products matching filter plus the total match count
func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter, sortBy string, limit, offset int) ([]models.Product, int, error) {
	ctx, done := s.begin(ctx, "list_products")
	defer done()

	where, args := buildProductWhere(filter)

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	if !models.SortableColumns[sortBy] {
		sortBy = "id"
	}

	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s, id LIMIT $%d OFFSET $%d",
		productColumns, where, sortBy, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

func buildProductWhere(filter models.ProductFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	add("product_type", filter.ProductType)
	add("business_unit", filter.BusinessUnit)
	add("location", filter.Location)
	add("category", filter.Category)

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	ctx, done := s.begin(ctx, "get_product")
	defer done()

	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

// CreateProduct inserts product and replaces it with the stored row, so
// server-assigned fields and column coercions are reflected.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	ctx, done := s.begin(ctx, "create_product")
	defer done()

	query := `
		INSERT INTO products (name, description, category, unit, business_unit,
		                      location, price, product_type, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + productColumns

	err := s.db.QueryRowxContext(ctx, query,
		product.Name, product.Description, product.Category, product.Unit, product.BusinessUnit,
		product.Location, product.Price, product.ProductType, product.IsAvailable,
	).StructScan(product)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProductPrice sets the price and bumps updated_at
func (s *Store) UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) (*models.Product, error) {
	ctx, done := s.begin(ctx, "update_price")
	defer done()

	return s.updateReturning(ctx,
		"UPDATE products SET price = $1, updated_at = NOW() WHERE id = $2 RETURNING "+productColumns,
		price, id)
}

// UpdateProductAvailability sets is_available and bumps updated_at
func (s *Store) UpdateProductAvailability(ctx context.Context, id int64, available bool) (*models.Product, error) {
	ctx, done := s.begin(ctx, "update_availability")
	defer done()

	return s.updateReturning(ctx,
		"UPDATE products SET is_available = $1, updated_at = NOW() WHERE id = $2 RETURNING "+productColumns,
		available, id)
}

func (s *Store) updateReturning(ctx context.Context, query string, value interface{}, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, query, value, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return &product, nil
}

// DeleteProduct deletes the product and reports ErrNotFound when no row was removed
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	ctx, done := s.begin(ctx, "delete_product")
	defer done()

	var deleted int64
	err := s.db.GetContext(ctx, &deleted, "DELETE FROM products WHERE id = $1 RETURNING id", id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}
