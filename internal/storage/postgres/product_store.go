package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// ProductStore implements storage.ProductStore using PostgreSQL.
type ProductStore struct {
	pool *Pool
}

// NewProductStore creates a new ProductStore.
func NewProductStore(pool *Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProductStore = (*ProductStore)(nil)

// Insert adds a new product. Returns ErrDuplicateKey if product_id exists.
func (s *ProductStore) Insert(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (
			product_id, name, half_life_hours, color, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ProductID,
		p.Name,
		p.HalfLifeHours,
		p.Color,
		p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its ID. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
		SELECT product_id, name, half_life_hours, color, created_at
		FROM products
		WHERE product_id = $1
	`

	row := s.pool.QueryRow(ctx, query, productID)
	p, err := scanProduct(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// GetAll retrieves all products, ordered by created_at ASC, product_id ASC.
func (s *ProductStore) GetAll(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT product_id, name, half_life_hours, color, created_at
		FROM products
		ORDER BY created_at ASC, product_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Update replaces the mutable fields of an existing product.
func (s *ProductStore) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, half_life_hours = $3, color = $4
		WHERE product_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, p.ProductID, p.Name, p.HalfLifeHours, p.Color)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a product. Returns ErrNotFound if product_id does not exist.
func (s *ProductStore) Delete(ctx context.Context, productID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanProduct scans a single row into a Product.
func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ProductID,
		&p.Name,
		&p.HalfLifeHours,
		&p.Color,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanProducts scans multiple rows into a slice of Product.
func scanProducts(rows pgx.Rows) ([]*domain.Product, error) {
	var products []*domain.Product

	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ProductID,
			&p.Name,
			&p.HalfLifeHours,
			&p.Color,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}
