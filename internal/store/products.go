package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/DivyaNareshkumarPatel/e-shop/internal/database"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the read helpers can
// serve plain reads and the checkout transaction alike.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func CreateProduct(ctx context.Context, db *sql.DB, id int64, name string, price decimal.Decimal, category, imageURL, description string, details []string) (*models.Product, error) {
	product := &models.Product{}

	query := `
		INSERT INTO products (id, name, price, category, image_url, description, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, name, price, category, image_url, description, details, created_at`

	err := db.QueryRowContext(ctx, query, id, name, price, category, imageURL, description, pq.Array(details)).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Category,
		&product.ImageURL,
		&product.Description,
		&product.Details,
		&product.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrProductExists
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, name, price, category, image_url, description, details, created_at
		FROM products
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Category,
		&product.ImageURL,
		&product.Description,
		&product.Details,
		&product.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// ListProducts returns the full catalog. The totals calculator joins cart
// lines against a complete snapshot, so there is no pagination here.
func ListProducts(ctx context.Context, db *sql.DB) ([]models.Product, error) {
	return listProducts(ctx, db)
}

func listProducts(ctx context.Context, q querier) ([]models.Product, error) {
	query := `
		SELECT id, name, price, category, image_url, description, details, created_at
		FROM products
		ORDER BY created_at, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Category,
			&product.ImageURL,
			&product.Description,
			&product.Details,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}
