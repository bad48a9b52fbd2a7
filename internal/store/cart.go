package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DivyaNareshkumarPatel/e-shop/internal/database"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/models"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/pricing"
)

// GetCartView prices the user's current cart against the catalog snapshot.
func GetCartView(ctx context.Context, db *sql.DB, userID int64) (*models.CartView, error) {
	lines, err := getCartLines(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	products, err := listProducts(ctx, db)
	if err != nil {
		return nil, err
	}

	view := pricing.Calculate(lines, products)
	return &view, nil
}

// UpsertCartLine sets the quantity for a (user, product) pair. Quantity zero
// deletes the line; deleting an absent line is not an error. A positive
// quantity replaces any existing one, it does not increment. The product is
// checked before any mutation.
func UpsertCartLine(ctx context.Context, db *sql.DB, userID, productID int64, qty int) (*models.CartView, error) {
	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)",
			productID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return database.ErrProductNotFound
		}

		if qty == 0 {
			_, err := tx.ExecContext(ctx,
				`DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`,
				userID, productID)
			if err != nil {
				return fmt.Errorf("delete cart line: %w", err)
			}
			return nil
		}

		// created_at is left untouched on conflict so the line keeps its
		// original position in the view.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cart_lines (user_id, product_id, qty, created_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (user_id, product_id) DO UPDATE SET qty = EXCLUDED.qty`,
			userID, productID, qty)
		if err != nil {
			return fmt.Errorf("upsert cart line: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetCartView(ctx, db, userID)
}

// RemoveCartLine deletes the line and returns the recomputed view. A missing
// line is ErrCartLineNotFound.
func RemoveCartLine(ctx context.Context, db *sql.DB, userID, productID int64) (*models.CartView, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return nil, fmt.Errorf("delete cart line: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, database.ErrCartLineNotFound
	}

	return GetCartView(ctx, db, userID)
}

func getCartLines(ctx context.Context, q querier, userID int64) ([]models.CartLine, error) {
	query := `
		SELECT user_id, product_id, qty, created_at
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY created_at, id`

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var line models.CartLine
		err := rows.Scan(
			&line.UserID,
			&line.ProductID,
			&line.Qty,
			&line.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}
