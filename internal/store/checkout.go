package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DivyaNareshkumarPatel/e-shop/internal/database"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/models"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/pricing"
)

// Checkout prices the cart, fabricates a receipt and clears the cart, all in
// one serializable transaction. Two concurrent checkouts for the same user
// cannot both succeed: the serialized loser sees an empty cart. The receipt
// is never persisted; there is no order record beyond the response.
func Checkout(ctx context.Context, db *sql.DB, userID int64, name, email string) (*models.Receipt, error) {
	var receipt *models.Receipt

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		lines, err := getCartLines(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return database.ErrEmptyCart
		}

		products, err := listProducts(ctx, tx)
		if err != nil {
			return err
		}
		view := pricing.Calculate(lines, products)

		_, err = tx.ExecContext(ctx,
			`DELETE FROM cart_lines WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		receipt = &models.Receipt{
			OrderID:   uuid.NewString(),
			Timestamp: time.Now().UTC(),
			Customer: models.Customer{
				Name:   name,
				Email:  email,
				UserID: userID,
			},
			TotalPaid: view.GrandTotal,
			Items:     view.Items,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}
