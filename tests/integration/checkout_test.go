package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/DivyaNareshkumarPatel/e-shop/internal/database"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/store"
)

func TestCheckoutEmptyCart(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.Checkout(ctx, db, testUserID, "Test User", "test@example.com")
	if !errors.Is(err, database.ErrEmptyCart) {
		t.Errorf("Expected empty cart failure, got: %v", err)
	}
}

func TestCheckoutClearsCartAndPricesReceipt(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, 1, "Widget", "10.00")

	if _, err := store.UpsertCartLine(ctx, db, testUserID, 1, 2); err != nil {
		t.Fatalf("Upsert cart line: %v", err)
	}

	receipt, err := store.Checkout(ctx, db, testUserID, "Test User", "test@example.com")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if receipt.OrderID == "" {
		t.Error("Receipt should carry an order id")
	}
	if receipt.Timestamp.IsZero() {
		t.Error("Receipt should carry a timestamp")
	}
	if receipt.Customer.Name != "Test User" || receipt.Customer.Email != "test@example.com" || receipt.Customer.UserID != testUserID {
		t.Errorf("Unexpected customer: %+v", receipt.Customer)
	}
	// Reference totals: subtotal 20.00, tax 1.60, shipping 15.00.
	if !receipt.TotalPaid.Equal(decimal.RequireFromString("36.60")) {
		t.Errorf("Expected total paid 36.60, got %s", receipt.TotalPaid)
	}
	if len(receipt.Items) != 1 || receipt.Items[0].Qty != 2 {
		t.Errorf("Unexpected receipt items: %+v", receipt.Items)
	}

	view, err := store.GetCartView(ctx, db, testUserID)
	if err != nil {
		t.Fatalf("Get cart after checkout: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("Expected empty cart after checkout, got %d items", len(view.Items))
	}
}

func TestCheckoutTwiceFailsSecondTime(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, 1, "Widget", "10.00")

	if _, err := store.UpsertCartLine(ctx, db, testUserID, 1, 1); err != nil {
		t.Fatalf("Upsert cart line: %v", err)
	}

	if _, err := store.Checkout(ctx, db, testUserID, "Test User", "test@example.com"); err != nil {
		t.Fatalf("First checkout: %v", err)
	}

	_, err := store.Checkout(ctx, db, testUserID, "Test User", "test@example.com")
	if !errors.Is(err, database.ErrEmptyCart) {
		t.Errorf("Expected empty cart failure on second checkout, got: %v", err)
	}
}

func TestConcurrentCheckoutsSingleSuccess(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, 1, "Widget", "10.00")

	if _, err := store.UpsertCartLine(ctx, db, testUserID, 1, 2); err != nil {
		t.Fatalf("Upsert cart line: %v", err)
	}

	concurrency := 5
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := store.Checkout(ctx, db, testUserID, "Test User", "test@example.com")
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else {
			// Losers see an empty cart once the winner commits, possibly
			// after serialization retries.
			t.Logf("Checkout loser: %v", err)
		}
	}

	if successCount != 1 {
		t.Errorf("Expected exactly one successful checkout, got %d", successCount)
	}
}
