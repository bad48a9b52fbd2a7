// Package pricing holds the totals calculator shared by the cart and
// checkout operations. It is pure: no I/O, no clock, no store access.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/DivyaNareshkumarPatel/e-shop/internal/models"
)

var (
	// FlatShipping applies to every cart, including an empty one.
	FlatShipping = decimal.RequireFromString("15.00")
	TaxRate      = decimal.RequireFromString("0.08")
)

// Calculate joins cart lines with a catalog snapshot into a priced view.
// Lines whose product id does not resolve are dropped without error. Item
// order follows the input line order.
//
// Rounding policy: line totals accumulate unrounded and the subtotal is
// rounded once at the end; tax is derived from the rounded subtotal. The
// per-item lineTotal is rounded independently for display.
func Calculate(lines []models.CartLine, products []models.Product) models.CartView {
	catalog := make(map[int64]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	items := make([]models.CartItem, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		product, ok := catalog[line.ProductID]
		if !ok {
			continue
		}

		raw := product.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
		subtotal = subtotal.Add(raw)

		items = append(items, models.CartItem{
			ProductID: line.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Qty:       line.Qty,
			ImageURL:  product.ImageURL,
			LineTotal: raw.Round(2),
		})
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)

	return models.CartView{
		Items:      items,
		Subtotal:   subtotal,
		Shipping:   FlatShipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax).Add(FlatShipping).Round(2),
	}
}
