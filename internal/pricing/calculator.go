// Package pricing computes line item extended prices and owns the rounding
// rules used everywhere money is derived.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Round2 rounds to 2 decimal places, half away from zero. All derived money
// fields (total price, subtotal, tax, invoice amount) go through this.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Round2Float is Round2 over float64 document fields.
func Round2Float(v float64) float64 {
	f, _ := Round2(decimal.NewFromFloat(v)).Float64()
	return f
}

// ExtendedPrice returns round2(unitPrice * quantity). Negative price or
// non-positive quantity is a validation error.
func ExtendedPrice(unitPrice, quantity float64) (float64, error) {
	if unitPrice < 0 {
		return 0, &models.ValidationError{Field: "unitPrice", Reason: "must not be negative"}
	}
	if quantity <= 0 {
		return 0, &models.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	p := decimal.NewFromFloat(unitPrice)
	q := decimal.NewFromFloat(quantity)
	total, _ := Round2(p.Mul(q)).Float64()
	return total, nil
}

// FloorMiles floors a mileage value to a whole mile. Mileage is never rounded
// up so mileage-based warranty coverage is not overstated.
func FloorMiles(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Floor(v))
}
