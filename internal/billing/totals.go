// Package billing is the cross-entity consistency and alerting engine: it
// keeps invoice totals in sync with line items, drives the invoice status
// state machine off unresolved alerts, and evaluates the business rules that
// raise advisory alerts.
package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/pricing"
)

// TotalsAggregator recomputes an invoice's derived money fields from its
// current line items.
type TotalsAggregator struct {
	invoices db.InvoiceCollection
	items    db.LineItemCollection
	taxRate  decimal.Decimal
}

// NewTotalsAggregator creates a totals aggregator with a fixed tax rate.
func NewTotalsAggregator(invoices db.InvoiceCollection, items db.LineItemCollection, taxRate float64) *TotalsAggregator {
	return &TotalsAggregator{
		invoices: invoices,
		items:    items,
		taxRate:  decimal.NewFromFloat(taxRate),
	}
}

// Compute reads every line item of the invoice and returns
// subTotal = round2(sum of total prices),
// tax = round2(taxable subtotal * taxRate),
// invoiceAmount = round2(subTotal + tax).
// An invoice with no line items computes to all zeros.
func (a *TotalsAggregator) Compute(ctx context.Context, invoiceID string) (subTotal, tax, invoiceAmount float64, err error) {
	items, err := a.items.FindLineItemsByInvoice(ctx, invoiceID)
	if err != nil {
		return 0, 0, 0, err
	}

	sub := decimal.Zero
	taxable := decimal.Zero
	for _, item := range items {
		price := decimal.NewFromFloat(item.TotalPrice)
		sub = sub.Add(price)
		if item.Taxable {
			taxable = taxable.Add(price)
		}
	}

	sub = pricing.Round2(sub)
	tx := pricing.Round2(taxable.Mul(a.taxRate))
	amount := pricing.Round2(sub.Add(tx))

	subTotal, _ = sub.Float64()
	tax, _ = tx.Float64()
	invoiceAmount, _ = amount.Float64()
	return subTotal, tax, invoiceAmount, nil
}

// Recompute computes the invoice's derived money fields and persists them.
// Only the three money fields are written; every other invoice field is left
// untouched.
func (a *TotalsAggregator) Recompute(ctx context.Context, invoiceID string) error {
	subTotal, tax, invoiceAmount, err := a.Compute(ctx, invoiceID)
	if err != nil {
		return err
	}
	return a.invoices.UpdateInvoiceTotals(ctx, invoiceID, subTotal, tax, invoiceAmount)
}
