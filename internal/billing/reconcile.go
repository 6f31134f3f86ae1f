package billing

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-maintenance/internal/db"
)

// DriftReport compares an invoice's stored money fields against the values
// recomputed from its line items. Because totals recomputation is a swallowed
// side effect, a failed recomputation can leave the stored fields stale;
// reconciliation is the way to detect and repair that.
type DriftReport struct {
	InvoiceID string `json:"invoice_id"`

	StoredSubTotal      float64 `json:"stored_sub_total"`
	StoredTax           float64 `json:"stored_tax"`
	StoredInvoiceAmount float64 `json:"stored_invoice_amount"`

	ExpectedSubTotal      float64 `json:"expected_sub_total"`
	ExpectedTax           float64 `json:"expected_tax"`
	ExpectedInvoiceAmount float64 `json:"expected_invoice_amount"`

	Drifted  bool `json:"drifted"`
	Repaired bool `json:"repaired"`
}

// ReconcileInvoice recomputes one invoice's totals from its line items and
// reports drift. When repair is set and the stored fields differ, the
// recomputed values are persisted.
func (o *Orchestrator) ReconcileInvoice(ctx context.Context, invoiceID string, repair bool) (*DriftReport, error) {
	invoice, err := o.invoices.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	subTotal, tax, amount, err := o.totals.Compute(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	report := &DriftReport{
		InvoiceID:             invoiceID,
		StoredSubTotal:        invoice.SubTotal,
		StoredTax:             invoice.Tax,
		StoredInvoiceAmount:   invoice.InvoiceAmount,
		ExpectedSubTotal:      subTotal,
		ExpectedTax:           tax,
		ExpectedInvoiceAmount: amount,
	}
	report.Drifted = invoice.SubTotal != subTotal ||
		invoice.Tax != tax ||
		invoice.InvoiceAmount != amount

	if report.Drifted && repair {
		if err := o.invoices.UpdateInvoiceTotals(ctx, invoiceID, subTotal, tax, amount); err != nil {
			return nil, err
		}
		report.Repaired = true
	}
	return report, nil
}

// ReconcileAll walks every invoice in pages and reconciles each one. Only
// drifted invoices appear in the result.
func (o *Orchestrator) ReconcileAll(ctx context.Context, repair bool) ([]DriftReport, error) {
	const pageSize = 200

	var drifted []DriftReport
	for skip := int64(0); ; skip += pageSize {
		invoices, _, err := o.invoices.FindInvoices(ctx, bson.M{}, db.Page{Skip: skip, Limit: pageSize})
		if err != nil {
			return nil, err
		}
		if len(invoices) == 0 {
			return drifted, nil
		}

		for i := range invoices {
			report, err := o.ReconcileInvoice(ctx, invoices[i].ID.Hex(), repair)
			if err != nil {
				return nil, err
			}
			if report.Drifted {
				drifted = append(drifted, *report)
			}
		}

		if int64(len(invoices)) < pageSize {
			return drifted, nil
		}
	}
}
