package billing

import (
	"context"
	"fmt"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// StatusMachine moves invoices between Draft and PendingAlertReview based on
// the presence of Pending alerts, and gates line item mutations on the
// invoice status. Administrative statuses (Approved, Rejected, Paid,
// Cancelled) are never entered or left here.
type StatusMachine struct {
	invoices db.InvoiceCollection
	alerts   db.AlertCollection
}

// NewStatusMachine creates an invoice status state machine.
func NewStatusMachine(invoices db.InvoiceCollection, alerts db.AlertCollection) *StatusMachine {
	return &StatusMachine{invoices: invoices, alerts: alerts}
}

// EnsureMutable returns a conflict error unless the invoice is in a status
// that permits line item writes.
func (m *StatusMachine) EnsureMutable(invoice *models.Invoice) error {
	if invoice.Status.Mutable() {
		return nil
	}
	return &models.ConflictError{
		Reason: fmt.Sprintf("invoice %s is %s; line items may only change while the invoice is %s or %s",
			invoice.ID.Hex(), invoice.Status, models.InvoiceStatusDraft, models.InvoiceStatusPendingAlertReview),
	}
}

// OnAlertCreated handles a newly created alert. A Pending alert referencing a
// Draft invoice moves the invoice to PendingAlertReview.
func (m *StatusMachine) OnAlertCreated(ctx context.Context, alert *models.Alert) error {
	if alert.InvoiceID == "" || alert.Status != models.AlertStatusPending {
		return nil
	}
	return m.Sync(ctx, alert.InvoiceID)
}

// OnAlertUpdated handles an alert whose status changed. Moving out of Pending
// may return the invoice to Draft; moving into Pending forces
// PendingAlertReview.
func (m *StatusMachine) OnAlertUpdated(ctx context.Context, prev, cur *models.Alert) error {
	if cur.InvoiceID == "" || prev.Status == cur.Status {
		return nil
	}
	return m.Sync(ctx, cur.InvoiceID)
}

// OnAlertDeleted handles an alert removal by rechecking the remaining Pending
// alerts for the invoice it referenced.
func (m *StatusMachine) OnAlertDeleted(ctx context.Context, alert *models.Alert) error {
	if alert.InvoiceID == "" {
		return nil
	}
	return m.Sync(ctx, alert.InvoiceID)
}

// Sync recounts the invoice's Pending alerts and applies the Draft <->
// PendingAlertReview transition. Invoices in administrative statuses are left
// alone.
func (m *StatusMachine) Sync(ctx context.Context, invoiceID string) error {
	invoice, err := m.invoices.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if !invoice.Status.Mutable() {
		return nil
	}

	pending, err := m.alerts.CountPendingAlertsByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}

	switch {
	case pending > 0 && invoice.Status == models.InvoiceStatusDraft:
		return m.invoices.UpdateInvoiceStatus(ctx, invoiceID, models.InvoiceStatusPendingAlertReview)
	case pending == 0 && invoice.Status == models.InvoiceStatusPendingAlertReview:
		return m.invoices.UpdateInvoiceStatus(ctx, invoiceID, models.InvoiceStatusDraft)
	}
	return nil
}
