package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-maintenance/internal/billing"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// InvoiceHandler serves the invoice endpoints. All writes run through the
// orchestrator; the money fields and status transitions it manages are never
// writable here directly.
type InvoiceHandler struct {
	orch     *billing.Orchestrator
	invoices db.InvoiceCollection
}

func NewInvoiceHandler(orch *billing.Orchestrator, invoices db.InvoiceCollection) *InvoiceHandler {
	return &InvoiceHandler{orch: orch, invoices: invoices}
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var invoice models.Invoice
	if err := decodeJSON(r, &invoice); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.orch.CreateInvoice(r.Context(), invoice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.FindInvoiceByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// GetByNumber looks an invoice up by its human-entered invoice number.
func (h *InvoiceHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	invoice, err := h.invoices.FindInvoiceByNumber(r.Context(), number)
	if err != nil {
		writeError(w, err)
		return
	}
	if invoice == nil {
		writeError(w, &models.NotFoundError{Entity: "invoice", ID: number})
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if vendorID := r.URL.Query().Get("vendor_id"); vendorID != "" {
		filter["vendor_id"] = vendorID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.IsValidInvoiceStatus(models.InvoiceStatus(status)) {
			writeError(w, &models.ValidationError{Field: "status", Reason: "unknown invoice status"})
			return
		}
		filter["status"] = status
	}

	invoices, total, err := h.invoices.FindInvoices(r.Context(), filter, parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: invoices, Total: total})
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var invoice models.Invoice
	if err := decodeJSON(r, &invoice); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.orch.UpdateInvoice(r.Context(), chi.URLParam(r, "id"), invoice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.orch.DeleteInvoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reconcile recomputes one invoice's totals from its line items and reports
// drift; with ?repair=true it also rewrites the stored fields.
func (h *InvoiceHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	repair := r.URL.Query().Get("repair") == "true"
	report, err := h.orch.ReconcileInvoice(r.Context(), chi.URLParam(r, "id"), repair)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ReconcileAll sweeps every invoice and returns the drifted ones.
func (h *InvoiceHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	repair := r.URL.Query().Get("repair") == "true"
	reports, err := h.orch.ReconcileAll(r.Context(), repair)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: reports, Total: int64(len(reports))})
}
