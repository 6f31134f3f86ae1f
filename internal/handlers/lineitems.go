package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-maintenance/internal/billing"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/pricing"
)

// lineItemPayload accepts fractional mileage readings from clients. Miles
// are floored, never rounded up, before warranty matching sees them.
type lineItemPayload struct {
	models.LineItem
	Mileage         float64 `json:"mileage"`
	WarrantyMileage float64 `json:"warranty_mileage"`
}

func (p lineItemPayload) toModel() models.LineItem {
	item := p.LineItem
	item.Mileage = pricing.FloorMiles(p.Mileage)
	item.WarrantyMileage = pricing.FloorMiles(p.WarrantyMileage)
	return item
}

// LineItemHandler serves the line item endpoints. Every write runs through
// the orchestrator, which gates on invoice status, prices the item and drives
// totals and alerts.
type LineItemHandler struct {
	orch  *billing.Orchestrator
	items db.LineItemCollection
}

func NewLineItemHandler(orch *billing.Orchestrator, items db.LineItemCollection) *LineItemHandler {
	return &LineItemHandler{orch: orch, items: items}
}

func (h *LineItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload lineItemPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.orch.CreateLineItem(r.Context(), payload.toModel())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *LineItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.FindLineItemByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *LineItemHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if invoiceID := r.URL.Query().Get("invoice_id"); invoiceID != "" {
		filter["invoice_id"] = invoiceID
	}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if serviceTypeID := r.URL.Query().Get("service_type_id"); serviceTypeID != "" {
		filter["service_type_id"] = serviceTypeID
	}

	items, total, err := h.items.FindLineItems(r.Context(), filter, parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, Total: total})
}

func (h *LineItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload lineItemPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.orch.UpdateLineItem(r.Context(), chi.URLParam(r, "id"), payload.toModel())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *LineItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.orch.DeleteLineItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
