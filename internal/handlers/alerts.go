package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-maintenance/internal/billing"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// AlertHandler serves the alert review endpoints. Status transitions carry
// the acting user from the request's claims so resolutions are attributable.
type AlertHandler struct {
	orch   *billing.Orchestrator
	alerts db.AlertCollection
}

func NewAlertHandler(orch *billing.Orchestrator, alerts db.AlertCollection) *AlertHandler {
	return &AlertHandler{orch: orch, alerts: alerts}
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var alert models.Alert
	if err := decodeJSON(r, &alert); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.orch.CreateAlert(r.Context(), alert)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	alert, err := h.alerts.FindAlertByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.IsValidAlertStatus(models.AlertStatus(status)) {
			writeError(w, &models.ValidationError{Field: "status", Reason: "unknown alert status"})
			return
		}
		filter["status"] = status
	}
	if alertType := r.URL.Query().Get("type"); alertType != "" {
		filter["type"] = alertType
	}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if invoiceID := r.URL.Query().Get("invoice_id"); invoiceID != "" {
		filter["invoice_id"] = invoiceID
	}
	if lineItemID := r.URL.Query().Get("line_item_id"); lineItemID != "" {
		filter["line_item_id"] = lineItemID
	}

	alerts, total, err := h.alerts.FindAlerts(r.Context(), filter, parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: alerts, Total: total})
}

func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var alert models.Alert
	if err := decodeJSON(r, &alert); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.orch.UpdateAlert(r.Context(), chi.URLParam(r, "id"), alert, claims.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.orch.DeleteAlert(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
