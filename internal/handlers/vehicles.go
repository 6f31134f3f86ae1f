package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-maintenance/internal/billing"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/vin"
)

// VehicleHandler serves the vehicle endpoints. Writes flow through the
// orchestrator so permit alerts fire; reads hit the store directly.
type VehicleHandler struct {
	orch     *billing.Orchestrator
	vehicles db.VehicleCollection
	decoder  vin.Decoder
}

func NewVehicleHandler(orch *billing.Orchestrator, vehicles db.VehicleCollection, decoder vin.Decoder) *VehicleHandler {
	return &VehicleHandler{orch: orch, vehicles: vehicles, decoder: decoder}
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := decodeJSON(r, &vehicle); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.orch.CreateVehicle(r.Context(), vehicle)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if makeFilter := r.URL.Query().Get("make"); makeFilter != "" {
		filter["make"] = makeFilter
	}

	vehicles, total, err := h.vehicles.FindVehicles(r.Context(), filter, parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: vehicles, Total: total})
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := decodeJSON(r, &vehicle); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.orch.UpdateVehicle(r.Context(), chi.URLParam(r, "id"), vehicle)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.vehicles.DeleteVehicle(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DecodeVIN resolves a VIN to make/model/year without creating anything.
func (h *VehicleHandler) DecodeVIN(w http.ResponseWriter, r *http.Request) {
	decoded, err := h.decoder.Decode(r.Context(), chi.URLParam(r, "vin"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decoded)
}

type importResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors,omitempty"`
}

// BulkImport creates many vehicles from one request. Each record is
// independent; a failing one is reported and the rest continue.
func (h *VehicleHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	var vehicles []models.Vehicle
	if err := decodeJSON(r, &vehicles); err != nil {
		writeError(w, err)
		return
	}

	result := importResult{}
	for i := range vehicles {
		if _, err := h.orch.CreateVehicle(r.Context(), vehicles[i]); err != nil {
			log.WithError(err).WithField("vin", vehicles[i].VIN).Warn("vehicle import record failed")
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Created++
	}
	writeJSON(w, http.StatusOK, result)
}
