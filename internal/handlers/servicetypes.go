package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// ServiceTypeHandler serves the service catalog endpoints.
type ServiceTypeHandler struct {
	services db.ServiceTypeCollection
}

func NewServiceTypeHandler(services db.ServiceTypeCollection) *ServiceTypeHandler {
	return &ServiceTypeHandler{services: services}
}

func (h *ServiceTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var serviceType models.ServiceType
	if err := decodeJSON(r, &serviceType); err != nil {
		writeError(w, err)
		return
	}
	if serviceType.Name == "" {
		writeError(w, &models.ValidationError{Field: "name", Reason: "required"})
		return
	}

	serviceType.ID = primitive.NewObjectID()
	serviceType.IsActive = true
	serviceType.CreatedAt = time.Now()
	serviceType.UpdatedAt = serviceType.CreatedAt
	if err := h.services.InsertServiceType(r.Context(), serviceType); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, serviceType)
}

func (h *ServiceTypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	serviceType, err := h.services.FindServiceTypeByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, serviceType)
}

func (h *ServiceTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}
	if r.URL.Query().Get("active") == "true" {
		filter["is_active"] = true
	}

	serviceTypes, total, err := h.services.FindServiceTypes(r.Context(), filter, parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: serviceTypes, Total: total})
}

func (h *ServiceTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := h.services.FindServiceTypeByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var in models.ServiceType
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	updated := *current
	if in.Name != "" {
		updated.Name = in.Name
	}
	if in.Description != "" {
		updated.Description = in.Description
	}
	if in.Category != "" {
		updated.Category = in.Category
	}
	updated.IsActive = in.IsActive
	updated.UpdatedAt = time.Now()

	if err := h.services.ReplaceServiceType(r.Context(), id, updated); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ServiceTypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.services.DeleteServiceType(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkImport loads a batch of catalog entries. Each record is independent.
func (h *ServiceTypeHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	var serviceTypes []models.ServiceType
	if err := decodeJSON(r, &serviceTypes); err != nil {
		writeError(w, err)
		return
	}

	result := importResult{}
	for i := range serviceTypes {
		st := serviceTypes[i]
		if st.Name == "" {
			result.Errors = append(result.Errors, "service type without a name skipped")
			continue
		}
		st.ID = primitive.NewObjectID()
		st.IsActive = true
		st.CreatedAt = time.Now()
		st.UpdatedAt = st.CreatedAt
		if err := h.services.InsertServiceType(r.Context(), st); err != nil {
			log.WithError(err).WithField("name", st.Name).Warn("service type import record failed")
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Created++
	}
	writeJSON(w, http.StatusOK, result)
}
