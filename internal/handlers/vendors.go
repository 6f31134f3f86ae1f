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

// VendorHandler serves the vendor reference data endpoints.
type VendorHandler struct {
	vendors db.VendorCollection
}

func NewVendorHandler(vendors db.VendorCollection) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var vendor models.Vendor
	if err := decodeJSON(r, &vendor); err != nil {
		writeError(w, err)
		return
	}
	if vendor.Name == "" {
		writeError(w, &models.ValidationError{Field: "name", Reason: "required"})
		return
	}

	vendor.ID = primitive.NewObjectID()
	vendor.IsActive = true
	vendor.CreatedAt = time.Now()
	vendor.UpdatedAt = vendor.CreatedAt
	if err := h.vendors.InsertVendor(r.Context(), vendor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vendor)
}

// BulkImport loads a batch of vendors. Each record is independent.
func (h *VendorHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	var vendors []models.Vendor
	if err := decodeJSON(r, &vendors); err != nil {
		writeError(w, err)
		return
	}

	result := importResult{}
	for i := range vendors {
		vendor := vendors[i]
		if vendor.Name == "" {
			result.Errors = append(result.Errors, "vendor without a name skipped")
			continue
		}
		vendor.ID = primitive.NewObjectID()
		vendor.IsActive = true
		vendor.CreatedAt = time.Now()
		vendor.UpdatedAt = vendor.CreatedAt
		if err := h.vendors.InsertVendor(r.Context(), vendor); err != nil {
			log.WithError(err).WithField("name", vendor.Name).Warn("vendor import record failed")
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Created++
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	vendor, err := h.vendors.FindVendorByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vendor)
}

func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if r.URL.Query().Get("active") == "true" {
		filter["is_active"] = true
	}

	vendors, total, err := h.vendors.FindVendors(r.Context(), filter, parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: vendors, Total: total})
}

func (h *VendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := h.vendors.FindVendorByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var in models.Vendor
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	updated := *current
	if in.Name != "" {
		updated.Name = in.Name
	}
	if in.ContactName != "" {
		updated.ContactName = in.ContactName
	}
	if in.Email != "" {
		updated.Email = in.Email
	}
	if in.Phone != "" {
		updated.Phone = in.Phone
	}
	if in.Address != "" {
		updated.Address = in.Address
	}
	updated.IsActive = in.IsActive
	updated.UpdatedAt = time.Now()

	if err := h.vendors.ReplaceVendor(r.Context(), id, updated); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *VendorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.vendors.DeleteVendor(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
