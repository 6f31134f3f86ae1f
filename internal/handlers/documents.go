package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/storage"
)

// maxUploadSize bounds multipart uploads at 20 MiB.
const maxUploadSize = 20 << 20

// DocumentHandler serves attachment upload, download and metadata endpoints.
type DocumentHandler struct {
	documents db.DocumentCollection
	blobs     storage.BlobStore
}

func NewDocumentHandler(documents db.DocumentCollection, blobs storage.BlobStore) *DocumentHandler {
	return &DocumentHandler{documents: documents, blobs: blobs}
}

// Upload accepts a multipart form with a "file" part and optional vehicle_id,
// invoice_id and expiration_date fields.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, &models.ValidationError{Field: "file", Reason: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, &models.ValidationError{Field: "file", Reason: "required"})
		return
	}
	defer file.Close()

	doc := models.Document{
		ID:          primitive.NewObjectID(),
		Name:        header.Filename,
		VehicleID:   r.FormValue("vehicle_id"),
		InvoiceID:   r.FormValue("invoice_id"),
		ContentType: header.Header.Get("Content-Type"),
		CreatedAt:   time.Now(),
	}
	doc.UpdatedAt = doc.CreatedAt

	if v := r.FormValue("expiration_date"); v != "" {
		expiration, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, &models.ValidationError{Field: "expiration_date", Reason: "expected YYYY-MM-DD"})
			return
		}
		doc.ExpirationDate = &expiration
	}

	key := fmt.Sprintf("%s-%s", doc.ID.Hex(), header.Filename)
	path, size, err := h.blobs.Save(key, file)
	if err != nil {
		writeError(w, err)
		return
	}
	doc.StoragePath = path
	doc.Size = size

	if err := h.documents.InsertDocument(r.Context(), doc); err != nil {
		if rmErr := h.blobs.Remove(path); rmErr != nil {
			log.WithError(rmErr).WithField("path", path).Warn("failed to clean up orphaned blob")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.FindDocumentByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Download streams the stored blob with the original content type.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.FindDocumentByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	blob, err := h.blobs.Open(doc.StoragePath)
	if err != nil {
		writeError(w, err)
		return
	}
	defer blob.Close()

	if doc.ContentType != "" {
		w.Header().Set("Content-Type", doc.ContentType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	if _, err := io.Copy(w, blob); err != nil {
		log.WithError(err).WithField("document_id", doc.ID.Hex()).Error("document download interrupted")
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if invoiceID := r.URL.Query().Get("invoice_id"); invoiceID != "" {
		filter["invoice_id"] = invoiceID
	}

	docs, total, err := h.documents.FindDocuments(r.Context(), filter, parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: docs, Total: total})
}

// Delete removes the metadata record first, then the blob; a stranded blob is
// logged rather than resurrecting the record.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.documents.FindDocumentByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.documents.DeleteDocument(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.blobs.Remove(doc.StoragePath); err != nil {
		log.WithError(err).WithField("path", doc.StoragePath).Warn("failed to remove blob")
	}
	w.WriteHeader(http.StatusNoContent)
}
