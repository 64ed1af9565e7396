package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"odeplac.in/pro/config"
	"odeplac.in/pro/middleware"
	"odeplac.in/pro/models"
)

// UploadTariff receives a supplier price list PDF. Duplicate uploads are
// detected by content hash and return the existing document.
func UploadTariff(w http.ResponseWriter, r *http.Request) {
	// Max 50MB, price lists can be long.
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "bad multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "missing file field")
		return
	}
	defer file.Close()

	category := r.FormValue("category")
	if category == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "category is required")
		return
	}

	var supplierID *uuid.UUID
	if s := r.FormValue("supplier_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, CodeValidation, "supplier_id is not a valid uuid")
			return
		}
		var supplier models.Supplier
		if err := config.DB.First(&supplier, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
			respondError(w, http.StatusNotFound, CodeNotFound, "supplier not found")
			return
		}
		if supplier.Ingestion != models.IngestionPDF {
			respondError(w, http.StatusBadRequest, CodeValidation, "supplier is configured for API ingestion, which is not available")
			return
		}
		supplierID = &id
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to read upload")
		return
	}

	sum := sha256.Sum256(data)
	fileHash := hex.EncodeToString(sum[:])

	var existing models.TariffDocument
	if err := config.DB.Where("file_hash = ? AND deleted_at IS NULL", fileHash).First(&existing).Error; err == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message":  "file already exists",
			"document": existing,
		})
		return
	}

	store, err := NewDocumentStore(r.Context())
	if err != nil {
		log.WithError(err).Error("document store unavailable")
		respondError(w, http.StatusInternalServerError, CodeExternalCall, "document store unavailable")
		return
	}
	path, err := store.Write(r.Context(), objectName(header.Filename), data)
	if err != nil {
		log.WithError(err).Error("failed to store tariff document")
		respondError(w, http.StatusInternalServerError, CodeExternalCall, "failed to store document")
		return
	}

	doc := models.TariffDocument{
		SupplierID:  supplierID,
		Category:    category,
		FileName:    header.Filename,
		StoragePath: path,
		FileHash:    fileHash,
		FileSize:    int64(len(data)),
		Status:      models.TariffStatusUploaded,
		UploadedBy:  middleware.GetUserID(r),
	}
	if err := config.DB.Create(&doc).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

func GetAllTariffs(w http.ResponseWriter, r *http.Request) {
	var docs []models.TariffDocument
	q := config.DB.Preload("Supplier").Where("deleted_at IS NULL").Order("created_at desc")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&docs).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// ExtractTariff runs the document through the generative extraction
// service and returns the candidate items for the operator to review. A
// single failed call surfaces immediately; there is no retry.
func ExtractTariff(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var doc models.TariffDocument
	if err := config.DB.First(&doc, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	store, err := NewDocumentStore(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeExternalCall, "document store unavailable")
		return
	}
	data, err := store.Read(r.Context(), doc.StoragePath)
	if err != nil {
		log.WithError(err).Errorf("failed to read tariff document %s", doc.ID)
		respondError(w, http.StatusInternalServerError, CodeExternalCall, "failed to read document")
		return
	}

	items, err := NewExtractionService().Extract(r.Context(), data)
	if err != nil {
		if dbErr := config.DB.Model(&doc).Updates(map[string]interface{}{
			"status":         models.TariffStatusFailed,
			"failure_reason": err.Error(),
		}).Error; dbErr != nil {
			log.WithError(dbErr).Errorf("failed to mark tariff %s as failed", doc.ID)
		}
		log.WithError(err).Warnf("extraction failed for tariff %s", doc.ID)
		respondError(w, http.StatusBadGateway, CodeExtraction, "could not extract items from the document")
		return
	}

	if err := config.DB.Model(&doc).Updates(map[string]interface{}{
		"status":     models.TariffStatusExtracted,
		"item_count": len(items),
	}).Error; err != nil {
		log.WithError(err).Errorf("failed to mark tariff %s as extracted", doc.ID)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": doc.ID,
		"items":       items,
	})
}

type previewRequest struct {
	Items     []ExtractedItem `json:"items"`
	MarkupPct float64         `json:"markup_pct"`
}

// PreviewTariff computes the cost vs. suggested-price comparison for the
// confirmation screen. Pure: nothing is written.
func PreviewTariff(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var doc models.TariffDocument
	if err := config.DB.First(&doc, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}

	existing := map[string]models.Material{}
	if doc.SupplierID != nil {
		var current []models.Material
		if err := config.DB.Where("supplier_id = ? AND deleted_at IS NULL", doc.SupplierID).
			Find(&current).Error; err == nil {
			for _, m := range current {
				existing[m.Name] = m
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"markup_pct": req.MarkupPct,
		"rows":       BuildComparison(req.Items, req.MarkupPct, existing),
	})
}

type importRequest struct {
	Items     []ExtractedItem `json:"items"`
	MarkupPct float64         `json:"markup_pct"`
}

// ImportTariff persists the confirmed items into the catalog, one
// transaction, upsert on (name, supplier).
func ImportTariff(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var doc models.TariffDocument
	if err := config.DB.First(&doc, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "no items to import")
		return
	}

	count, err := NewCatalogImporter().Import(r.Context(), req.Items, doc.Category, doc.SupplierID, req.MarkupPct, doc.ID)
	if err != nil {
		if errors.Is(err, ErrImport) {
			log.WithError(err).Error("catalog import failed")
			respondError(w, http.StatusInternalServerError, CodeImport, "import failed, no rows were written")
			return
		}
		respondDBError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "imported",
		"imported": strconv.Itoa(count),
	})
}

// DeleteTariff removes the row and the stored file.
func DeleteTariff(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var doc models.TariffDocument
	if err := config.DB.First(&doc, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	if store, err := NewDocumentStore(r.Context()); err == nil {
		store.Delete(r.Context(), []string{doc.StoragePath})
	}

	if err := config.DB.Exec("UPDATE tariff_documents SET deleted_at = NOW() WHERE id = ?", doc.ID).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
