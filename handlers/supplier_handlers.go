package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
)

type supplierRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Ingestion   string `json:"ingestion"`
}

func (req supplierRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return "malformed email"
	}
	if req.Ingestion != "" && req.Ingestion != string(models.IngestionPDF) && req.Ingestion != string(models.IngestionAPI) {
		return "ingestion must be pdf or api"
	}
	return ""
}

func GetAllSuppliers(w http.ResponseWriter, r *http.Request) {
	var suppliers []models.Supplier
	q := config.DB.Where("deleted_at IS NULL").Order("name asc")
	if search := r.URL.Query().Get("q"); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	if err := q.Find(&suppliers).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

func GetSupplier(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var supplier models.Supplier
	if err := config.DB.Preload("Tariffs").First(&supplier, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

func CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, CodeValidation, msg)
		return
	}

	ingestion := models.IngestionMethod(req.Ingestion)
	if ingestion == "" {
		ingestion = models.IngestionPDF
	}
	supplier := models.Supplier{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Ingestion:   ingestion,
	}
	if err := config.DB.Create(&supplier).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, supplier)
}

func UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var supplier models.Supplier
	if err := config.DB.First(&supplier, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, CodeValidation, msg)
		return
	}

	supplier.Name = req.Name
	supplier.ContactName = req.ContactName
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	if req.Ingestion != "" {
		supplier.Ingestion = models.IngestionMethod(req.Ingestion)
	}
	if err := config.DB.Save(&supplier).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

func DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result := config.DB.Exec("UPDATE suppliers SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL", id)
	if result.Error != nil {
		respondDBError(w, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, CodeNotFound, "supplier not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
