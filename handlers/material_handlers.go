package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
)

type materialRequest struct {
	Name       string   `json:"name"`
	Unit       string   `json:"unit"`
	CostPrice  float64  `json:"cost_price"`
	SalePrice  float64  `json:"sale_price"`
	Category   string   `json:"category"`
	SupplierID *string  `json:"supplier_id"`
	Tags       []string `json:"tags"`
}

func (req materialRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if !models.ValidUnit(req.Unit) {
		return "unit must be one of pieza, m2, ml, kg, saco"
	}
	if req.CostPrice < 0 {
		return "cost price must be >= 0"
	}
	if req.SalePrice < 0 {
		return "sale price must be >= 0"
	}
	return ""
}

func (req materialRequest) supplierUUID() (*uuid.UUID, string) {
	if req.SupplierID == nil || *req.SupplierID == "" {
		return nil, ""
	}
	id, err := uuid.Parse(*req.SupplierID)
	if err != nil {
		return nil, "supplier_id is not a valid uuid"
	}
	return &id, ""
}

// GetAllMaterials lists the catalog with optional search and filters.
func GetAllMaterials(w http.ResponseWriter, r *http.Request) {
	var materials []models.Material
	q := config.DB.Preload("Supplier").Where("materials.deleted_at IS NULL").Order("name asc")

	if search := r.URL.Query().Get("q"); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	if category := r.URL.Query().Get("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if supplier := r.URL.Query().Get("supplier_id"); supplier != "" {
		q = q.Where("supplier_id = ?", supplier)
	}

	if err := q.Find(&materials).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, materials)
}

func GetMaterial(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var material models.Material
	if err := config.DB.Preload("Supplier").First(&material, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, material)
}

func CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, CodeValidation, msg)
		return
	}
	supplierID, msg := req.supplierUUID()
	if msg != "" {
		respondError(w, http.StatusBadRequest, CodeValidation, msg)
		return
	}

	material := models.Material{
		Name:       req.Name,
		Unit:       req.Unit,
		CostPrice:  req.CostPrice,
		SalePrice:  req.SalePrice,
		Category:   req.Category,
		SupplierID: supplierID,
		Tags:       pq.StringArray(req.Tags),
	}
	if err := config.DB.Create(&material).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, CodeConflict, "a material with this name already exists for this supplier")
			return
		}
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, material)
}

func UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var material models.Material
	if err := config.DB.First(&material, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	var req materialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, CodeValidation, msg)
		return
	}
	supplierID, msg := req.supplierUUID()
	if msg != "" {
		respondError(w, http.StatusBadRequest, CodeValidation, msg)
		return
	}

	material.Name = req.Name
	material.Unit = req.Unit
	material.CostPrice = req.CostPrice
	material.SalePrice = req.SalePrice
	material.Category = req.Category
	material.SupplierID = supplierID
	material.Tags = pq.StringArray(req.Tags)
	if err := config.DB.Save(&material).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, material)
}

func DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result := config.DB.Exec("UPDATE materials SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL", id)
	if result.Error != nil {
		respondDBError(w, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, CodeNotFound, "material not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
