package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
)

type budgetLineRequest struct {
	MaterialID   uuid.UUID `json:"material_id"`
	Quantity     float64   `json:"quantity"`
	AppliedPrice *float64  `json:"applied_price"` // nil means use catalog sale price
	MarginPct    float64   `json:"margin_pct"`
}

type budgetRequest struct {
	Lines []budgetLineRequest `json:"lines"`
}

// SetObraBudget replaces the budget of an obra with the given lines and
// recomputes the quote total. Only allowed while the obra is a lead or a
// quote; once the client approves, the numbers are frozen.
func SetObraBudget(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	if err := config.DB.First(&obra, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}
	if obra.State != models.ObraLead && obra.State != models.ObraQuote {
		respondError(w, http.StatusConflict, CodeState,
			fmt.Sprintf("budget cannot change while the obra is %s", obra.State))
		return
	}

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if len(req.Lines) == 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "at least one line is required")
		return
	}

	items := make([]models.BudgetItem, 0, len(req.Lines))
	var total float64
	for i, line := range req.Lines {
		if line.MaterialID == uuid.Nil {
			respondError(w, http.StatusBadRequest, CodeValidation,
				fmt.Sprintf("line %d: material_id is required", i+1))
			return
		}
		if line.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, CodeValidation,
				fmt.Sprintf("line %d: quantity must be positive", i+1))
			return
		}
		if line.MarginPct < 0 {
			respondError(w, http.StatusBadRequest, CodeValidation,
				fmt.Sprintf("line %d: margin_pct cannot be negative", i+1))
			return
		}

		var material models.Material
		if err := config.DB.First(&material, "id = ? AND deleted_at IS NULL", line.MaterialID).Error; err != nil {
			respondError(w, http.StatusNotFound, CodeNotFound,
				fmt.Sprintf("line %d: material not found", i+1))
			return
		}

		price := material.SalePrice
		if line.AppliedPrice != nil {
			if *line.AppliedPrice < 0 {
				respondError(w, http.StatusBadRequest, CodeValidation,
					fmt.Sprintf("line %d: applied_price cannot be negative", i+1))
				return
			}
			price = *line.AppliedPrice
		}

		subtotal := line.Quantity * price * (1 + line.MarginPct/100)
		items = append(items, models.BudgetItem{
			ObraID:       obra.ID,
			MaterialID:   material.ID,
			Quantity:     line.Quantity,
			AppliedPrice: price,
			MarginPct:    line.MarginPct,
			Subtotal:     subtotal,
		})
		total += subtotal
	}

	newState := obra.State
	if newState == models.ObraLead {
		newState = models.ObraQuote
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("obra_id = ?", obra.ID).Delete(&models.BudgetItem{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Model(&obra).Updates(map[string]interface{}{
			"quote_total": total,
			"state":       newState,
		}).Error
	})
	if err != nil {
		respondDBError(w, err)
		return
	}

	// Tell the client a quote is ready the first time the obra reaches it.
	if obra.State == models.ObraLead {
		var client models.Client
		if err := config.DB.First(&client, "id = ?", obra.ClientID).Error; err == nil && client.Email != "" {
			NewEmailService().SendAsync(
				client.Email,
				"Presupuesto disponible: "+obra.Title,
				fmt.Sprintf("<p>Tu presupuesto por <strong>$%.2f</strong> está listo. Puedes revisarlo y aprobarlo en tu portal: /portal/%s</p>", total, client.PortalToken),
			)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"obra_id":     obra.ID,
		"state":       newState,
		"quote_total": total,
		"items":       items,
	})
}

// GetObraBudget returns the current budget lines with their materials.
func GetObraBudget(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	if err := config.DB.First(&obra, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	var items []models.BudgetItem
	if err := config.DB.Preload("Material").
		Where("obra_id = ?", obra.ID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"obra_id":     obra.ID,
		"quote_total": obra.QuoteTotal,
		"items":       items,
	})
}
