package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"odeplac.in/pro/config"
	"odeplac.in/pro/middleware"
	"odeplac.in/pro/models"
	"odeplac.in/pro/utils"
)

type obraRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ClientID     uuid.UUID `json:"client_id"`
	SiteLat      *float64  `json:"site_lat"`
	SiteLon      *float64  `json:"site_lon"`
	GeofenceJSON string    `json:"geofence_json"`
}

func (req *obraRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if req.ClientID == uuid.Nil {
		return fmt.Errorf("client_id is required")
	}
	if req.GeofenceJSON != "" {
		if err := utils.ValidateGeofence(req.GeofenceJSON); err != nil {
			return fmt.Errorf("invalid geofence: %w", err)
		}
	}
	return nil
}

// CreateObra registers a new project. Every obra starts as a lead.
func CreateObra(w http.ResponseWriter, r *http.Request) {
	var req obraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	var client models.Client
	if err := config.DB.First(&client, "id = ? AND deleted_at IS NULL", req.ClientID).Error; err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "client not found")
		return
	}

	obra := models.Obra{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		ClientID:     req.ClientID,
		State:        models.ObraLead,
		SiteLat:      req.SiteLat,
		SiteLon:      req.SiteLon,
		GeofenceJSON: req.GeofenceJSON,
		CreatedBy:    middleware.GetUserID(r),
	}
	if err := config.DB.Create(&obra).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, obra)
}

// GetAllObras lists projects, filterable by state and client.
func GetAllObras(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Preload("Client").Where("deleted_at IS NULL").Order("created_at desc")
	if state := r.URL.Query().Get("state"); state != "" {
		if !models.ObraState(state).Valid() {
			respondError(w, http.StatusBadRequest, CodeValidation, "unknown state")
			return
		}
		q = q.Where("state = ?", state)
	}
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}

	var obras []models.Obra
	if err := q.Find(&obras).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, obras)
}

func GetObra(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	err := config.DB.
		Preload("Client").
		Preload("BudgetItems").
		Preload("BudgetItems.Material").
		Preload("Invoice").
		First(&obra, "id = ? AND deleted_at IS NULL", id).Error
	if err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, obra)
}

// UpdateObra edits descriptive fields. State is never touched here; it
// only moves through TransitionObra or the portal approval.
func UpdateObra(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	if err := config.DB.First(&obra, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	var req struct {
		Title         *string  `json:"title"`
		Description   *string  `json:"description"`
		Progress      *float64 `json:"progress"`
		TechnicalMemo *string  `json:"technical_memo"`
		SiteLat       *float64 `json:"site_lat"`
		SiteLon       *float64 `json:"site_lon"`
		GeofenceJSON  *string  `json:"geofence_json"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			respondError(w, http.StatusBadRequest, CodeValidation, "title cannot be empty")
			return
		}
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Progress != nil {
		if *req.Progress < 0 || *req.Progress > 100 {
			respondError(w, http.StatusBadRequest, CodeValidation, "progress must be between 0 and 100")
			return
		}
		updates["progress"] = *req.Progress
	}
	if req.TechnicalMemo != nil {
		updates["technical_memo"] = *req.TechnicalMemo
	}
	if req.SiteLat != nil {
		updates["site_lat"] = *req.SiteLat
	}
	if req.SiteLon != nil {
		updates["site_lon"] = *req.SiteLon
	}
	if req.GeofenceJSON != nil {
		if *req.GeofenceJSON != "" {
			if err := utils.ValidateGeofence(*req.GeofenceJSON); err != nil {
				respondError(w, http.StatusBadRequest, CodeValidation, "invalid geofence: "+err.Error())
				return
			}
		}
		updates["geofence_json"] = *req.GeofenceJSON
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&obra).Updates(updates).Error; err != nil {
			respondDBError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, obra)
}

// TransitionObra moves a project along the pipeline. Illegal moves are
// rejected with the current state in the message so the caller can see
// what happened.
func TransitionObra(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	if err := config.DB.First(&obra, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	var req struct {
		State models.ObraState `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if !req.State.Valid() {
		respondError(w, http.StatusBadRequest, CodeValidation, "unknown state")
		return
	}
	if !obra.State.CanTransition(req.State) {
		respondError(w, http.StatusConflict, CodeState,
			fmt.Sprintf("cannot move from %s to %s", obra.State, req.State))
		return
	}

	updates := map[string]interface{}{"state": req.State}

	// Moving to in_progress without the portal is a manual approval;
	// record who did it and how.
	if req.State == models.ObraInProgress && !obra.Approved {
		info := models.ApprovalInfo{
			IP:        middleware.ClientIP(r),
			UserAgent: r.UserAgent(),
			Timestamp: time.Now().UTC(),
			Method:    "manual",
		}
		record, _ := json.Marshal(info)
		now := time.Now().UTC()
		updates["approved"] = true
		updates["approved_at"] = &now
		updates["approval_record"] = record
	}
	if req.State == models.ObraCompleted {
		updates["progress"] = 100.0
	}

	if err := config.DB.Model(&obra).Updates(updates).Error; err != nil {
		respondDBError(w, err)
		return
	}

	entry := models.TimelineEntry{
		ObraID: obra.ID,
		Type:   models.EntryMilestone,
		Text:   fmt.Sprintf("Estado actualizado a %s", req.State),
		Public: true,
		Author: middleware.GetUserID(r),
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		log.WithError(err).Warn("failed to record transition timeline entry")
	}

	respondJSON(w, http.StatusOK, obra)
}

// GenerateObraMemo asks the assistant to draft a technical memo from the
// obra description and budget. The draft replaces the stored memo; staff
// can edit it afterwards through UpdateObra.
func GenerateObraMemo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	err := config.DB.
		Preload("Client").
		Preload("BudgetItems").
		Preload("BudgetItems.Material").
		First(&obra, "id = ? AND deleted_at IS NULL", id).Error
	if err != nil {
		respondDBError(w, err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Redacta una memoria técnica breve y profesional en español para la siguiente obra de construcción.\n\n")
	fmt.Fprintf(&b, "Obra: %s\n", obra.Title)
	if obra.Description != "" {
		fmt.Fprintf(&b, "Descripción: %s\n", obra.Description)
	}
	if obra.Client != nil {
		fmt.Fprintf(&b, "Cliente: %s\n", obra.Client.Name)
	}
	if len(obra.BudgetItems) > 0 {
		b.WriteString("Partidas presupuestadas:\n")
		for _, item := range obra.BudgetItems {
			name := "material"
			unit := ""
			if item.Material != nil {
				name = item.Material.Name
				unit = item.Material.Unit
			}
			fmt.Fprintf(&b, "- %s: %.2f %s\n", name, item.Quantity, unit)
		}
	}
	b.WriteString("\nNo inventes datos que no aparezcan arriba. Devuelve solo el texto de la memoria.")

	memo, err := NewAIClient().GenerateText(r.Context(), b.String())
	if err != nil {
		log.WithError(err).Error("memo generation failed")
		respondError(w, http.StatusBadGateway, CodeExternalCall, "assistant is unavailable")
		return
	}

	if err := config.DB.Model(&obra).Update("technical_memo", memo).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"technical_memo": memo})
}

func DeleteObra(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	if err := config.DB.First(&obra, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}
	if err := config.DB.Exec("UPDATE obras SET deleted_at = NOW() WHERE id = ?", obra.ID).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
