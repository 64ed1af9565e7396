package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm/clause"
	"odeplac.in/pro/config"
	"odeplac.in/pro/middleware"
	"odeplac.in/pro/models"
)

// GetSettings returns the company profile as a flat key/value map.
func GetSettings(w http.ResponseWriter, r *http.Request) {
	var settings []models.Setting
	if err := config.DB.Find(&settings).Error; err != nil {
		respondDBError(w, err)
		return
	}
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	respondJSON(w, http.StatusOK, out)
}

// UpdateSettings upserts the given keys. Values live in the database, so
// a change is visible to every instance on the next read without a
// restart.
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if len(req) == 0 {
		respondError(w, http.StatusBadRequest, CodeValidation, "no settings to update")
		return
	}

	rows := make([]models.Setting, 0, len(req))
	for key, value := range req {
		key = strings.TrimSpace(key)
		if key == "" {
			respondError(w, http.StatusBadRequest, CodeValidation, "setting keys cannot be empty")
			return
		}
		rows = append(rows, models.Setting{Key: key, Value: value, UpdatedBy: middleware.GetUserID(r)})
	}

	err := config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		respondDBError(w, err)
		return
	}

	GetSettings(w, r)
}
