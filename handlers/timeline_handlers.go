package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"odeplac.in/pro/config"
	"odeplac.in/pro/middleware"
	"odeplac.in/pro/models"
	"odeplac.in/pro/utils"
)

type timelineRequest struct {
	Type   string   `json:"type"`
	Text   string   `json:"text"`
	Public bool     `json:"public"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
}

// AddTimelineEntry appends a note to an obra. Entries are never edited
// or removed afterwards. When the entry carries a position and the obra
// has a geofence, a position outside the fence is rejected.
func AddTimelineEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	if err := config.DB.First(&obra, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	var req timelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if req.Type == "" {
		req.Type = models.EntryComment
	}
	if !models.ValidEntryType(req.Type) {
		respondError(w, http.StatusBadRequest, CodeValidation, "unknown entry type")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "text is required")
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		respondError(w, http.StatusBadRequest, CodeValidation, "lat and lon must be sent together")
		return
	}

	if req.Lat != nil && obra.GeofenceJSON != "" {
		fence, err := utils.ParseGeofence(obra.GeofenceJSON)
		if err != nil {
			log.WithError(err).Warnf("obra %s has an unparseable geofence", obra.ID)
		} else if !fence.Contains(utils.Coordinate{Lat: *req.Lat, Lng: *req.Lon}) {
			respondError(w, http.StatusBadRequest, CodeValidation, "position is outside the site geofence")
			return
		}
	}

	entry := models.TimelineEntry{
		ObraID: obra.ID,
		Type:   req.Type,
		Text:   strings.TrimSpace(req.Text),
		Public: req.Public,
		Lat:    req.Lat,
		Lon:    req.Lon,
		Author: middleware.GetUserID(r),
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// GetObraTimeline lists the entries of an obra, newest first. Staff see
// everything; ?public=true narrows to portal-visible entries.
func GetObraTimeline(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var obra models.Obra
	if err := config.DB.First(&obra, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	q := config.DB.Where("obra_id = ?", obra.ID).Order("created_at desc")
	if r.URL.Query().Get("public") == "true" {
		q = q.Where("public = true")
	}
	if t := r.URL.Query().Get("type"); t != "" {
		q = q.Where("type = ?", t)
	}

	var entries []models.TimelineEntry
	if err := q.Find(&entries).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
