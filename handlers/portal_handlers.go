package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"odeplac.in/pro/config"
	"odeplac.in/pro/middleware"
	"odeplac.in/pro/models"
)

type portalObra struct {
	ID         uuid.UUID              `json:"id"`
	Title      string                 `json:"title"`
	State      models.ObraState       `json:"state"`
	Progress   float64                `json:"progress"`
	QuoteTotal float64                `json:"quote_total"`
	Approved   bool                   `json:"approved"`
	Timeline   []models.TimelineEntry `json:"timeline"`
}

// GetPortalView is the read surface of the client portal: the client's
// obras with quote totals and the public slice of each timeline. Private
// entries, budgets and internal notes never cross this boundary.
func GetPortalView(w http.ResponseWriter, r *http.Request) {
	client := middleware.GetPortalClient(r)
	if client == nil {
		http.NotFound(w, r)
		return
	}

	var obras []models.Obra
	if err := config.DB.
		Where("client_id = ? AND deleted_at IS NULL", client.ID).
		Order("created_at desc").
		Find(&obras).Error; err != nil {
		respondDBError(w, err)
		return
	}

	view := make([]portalObra, 0, len(obras))
	for _, o := range obras {
		var timeline []models.TimelineEntry
		config.DB.
			Where("obra_id = ? AND public = true", o.ID).
			Order("created_at desc").
			Find(&timeline)
		view = append(view, portalObra{
			ID:         o.ID,
			Title:      o.Title,
			State:      o.State,
			Progress:   o.Progress,
			QuoteTotal: o.QuoteTotal,
			Approved:   o.Approved,
			Timeline:   timeline,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client": map[string]string{"name": client.Name},
		"obras":  view,
	})
}

// ApproveQuote records the client's acceptance of a quote through the
// portal. The approval snapshot (IP, user agent, timestamp) goes on the
// obra row and the obra moves to in_progress.
func ApproveQuote(w http.ResponseWriter, r *http.Request) {
	client := middleware.GetPortalClient(r)
	if client == nil {
		http.NotFound(w, r)
		return
	}

	obraID := mux.Vars(r)["obra_id"]
	var obra models.Obra
	if err := config.DB.
		First(&obra, "id = ? AND client_id = ? AND deleted_at IS NULL", obraID, client.ID).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	if !obra.State.CanTransition(models.ObraInProgress) {
		respondError(w, http.StatusConflict, CodeState, "obra is not awaiting approval")
		return
	}

	info := models.ApprovalInfo{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
		Timestamp: time.Now().UTC(),
		Method:    "portal",
	}
	record, _ := json.Marshal(info)
	now := time.Now().UTC()

	if err := config.DB.Model(&obra).Updates(map[string]interface{}{
		"state":           models.ObraInProgress,
		"approved":        true,
		"approved_at":     &now,
		"approval_record": record,
	}).Error; err != nil {
		respondDBError(w, err)
		return
	}

	// Rows written on behalf of the system carry the service identity.
	entry := models.TimelineEntry{
		ObraID: obra.ID,
		Type:   models.EntryMilestone,
		Text:   "Presupuesto aprobado por el cliente a través del portal",
		Public: true,
		Author: config.App.ServiceUserEmail,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		log.WithError(err).Warn("failed to record approval timeline entry")
	}

	if client.Email != "" {
		NewEmailService().SendAsync(
			client.Email,
			"Presupuesto aprobado: "+obra.Title,
			"<p>Hemos registrado tu aprobación del presupuesto de <strong>"+obra.Title+"</strong>. La obra pasa a ejecución.</p>",
		)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "approved",
		"obra_id":     obra.ID,
		"state":       models.ObraInProgress,
		"approved_at": now,
	})
}
