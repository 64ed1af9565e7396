package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
)

type clientRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	RFC         string `json:"rfc"`
}

func (req clientRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return "malformed email"
	}
	return ""
}

// GetAllClients godoc
// @Summary List clients
// @Tags clients
// @Produce json
// @Success 200 {array} models.Client
// @Router /clients [get]
func GetAllClients(w http.ResponseWriter, r *http.Request) {
	var clients []models.Client
	q := config.DB.Where("deleted_at IS NULL").Order("name asc")
	if search := r.URL.Query().Get("q"); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	if err := q.Find(&clients).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func GetClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var client models.Client
	if err := config.DB.Preload("Obras").First(&client, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, CodeValidation, msg)
		return
	}

	client := models.Client{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		RFC:         req.RFC,
	}
	if err := config.DB.Create(&client).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var client models.Client
	if err := config.DB.First(&client, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, CodeValidation, msg)
		return
	}

	client.Name = req.Name
	client.ContactName = req.ContactName
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address
	client.RFC = req.RFC
	if err := config.DB.Save(&client).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result := config.DB.Exec("UPDATE clients SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL", id)
	if result.Error != nil {
		respondDBError(w, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, CodeNotFound, "client not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RotatePortalToken replaces the client's portal credential. The previous
// token stops working immediately; the new one is returned once, to be
// shared with the client out of band.
func RotatePortalToken(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var client models.Client
	if err := config.DB.First(&client, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		respondDBError(w, err)
		return
	}

	client.PortalToken = models.NewPortalToken()
	if err := config.DB.Save(&client).Error; err != nil {
		respondDBError(w, err)
		return
	}

	log.Infof("portal token rotated for client %s", client.ID)
	respondJSON(w, http.StatusOK, map[string]string{"portal_token": client.PortalToken})
}
