package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"odeplac.in/pro/config"
	"odeplac.in/pro/middleware"
	"odeplac.in/pro/models"
)

// GetAllUsers lists staff accounts. The service identity is hidden; it
// never acts through the UI.
func GetAllUsers(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := config.DB.
		Where("role <> ?", models.RoleService).
		Order("created_at asc").
		Find(&users).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// UpdateUser changes role or active flag. Admins cannot demote or
// deactivate themselves, so the last admin cannot lock everyone out.
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		respondDBError(w, err)
		return
	}
	if user.Role == models.RoleService {
		respondError(w, http.StatusBadRequest, CodeValidation, "the service account cannot be modified")
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}

	self := middleware.GetUserID(r) == user.ID.String()
	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Role != nil {
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleOperator {
			respondError(w, http.StatusBadRequest, CodeValidation, "role must be admin or operator")
			return
		}
		if self && *req.Role != user.Role {
			respondError(w, http.StatusBadRequest, CodeValidation, "you cannot change your own role")
			return
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		if self && !*req.IsActive {
			respondError(w, http.StatusBadRequest, CodeValidation, "you cannot deactivate your own account")
			return
		}
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
			respondDBError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, user)
}
