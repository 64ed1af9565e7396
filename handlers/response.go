package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Stable error codes returned to the frontend. Raw backend messages are
// logged, never sent to the user.
const (
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeExtraction   = "extraction_error"
	CodeImport       = "import_error"
	CodeState        = "invalid_state"
	CodeInternal     = "internal_error"
	CodeExternalCall = "external_service_error"
)

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: code, Code: code, Message: message})
}

// respondDBError logs the raw database error and maps it to a stable code.
func respondDBError(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, CodeNotFound, "record not found")
		return
	}
	log.WithError(err).Error("database error")
	respondError(w, http.StatusInternalServerError, CodeInternal, "a storage error occurred")
}
