package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"odeplac.in/pro/config"
	"odeplac.in/pro/middleware"
	"odeplac.in/pro/models"
)

// chatHistoryLimit bounds how much of a thread goes back into the prompt.
const chatHistoryLimit = 20

func GetAllConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	var conversations []models.Conversation
	if err := config.DB.
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&conversations).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conversations)
}

func GetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	var conv models.Conversation
	if err := config.DB.
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&conv, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conv)
}

func DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	var conv models.Conversation
	if err := config.DB.First(&conv, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		respondDBError(w, err)
		return
	}
	if err := config.DB.Where("conversation_id = ?", conv.ID).Delete(&models.ChatMessage{}).Error; err != nil {
		respondDBError(w, err)
		return
	}
	if err := config.DB.Delete(&conv).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type chatRequest struct {
	Message string `json:"message"`
}

// SendChatMessage handles one assistant turn. Mounted twice: without an
// {id} path segment it starts a new thread titled from the first message,
// with one it continues that thread.
func SendChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "message is required")
		return
	}

	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		respondError(w, http.StatusUnauthorized, CodeValidation, "invalid token subject")
		return
	}

	var conv models.Conversation
	if convID := mux.Vars(r)["id"]; convID != "" {
		if err := config.DB.First(&conv, "id = ? AND user_id = ?", convID, userID).Error; err != nil {
			respondError(w, http.StatusNotFound, CodeNotFound, "conversation not found")
			return
		}
	} else {
		conv = models.Conversation{UserID: userID, Title: conversationTitle(req.Message)}
		if err := config.DB.Create(&conv).Error; err != nil {
			respondDBError(w, err)
			return
		}
	}

	var history []models.ChatMessage
	config.DB.
		Where("conversation_id = ?", conv.ID).
		Order("created_at desc").
		Limit(chatHistoryLimit).
		Find(&history)
	// Oldest first for the prompt.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	userMsg := models.ChatMessage{
		ConversationID: conv.ID,
		Role:           models.ChatRoleUser,
		Content:        strings.TrimSpace(req.Message),
	}
	if err := config.DB.Create(&userMsg).Error; err != nil {
		respondDBError(w, err)
		return
	}

	prose, draft, err := NewChatService().Reply(r.Context(), history, userMsg.Content)
	if err != nil {
		log.WithError(err).Error("assistant reply failed")
		respondError(w, http.StatusBadGateway, CodeExternalCall, "assistant is unavailable")
		return
	}

	assistantMsg := models.ChatMessage{
		ConversationID: conv.ID,
		Role:           models.ChatRoleAssistant,
		Content:        prose,
	}
	if draft != nil {
		if structured, err := json.Marshal(draft); err == nil {
			assistantMsg.Structured = structured
		}
	}
	if err := config.DB.Create(&assistantMsg).Error; err != nil {
		respondDBError(w, err)
		return
	}
	config.DB.Model(&conv).Update("updated_at", gorm.Expr("NOW()"))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": conv.ID,
		"message":         assistantMsg,
	})
}

// conversationTitle derives a short thread title from the opening message.
func conversationTitle(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) > 60 {
		runes = runes[:60]
	}
	return string(runes)
}
