package routes

import (
	"github.com/gorilla/mux"
	"odeplac.in/pro/handlers"
)

// registerChatRoutes covers the staff AI assistant.
func registerChatRoutes(api *mux.Router) {
	api.HandleFunc("/chat/conversations", handlers.GetAllConversations).Methods("GET")
	api.HandleFunc("/chat/conversations", handlers.SendChatMessage).Methods("POST")
	api.HandleFunc("/chat/conversations/{id}", handlers.GetConversation).Methods("GET")
	api.HandleFunc("/chat/conversations/{id}", handlers.DeleteConversation).Methods("DELETE")
	api.HandleFunc("/chat/conversations/{id}/messages", handlers.SendChatMessage).Methods("POST")
}
