package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"odeplac.in/pro/config"
	_ "odeplac.in/pro/docs"
	"odeplac.in/pro/handlers"
	"odeplac.in/pro/middleware"
	"odeplac.in/pro/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public routes (no authentication)
	// =====================================================
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/healthz", handleHealth).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(config.App.UploadDir))),
	)

	// =====================================================
	// Client portal (bearer token in the URL, no JWT)
	// =====================================================
	portal := r.PathPrefix("/portal/{token}").Subrouter()
	portal.Use(middleware.RequestLogger)
	portal.Use(middleware.PortalAuth)
	portal.HandleFunc("", handlers.GetPortalView).Methods("GET")
	portal.HandleFunc("/obras/{obra_id}/approve", handlers.ApproveQuote).Methods("POST")

	// =====================================================
	// Staff API (JWT required)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestLogger)
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/me", handlers.GetCurrentUser).Methods("GET")
	api.HandleFunc("/settings", handlers.GetSettings).Methods("GET")

	registerCatalogRoutes(api)
	registerObraRoutes(api)
	registerChatRoutes(api)

	// =====================================================
	// Admin routes
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(func(next http.Handler) http.Handler {
		return middleware.RequireRole([]string{models.RoleAdmin}, next)
	})
	registerAdminRoutes(admin)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// registerAdminRoutes covers account management and the company profile.
func registerAdminRoutes(admin *mux.Router) {
	admin.HandleFunc("/register", handlers.Register).Methods("POST")
	admin.HandleFunc("/users", handlers.GetAllUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", handlers.UpdateUser).Methods("PUT")

	admin.HandleFunc("/settings", handlers.UpdateSettings).Methods("PUT")
}
