package routes

import (
	"github.com/gorilla/mux"
	"odeplac.in/pro/handlers"
)

// registerObraRoutes covers the project pipeline: obras, budgets,
// timelines and invoicing.
func registerObraRoutes(api *mux.Router) {
	api.HandleFunc("/obras", handlers.GetAllObras).Methods("GET")
	api.HandleFunc("/obras", handlers.CreateObra).Methods("POST")
	api.HandleFunc("/obras/{id}", handlers.GetObra).Methods("GET")
	api.HandleFunc("/obras/{id}", handlers.UpdateObra).Methods("PUT")
	api.HandleFunc("/obras/{id}", handlers.DeleteObra).Methods("DELETE")
	api.HandleFunc("/obras/{id}/transition", handlers.TransitionObra).Methods("POST")
	api.HandleFunc("/obras/{id}/memo", handlers.GenerateObraMemo).Methods("POST")

	// Budget
	api.HandleFunc("/obras/{id}/budget", handlers.GetObraBudget).Methods("GET")
	api.HandleFunc("/obras/{id}/budget", handlers.SetObraBudget).Methods("POST")
	api.HandleFunc("/obras/{id}/budget/export", handlers.ExportObraBudgetToExcel).Methods("GET")

	// Timeline (append only)
	api.HandleFunc("/obras/{id}/timeline", handlers.GetObraTimeline).Methods("GET")
	api.HandleFunc("/obras/{id}/timeline", handlers.AddTimelineEntry).Methods("POST")

	// Invoicing
	api.HandleFunc("/obras/{id}/invoice", handlers.GetObraInvoice).Methods("GET")
	api.HandleFunc("/obras/{id}/invoice", handlers.SubmitInvoice).Methods("POST")
	api.HandleFunc("/invoices", handlers.GetAllInvoices).Methods("GET")
	api.HandleFunc("/invoices/verify-chain", handlers.VerifyInvoiceChain).Methods("GET")
}
