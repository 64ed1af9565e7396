package routes

import (
	"github.com/gorilla/mux"
	"odeplac.in/pro/handlers"
)

// registerCatalogRoutes covers clients, suppliers, materials and the
// tariff ingestion pipeline.
func registerCatalogRoutes(api *mux.Router) {
	// Clients
	api.HandleFunc("/clients", handlers.GetAllClients).Methods("GET")
	api.HandleFunc("/clients", handlers.CreateClient).Methods("POST")
	api.HandleFunc("/clients/{id}", handlers.GetClient).Methods("GET")
	api.HandleFunc("/clients/{id}", handlers.UpdateClient).Methods("PUT")
	api.HandleFunc("/clients/{id}", handlers.DeleteClient).Methods("DELETE")
	api.HandleFunc("/clients/{id}/portal-token", handlers.RotatePortalToken).Methods("POST")

	// Suppliers
	api.HandleFunc("/suppliers", handlers.GetAllSuppliers).Methods("GET")
	api.HandleFunc("/suppliers", handlers.CreateSupplier).Methods("POST")
	api.HandleFunc("/suppliers/{id}", handlers.GetSupplier).Methods("GET")
	api.HandleFunc("/suppliers/{id}", handlers.UpdateSupplier).Methods("PUT")
	api.HandleFunc("/suppliers/{id}", handlers.DeleteSupplier).Methods("DELETE")

	// Material catalog
	api.HandleFunc("/materials", handlers.GetAllMaterials).Methods("GET")
	api.HandleFunc("/materials", handlers.CreateMaterial).Methods("POST")
	api.HandleFunc("/materials/export", handlers.ExportMaterialsToExcel).Methods("GET")
	api.HandleFunc("/materials/{id}", handlers.GetMaterial).Methods("GET")
	api.HandleFunc("/materials/{id}", handlers.UpdateMaterial).Methods("PUT")
	api.HandleFunc("/materials/{id}", handlers.DeleteMaterial).Methods("DELETE")

	// Tariff ingestion: upload -> extract -> preview -> import
	api.HandleFunc("/tariffs", handlers.GetAllTariffs).Methods("GET")
	api.HandleFunc("/tariffs/upload", handlers.UploadTariff).Methods("POST")
	api.HandleFunc("/tariffs/{id}/extract", handlers.ExtractTariff).Methods("POST")
	api.HandleFunc("/tariffs/{id}/preview", handlers.PreviewTariff).Methods("POST")
	api.HandleFunc("/tariffs/{id}/import", handlers.ImportTariff).Methods("POST")
	api.HandleFunc("/tariffs/{id}", handlers.DeleteTariff).Methods("DELETE")
}
