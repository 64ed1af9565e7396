package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
)

// SubmitInvoice issues the invoice for a completed obra and appends it to
// the hash chain. One invoice per obra, ever.
func SubmitInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid obra id")
		return
	}

	invoice, err := NewInvoiceService().Submit(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrProjectNotCompleted):
			respondError(w, http.StatusConflict, CodeState, "invoice requires a completed obra")
		case errors.Is(err, ErrInvoiceExists):
			respondError(w, http.StatusConflict, CodeConflict, "obra already has an invoice")
		case errors.Is(err, ErrEmptyBudget):
			respondError(w, http.StatusConflict, CodeState, "obra has no budget lines to invoice")
		default:
			respondDBError(w, err)
		}
		return
	}

	// Notify the client; the invoice stands whether or not the mail goes out.
	var obra models.Obra
	if err := config.DB.Preload("Client").First(&obra, "id = ?", id).Error; err == nil && obra.Client != nil && obra.Client.Email != "" {
		NewEmailService().SendAsync(
			obra.Client.Email,
			"Factura emitida: "+invoice.Folio,
			"<p>Se ha emitido la factura <strong>"+invoice.Folio+"</strong> por la obra "+obra.Title+".</p>",
		)
	}

	respondJSON(w, http.StatusCreated, invoice)
}

// GetObraInvoice returns the invoice of an obra, if issued.
func GetObraInvoice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var invoice models.Invoice
	if err := config.DB.First(&invoice, "obra_id = ?", id).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// GetAllInvoices lists invoices in chain order.
func GetAllInvoices(w http.ResponseWriter, r *http.Request) {
	var invoices []models.Invoice
	if err := config.DB.Order("sequence asc").Find(&invoices).Error; err != nil {
		respondDBError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

// VerifyInvoiceChain walks the full chain and reports the first broken
// link, if any.
func VerifyInvoiceChain(w http.ResponseWriter, r *http.Request) {
	brk, err := NewInvoiceService().VerifyChain(r.Context())
	if err != nil {
		log.WithError(err).Error("chain verification failed to run")
		respondDBError(w, err)
		return
	}
	if brk != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"intact": false,
			"break":  brk,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"intact": true})
}
