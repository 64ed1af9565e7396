package handlers

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"odeplac.in/pro/models"
	"odeplac.in/pro/pkg/ledger"
)

func TestCheckSubmittable(t *testing.T) {
	tests := []struct {
		name       string
		state      models.ObraState
		hasInvoice bool
		wantErr    error
	}{
		{"completed without invoice", models.ObraCompleted, false, nil},
		{"lead rejected", models.ObraLead, false, ErrProjectNotCompleted},
		{"quote rejected", models.ObraQuote, false, ErrProjectNotCompleted},
		{"in progress rejected", models.ObraInProgress, false, ErrProjectNotCompleted},
		{"cancelled rejected", models.ObraCancelled, false, ErrProjectNotCompleted},
		{"duplicate invoice rejected", models.ObraCompleted, true, ErrInvoiceExists},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckSubmittable(tc.state, tc.hasInvoice)
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSubmitErrMapsDuplicateKey(t *testing.T) {
	// A second submission racing past the precondition check dies on the
	// obra_id unique index; that must surface as the duplicate error.
	raceErr := errors.New(`ERROR: duplicate key value violates unique constraint "idx_invoices_obra_id" (SQLSTATE 23505)`)
	if !errors.Is(submitErr(raceErr), ErrInvoiceExists) {
		t.Errorf("duplicate key error mapped to %v, want ErrInvoiceExists", submitErr(raceErr))
	}

	other := errors.New("connection refused")
	if !errors.Is(submitErr(other), other) {
		t.Errorf("unrelated error must pass through, got %v", submitErr(other))
	}
	if submitErr(nil) != nil {
		t.Error("nil error must stay nil")
	}
}

// buildChainedInvoice builds a consistent invoice for chain tests.
func buildChainedInvoice(t *testing.T, seq int64, prevHash string) models.Invoice {
	t.Helper()

	snapshot := invoiceSnapshot{
		ObraID:   uuid.New(),
		ClientID: uuid.New(),
		Lines:    []invoiceSnapshotLine{{ID: uuid.New(), Quantity: 2, Price: 150}},
		Total:    300,
		PrevHash: prevHash,
		IssuedAt: time.Now().Unix(),
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	hash := ledger.HashPayload(snapshot.ledgerPayload())
	return models.Invoice{
		ObraID:   snapshot.ObraID,
		Folio:    ledger.Folio(2026, seq),
		Sequence: seq,
		Hash:     hash,
		PrevHash: prevHash,
		Payload:  datatypes.JSON(raw),
		Total:    snapshot.Total,
	}
}

func TestVerifyLinksIntact(t *testing.T) {
	a := buildChainedInvoice(t, 1, "")
	b := buildChainedInvoice(t, 2, a.Hash)
	c := buildChainedInvoice(t, 3, b.Hash)

	if br := VerifyLinks([]models.Invoice{a, b, c}); br != nil {
		t.Errorf("intact chain reported broken: %+v", br)
	}
	if br := VerifyLinks(nil); br != nil {
		t.Errorf("empty chain reported broken: %+v", br)
	}
}

func TestVerifyLinksBrokenLink(t *testing.T) {
	a := buildChainedInvoice(t, 1, "")
	b := buildChainedInvoice(t, 2, "0000000000000000000000000000000000000000000000000000000000000000")

	br := VerifyLinks([]models.Invoice{a, b})
	if br == nil {
		t.Fatal("broken link not detected")
	}
	if br.Folio != b.Folio {
		t.Errorf("break reported at %s, want %s", br.Folio, b.Folio)
	}
}

func TestVerifyLinksTamperedPayload(t *testing.T) {
	a := buildChainedInvoice(t, 1, "")

	// Raise the total in the stored snapshot without recomputing the hash.
	var snapshot invoiceSnapshot
	if err := json.Unmarshal(a.Payload, &snapshot); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	snapshot.Total = 999999
	raw, _ := json.Marshal(snapshot)
	a.Payload = datatypes.JSON(raw)

	br := VerifyLinks([]models.Invoice{a})
	if br == nil {
		t.Fatal("tampered payload not detected")
	}
	if br.Folio != a.Folio {
		t.Errorf("break reported at %s, want %s", br.Folio, a.Folio)
	}
}
