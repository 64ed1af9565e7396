package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
	"odeplac.in/pro/pkg/ledger"
)

var (
	ErrProjectNotCompleted = errors.New("obra is not completed")
	ErrInvoiceExists       = errors.New("obra already has an invoice")
	ErrEmptyBudget         = errors.New("obra has no budget lines")
)

// InvoiceService submits invoices onto the global hash chain. The chain
// tip lives in the chain_counters singleton row; Submit locks that row and
// inserts the invoice in the same transaction, so two concurrent
// submissions can never reference the same previous hash.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService() *InvoiceService {
	return &InvoiceService{db: config.DB}
}

// CheckSubmittable enforces the submission preconditions. Pure: no I/O.
func CheckSubmittable(state models.ObraState, hasInvoice bool) error {
	if state != models.ObraCompleted {
		return fmt.Errorf("%w: state is %s", ErrProjectNotCompleted, state)
	}
	if hasInvoice {
		return ErrInvoiceExists
	}
	return nil
}

// invoiceSnapshot is the JSON stored on the invoice row. It carries every
// field the canonical payload covers, so the chain can be re-verified from
// the snapshots alone.
type invoiceSnapshot struct {
	ObraID   uuid.UUID             `json:"obra_id"`
	ClientID uuid.UUID             `json:"client_id"`
	Lines    []invoiceSnapshotLine `json:"lines"`
	Total    float64               `json:"total"`
	PrevHash string                `json:"prev_hash"`
	IssuedAt int64                 `json:"issued_at"`
}

type invoiceSnapshotLine struct {
	ID       uuid.UUID `json:"id"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
}

func (s invoiceSnapshot) ledgerPayload() ledger.Payload {
	lines := make([]ledger.Line, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = ledger.Line{ID: l.ID, Quantity: l.Quantity, Price: l.Price}
	}
	return ledger.Payload{
		ObraID:   s.ObraID,
		ClientID: s.ClientID,
		Lines:    lines,
		Total:    s.Total,
		PrevHash: s.PrevHash,
		IssuedAt: time.Unix(s.IssuedAt, 0),
	}
}

// Submit creates the invoice for a completed obra.
func (s *InvoiceService) Submit(ctx context.Context, obraID uuid.UUID) (*models.Invoice, error) {
	var obra models.Obra
	if err := s.db.WithContext(ctx).Preload("BudgetItems").First(&obra, "id = ?", obraID).Error; err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("obra_id = ?", obraID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if err := CheckSubmittable(obra.State, existing > 0); err != nil {
		return nil, err
	}
	if len(obra.BudgetItems) == 0 {
		return nil, ErrEmptyBudget
	}

	issuedAt := time.Now()
	var invoice models.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the chain tip. Everything below happens under this lock.
		var counter models.ChainCounter
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&counter, "id = ?", 1).Error; err != nil {
			return fmt.Errorf("failed to lock chain counter: %w", err)
		}

		snapshot := invoiceSnapshot{
			ObraID:   obra.ID,
			ClientID: obra.ClientID,
			Lines:    make([]invoiceSnapshotLine, len(obra.BudgetItems)),
			PrevHash: counter.LastHash,
			IssuedAt: issuedAt.Unix(),
		}
		for i, item := range obra.BudgetItems {
			snapshot.Lines[i] = invoiceSnapshotLine{ID: item.ID, Quantity: item.Quantity, Price: item.AppliedPrice}
			snapshot.Total += item.Subtotal
		}

		hash := ledger.HashPayload(snapshot.ledgerPayload())
		seq := counter.LastSequence + 1
		folio := ledger.Folio(issuedAt.Year(), seq)

		raw, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to encode payload snapshot: %w", err)
		}

		invoice = models.Invoice{
			ObraID:    obra.ID,
			Folio:     folio,
			Sequence:  seq,
			Hash:      hash,
			PrevHash:  counter.LastHash,
			QRPayload: ledger.QRPayload(folio, hash, snapshot.Total),
			Payload:   datatypes.JSON(raw),
			Total:     snapshot.Total,
			IssuedAt:  issuedAt,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("failed to persist invoice: %w", err)
		}

		return tx.Model(&models.ChainCounter{}).Where("id = ?", 1).
			Updates(map[string]interface{}{"last_sequence": seq, "last_hash": hash}).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, submitErr(err)
	}

	log.Infof("invoice %s issued for obra %s", invoice.Folio, obra.ID)
	return &invoice, nil
}

// submitErr maps storage failures out of the submit transaction. The
// precondition check runs before the transaction, so a second submission
// racing the first can pass it and then die on the obra_id unique index;
// that is still a duplicate invoice, not an internal failure.
func submitErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrInvoiceExists
	}
	return err
}

// ChainBreak describes the first broken link found by VerifyChain.
type ChainBreak struct {
	Folio  string `json:"folio"`
	Reason string `json:"reason"`
}

// VerifyChain walks every invoice in chain order, recomputes each hash
// from its payload snapshot and checks the link to its predecessor.
// Returns nil when the chain is intact.
func (s *InvoiceService) VerifyChain(ctx context.Context) (*ChainBreak, error) {
	var invoices []models.Invoice
	if err := s.db.WithContext(ctx).Order("sequence asc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return VerifyLinks(invoices), nil
}

// VerifyLinks checks a sequence of invoices already sorted by sequence.
// Pure: exercised directly in tests.
func VerifyLinks(invoices []models.Invoice) *ChainBreak {
	prevHash := ""
	for _, inv := range invoices {
		if inv.PrevHash != prevHash {
			return &ChainBreak{Folio: inv.Folio, Reason: "previous hash does not match the preceding invoice"}
		}

		var snapshot invoiceSnapshot
		if err := json.Unmarshal(inv.Payload, &snapshot); err != nil {
			return &ChainBreak{Folio: inv.Folio, Reason: "payload snapshot is unreadable"}
		}
		if recomputed := ledger.HashPayload(snapshot.ledgerPayload()); recomputed != inv.Hash {
			return &ChainBreak{Folio: inv.Folio, Reason: "stored hash does not match the payload"}
		}
		prevHash = inv.Hash
	}
	return nil
}
