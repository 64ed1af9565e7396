// Package ledger computes the content hashes that chain invoices together.
// Each invoice stores the hash of its own canonical payload and the hash of
// the invoice created immediately before it anywhere in the system, so a
// change to any historical invoice breaks every later link.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Line is one budget line inside an invoice payload.
type Line struct {
	ID       uuid.UUID
	Quantity float64
	Price    float64
}

// Payload is everything an invoice hash covers.
type Payload struct {
	ObraID   uuid.UUID
	ClientID uuid.UUID
	Lines    []Line
	Total    float64
	PrevHash string
	IssuedAt time.Time
}

// Hash returns the lowercase hex SHA-256 of s. Deterministic and total.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Canonical renders p as a stable pipe-delimited string. Field order is
// fixed and floats use the shortest exact representation, so any change to
// a stored value changes the digest, even below a cent.
func Canonical(p Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "obra:%s|client:%s|", p.ObraID, p.ClientID)
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "line:%s,%s,%s|", l.ID, fnum(l.Quantity), fnum(l.Price))
	}
	fmt.Fprintf(&b, "total:%s|prev:%s|ts:%d", fnum(p.Total), p.PrevHash, p.IssuedAt.Unix())
	return b.String()
}

// fnum round-trips a float exactly.
func fnum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// HashPayload is the composition used by the invoice submitter.
func HashPayload(p Payload) string {
	return Hash(Canonical(p))
}

// Folio formats the human-readable invoice number for a chain sequence.
func Folio(year int, seq int64) string {
	return fmt.Sprintf("ODP-%d-%05d", year, seq)
}

// QRPayload builds the verification string embedded in the invoice QR code.
func QRPayload(folio, hash string, total float64) string {
	prefix := hash
	if len(prefix) > 16 {
		prefix = prefix[:16]
	}
	return fmt.Sprintf("ODEPLAC|%s|%s|%.2f", folio, prefix, total)
}
