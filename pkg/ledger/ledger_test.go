package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHashDeterministic(t *testing.T) {
	a := Hash("obra:abc|total:100.00")
	b := Hash("obra:abc|total:100.00")
	if a != b {
		t.Errorf("same payload produced different digests: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a != strings.ToLower(a) {
		t.Error("digest must be lowercase hex")
	}
}

func TestHashAvalanche(t *testing.T) {
	a := Hash("obra:abc|total:100.00")
	b := Hash("obra:abc|total:100.01")
	if a == b {
		t.Fatal("one-character change did not change the digest")
	}
	// Spot-check that the digests differ in more than a few positions.
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	if diff < 16 {
		t.Errorf("digests too similar, only %d positions differ", diff)
	}
}

func TestCanonicalStable(t *testing.T) {
	obraID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	clientID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	lineID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	issued := time.Unix(1700000000, 0)

	p := Payload{
		ObraID:   obraID,
		ClientID: clientID,
		Lines:    []Line{{ID: lineID, Quantity: 2, Price: 12.5}},
		Total:    25,
		PrevHash: "abc",
		IssuedAt: issued,
	}

	want := "obra:11111111-1111-1111-1111-111111111111|" +
		"client:22222222-2222-2222-2222-222222222222|" +
		"line:33333333-3333-3333-3333-333333333333,2,12.5|" +
		"total:25|prev:abc|ts:1700000000"
	if got := Canonical(p); got != want {
		t.Errorf("canonical payload drifted:\n got %s\nwant %s", got, want)
	}

	if HashPayload(p) != Hash(want) {
		t.Error("HashPayload must equal Hash(Canonical(p))")
	}
}

func TestCanonicalDetectsSubCentChange(t *testing.T) {
	lineID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	base := Payload{
		ObraID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		ClientID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Lines:    []Line{{ID: lineID, Quantity: 1, Price: 100}},
		Total:    100,
		PrevHash: "",
		IssuedAt: time.Unix(1700000000, 0),
	}

	// Below half a cent: must still change the digest.
	tampered := base
	tampered.Lines = []Line{{ID: lineID, Quantity: 1, Price: 100.004}}
	tampered.Total = 100.004

	if Canonical(base) == Canonical(tampered) {
		t.Fatal("sub-cent price change did not change the canonical payload")
	}
	if HashPayload(base) == HashPayload(tampered) {
		t.Fatal("sub-cent price change did not change the digest")
	}
}

func TestFolio(t *testing.T) {
	tests := []struct {
		year int
		seq  int64
		want string
	}{
		{2026, 1, "ODP-2026-00001"},
		{2026, 42, "ODP-2026-00042"},
		{2027, 123456, "ODP-2027-123456"},
	}
	for _, tc := range tests {
		if got := Folio(tc.year, tc.seq); got != tc.want {
			t.Errorf("Folio(%d, %d) = %s, want %s", tc.year, tc.seq, got, tc.want)
		}
	}
}

func TestQRPayload(t *testing.T) {
	hash := Hash("anything")
	qr := QRPayload("ODP-2026-00007", hash, 1234.5)
	want := "ODEPLAC|ODP-2026-00007|" + hash[:16] + "|1234.50"
	if qr != want {
		t.Errorf("QR payload = %s, want %s", qr, want)
	}

	// Short hash must not panic.
	if got := QRPayload("F", "ab", 0); got != "ODEPLAC|F|ab|0.00" {
		t.Errorf("short hash payload = %s", got)
	}
}
