package handlers

import (
	"errors"
	"testing"
)

func TestParseExtractionReplyCodeFence(t *testing.T) {
	reply := "```json\n[{\"nombre\":\"Panel\",\"precio\":12.5,\"unidad\":\"m2\"}]\n```"

	items, err := ParseExtractionReply(reply)
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Name != "Panel" || items[0].Price != 12.5 || items[0].Unit != "m2" {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestParseExtractionReplyProseWrapped(t *testing.T) {
	reply := `Aquí están los productos extraídos:
[{"nombre":"Cemento gris","precio":185,"unidad":"saco","clave":"CEM-01"},
 {"nombre":"Varilla 3/8","precio":120.5,"unidad":"pieza"}]
Espero que sea útil.`

	items, err := ParseExtractionReply(reply)
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Reference != "CEM-01" {
		t.Errorf("reference not parsed: %+v", items[0])
	}
}

func TestParseExtractionReplyNoJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"plain prose", "No pude procesar el documento."},
		{"empty", ""},
		{"object not array", `{"nombre":"Panel","precio":12.5}`},
		{"broken array", "[{\"nombre\": incomplete"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseExtractionReply(tc.reply)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrExtraction) {
				t.Errorf("error must wrap ErrExtraction, got %v", err)
			}
		})
	}
}

func TestParseExtractionReplyUnterminatedFence(t *testing.T) {
	reply := "```json\n[{\"nombre\":\"Block\",\"precio\":18,\"unidad\":\"pieza\"}]"
	items, err := ParseExtractionReply(reply)
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if len(items) != 1 || items[0].Name != "Block" {
		t.Errorf("unexpected items: %+v", items)
	}
}
