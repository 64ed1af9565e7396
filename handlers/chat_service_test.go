package handlers

import (
	"strings"
	"testing"
)

func TestParseBudgetDraftWithFence(t *testing.T) {
	reply := "Claro, aquí tienes un borrador:\n\n```budget\n" +
		`{"lines":[{"material":"Cemento gris","unit":"saco","quantity":10,"unit_price":185.5,"subtotal":1855}],"total":1855,"notes":"Precios de catálogo"}` +
		"\n```\nAvísame si quieres ajustar cantidades."

	prose, draft := ParseBudgetDraft(reply)
	if draft == nil {
		t.Fatal("expected a budget draft")
	}
	if len(draft.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(draft.Lines))
	}
	if draft.Lines[0].Material != "Cemento gris" {
		t.Errorf("material = %q", draft.Lines[0].Material)
	}
	if draft.Total != 1855 {
		t.Errorf("total = %v", draft.Total)
	}
	if strings.Contains(prose, "```") {
		t.Errorf("prose still contains fence: %q", prose)
	}
	if !strings.Contains(prose, "borrador") || !strings.Contains(prose, "ajustar cantidades") {
		t.Errorf("prose lost surrounding text: %q", prose)
	}
}

func TestParseBudgetDraftNoFence(t *testing.T) {
	prose, draft := ParseBudgetDraft("El cemento gris cuesta 185.50 por saco.")
	if draft != nil {
		t.Fatal("did not expect a draft")
	}
	if prose != "El cemento gris cuesta 185.50 por saco." {
		t.Errorf("prose = %q", prose)
	}
}

func TestParseBudgetDraftInvalidJSON(t *testing.T) {
	reply := "Aquí va:\n```budget\n{not json}\n```"
	prose, draft := ParseBudgetDraft(reply)
	if draft != nil {
		t.Fatal("invalid JSON must not produce a draft")
	}
	if prose == "" {
		t.Error("prose should fall back to the full reply")
	}
}

func TestParseBudgetDraftEmptyLines(t *testing.T) {
	reply := "```budget\n{\"lines\":[],\"total\":0}\n```"
	if _, draft := ParseBudgetDraft(reply); draft != nil {
		t.Fatal("a draft without lines is not a draft")
	}
}

func TestParseBudgetDraftUnterminatedFence(t *testing.T) {
	reply := "```budget\n{\"lines\":[{\"material\":\"x\"}]"
	prose, draft := ParseBudgetDraft(reply)
	if draft != nil {
		t.Fatal("unterminated fence must not parse")
	}
	if prose == "" {
		t.Error("expected the raw reply back")
	}
}
