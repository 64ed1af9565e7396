package models

import "testing"

func TestObraStateTransitions(t *testing.T) {
	tests := []struct {
		name string
		from ObraState
		to   ObraState
		want bool
	}{
		{"lead to quote", ObraLead, ObraQuote, true},
		{"quote to in progress", ObraQuote, ObraInProgress, true},
		{"in progress to completed", ObraInProgress, ObraCompleted, true},
		{"lead to cancelled", ObraLead, ObraCancelled, true},
		{"quote to cancelled", ObraQuote, ObraCancelled, true},
		{"in progress to cancelled", ObraInProgress, ObraCancelled, true},

		{"lead cannot skip to in progress", ObraLead, ObraInProgress, false},
		{"lead cannot skip to completed", ObraLead, ObraCompleted, false},
		{"quote cannot go back to lead", ObraQuote, ObraLead, false},
		{"completed is final", ObraCompleted, ObraCancelled, false},
		{"cancelled is final", ObraCancelled, ObraLead, false},
		{"no self transition", ObraQuote, ObraQuote, false},
		{"unknown target", ObraLead, ObraState("archived"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransition(tc.to); got != tc.want {
				t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestObraStateValid(t *testing.T) {
	for _, s := range []ObraState{ObraLead, ObraQuote, ObraInProgress, ObraCompleted, ObraCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if ObraState("archived").Valid() {
		t.Error("unknown state must not be valid")
	}
}

func TestPortalTokenShape(t *testing.T) {
	a := NewPortalToken()
	b := NewPortalToken()
	if a == b {
		t.Error("tokens must be unique")
	}
	if len(a) != 48 {
		t.Errorf("token length = %d, want 48", len(a))
	}
	for i := 0; i < len(a); i++ {
		c := a[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Errorf("token contains non-hex character %q", c)
		}
	}
}
