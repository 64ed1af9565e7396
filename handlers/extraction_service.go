package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ErrExtraction wraps every failure of the tariff extraction path: remote
// call errors, replies with no parseable JSON, and replies whose JSON is
// not an array.
var ErrExtraction = errors.New("extraction failed")

// ExtractedItem is one candidate catalog row pulled out of a price list.
type ExtractedItem struct {
	Name      string  `json:"nombre"`
	Price     float64 `json:"precio"`
	Unit      string  `json:"unidad"`
	Reference string  `json:"clave,omitempty"`
}

// extractionInstruction embeds the extraction policy in the prompt: merge
// tables that continue across pages, skip marketing and legal boilerplate,
// and collapse tiered pricing to the single base unit price. The model is
// trusted to honour it; nothing here re-checks.
const extractionInstruction = `Analiza esta lista de precios de materiales de construcción.
Extrae todos los productos con su precio unitario base.
Si una tabla continúa en la página siguiente, únela como una sola tabla.
Ignora texto publicitario, términos legales y pies de página.
Si un producto tiene precios por volumen, usa únicamente el precio unitario base.
Responde SOLO con un arreglo JSON, sin texto adicional:
[{"nombre": "...", "precio": 0.0, "unidad": "pieza|m2|ml|kg|saco", "clave": "..."}]`

// ExtractionService turns uploaded tariff PDFs into candidate catalog rows.
type ExtractionService struct {
	ai *AIClient
}

func NewExtractionService() *ExtractionService {
	return &ExtractionService{ai: NewAIClient()}
}

// Extract sends the document to the model and parses its reply. A single
// failed call surfaces immediately; no retry.
func (s *ExtractionService) Extract(ctx context.Context, document []byte) ([]ExtractedItem, error) {
	reply, err := s.ai.GenerateFromDocument(ctx, document, "application/pdf", extractionInstruction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	items, err := ParseExtractionReply(reply)
	if err != nil {
		log.WithError(err).Warn("model reply could not be parsed")
		return nil, err
	}
	return items, nil
}

// ParseExtractionReply finds the JSON array in a model reply that may be
// wrapped in prose or markdown code fences, and parses it strictly.
func ParseExtractionReply(reply string) ([]ExtractedItem, error) {
	jsonText := stripWrapping(reply)
	if jsonText == "" {
		return nil, fmt.Errorf("%w: reply contains no JSON array", ErrExtraction)
	}

	var items []ExtractedItem
	dec := json.NewDecoder(strings.NewReader(jsonText))
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: reply is not a JSON array: %v", ErrExtraction, err)
	}
	return items, nil
}

// stripWrapping cuts prose and code-fence markers around the first JSON
// array in the reply. Returns "" when no array is present.
func stripWrapping(reply string) string {
	s := reply

	// Prefer the content of a fenced block when one exists.
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		// Skip a language tag like "json" on the fence line.
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			firstLine := strings.TrimSpace(rest[:nl])
			if firstLine == "json" || firstLine == "" {
				rest = rest[nl+1:]
			}
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			s = rest[:end]
		} else {
			s = rest
		}
	}

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
