package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"odeplac.in/pro/config"
	"odeplac.in/pro/models"
)

const materialContextTTL = time.Hour

// budgetFence marks the structured budget block in an assistant reply.
// The assistant is told to emit the draft as JSON inside this fence; the
// service parses that block and stores it as a typed payload next to the
// prose, so nothing downstream ever scrapes a rendered table.
const budgetFence = "```budget"

const chatInstruction = `Eres el asistente de ODEPLAC, una constructora. Respondes en español,
breve y directo. Tienes acceso al catálogo de materiales listado abajo;
usa esos precios cuando el usuario pregunte por costos o presupuestos.

Cuando el usuario te pida un borrador de presupuesto, añade al final de
tu respuesta un bloque con esta forma exacta:

` + "```budget" + `
{"lines":[{"material":"...","unit":"...","quantity":0,"unit_price":0,"subtotal":0}],"total":0,"notes":"..."}
` + "```" + `

Usa solo materiales del catálogo. No emitas el bloque si no te piden un
presupuesto.`

// ChatService runs the staff assistant: catalog-aware conversation with
// optional structured budget drafts.
type ChatService struct {
	db    *gorm.DB
	redis *redis.Client
	ai    *AIClient
}

func NewChatService() *ChatService {
	return &ChatService{db: config.DB, redis: config.Redis, ai: NewAIClient()}
}

// MaterialContext returns the compact catalog listing injected into every
// assistant prompt. Cached in redis; the importer invalidates the key on
// every catalog write, so a fresh import is visible on the next message.
func (s *ChatService) MaterialContext(ctx context.Context) (string, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, materialContextCacheKey).Result(); err == nil {
			return cached, nil
		}
	}

	var materials []models.Material
	if err := s.db.Preload("Supplier").
		Where("deleted_at IS NULL").
		Order("category, name").
		Find(&materials).Error; err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Catálogo de materiales (nombre | unidad | precio venta | categoría | proveedor):\n")
	for _, m := range materials {
		supplier := "-"
		if m.Supplier != nil {
			supplier = m.Supplier.Name
		}
		fmt.Fprintf(&b, "%s | %s | %.2f | %s | %s\n", m.Name, m.Unit, m.SalePrice, m.Category, supplier)
	}
	contextText := b.String()

	if s.redis != nil {
		if err := s.redis.Set(ctx, materialContextCacheKey, contextText, materialContextTTL).Err(); err != nil {
			log.WithError(err).Warn("failed to cache material context")
		}
	}
	return contextText, nil
}

// Reply sends the conversation to the model and returns the assistant's
// prose plus the parsed budget draft, when one was emitted.
func (s *ChatService) Reply(ctx context.Context, history []models.ChatMessage, userMessage string) (string, *models.BudgetDraft, error) {
	catalog, err := s.MaterialContext(ctx)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString(chatInstruction)
	b.WriteString("\n\n")
	b.WriteString(catalog)
	b.WriteString("\n")
	for _, msg := range history {
		switch msg.Role {
		case models.ChatRoleUser:
			fmt.Fprintf(&b, "\nUsuario: %s", msg.Content)
		case models.ChatRoleAssistant:
			fmt.Fprintf(&b, "\nAsistente: %s", msg.Content)
		}
	}
	fmt.Fprintf(&b, "\nUsuario: %s\nAsistente:", userMessage)

	reply, err := s.ai.GenerateText(ctx, b.String())
	if err != nil {
		return "", nil, err
	}

	prose, draft := ParseBudgetDraft(reply)
	return prose, draft, nil
}

// ParseBudgetDraft splits an assistant reply into prose and the typed
// budget draft, if the reply carries a budget fence. A fence with invalid
// JSON is dropped rather than guessed at.
func ParseBudgetDraft(reply string) (string, *models.BudgetDraft) {
	start := strings.Index(reply, budgetFence)
	if start < 0 {
		return strings.TrimSpace(reply), nil
	}

	rest := reply[start+len(budgetFence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(reply), nil
	}

	var draft models.BudgetDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &draft); err != nil {
		log.WithError(err).Warn("assistant emitted an unparseable budget block")
		return strings.TrimSpace(reply), nil
	}
	if len(draft.Lines) == 0 {
		return strings.TrimSpace(reply), nil
	}

	prose := strings.TrimSpace(reply[:start] + rest[end+3:])
	return prose, &draft
}
