package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// Conversation is a staff user's thread with the AI assistant.
type Conversation struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title  string    `gorm:"size:255" json:"title,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []ChatMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (Conversation) TableName() string {
	return "conversations"
}

// ChatMessage is one turn in a conversation. When the assistant drafts a
// budget it also returns a typed payload (BudgetDraft) which is stored in
// Structured instead of being scraped back out of the rendered text.
type ChatMessage struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`

	Role       string         `gorm:"size:10;not null" json:"role"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Structured datatypes.JSON `gorm:"type:jsonb" json:"structured,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// BudgetDraft is the structured payload the assistant emits when asked to
// draft a quote. Parsed strictly from the model reply; never scraped from
// markdown tables.
type BudgetDraft struct {
	Lines []BudgetDraftLine `json:"lines"`
	Total float64           `json:"total"`
	Notes string            `json:"notes,omitempty"`
}

type BudgetDraftLine struct {
	Material  string  `json:"material"`
	Unit      string  `json:"unit"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}
