package models

import (
	"github.com/shopspring/decimal"
)

// Role identifies who authored a conversation entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// ConversationEntry is one message in the append-only session log. An entry
// whose PendingID is set offers the three obligation choices; it is removed
// from the log when its pending candidate resolves and replaced by a fresh
// acknowledgment, never edited in place.
type ConversationEntry struct {
	Base
	Role      Role    `gorm:"not null" json:"role"`
	Content   string  `gorm:"not null" json:"content"`
	PendingID *string `gorm:"type:uuid;index" json:"pending_id,omitempty"`
	IsRedZone bool    `gorm:"not null;default:false" json:"is_red_zone,omitempty"`
}

// PendingCandidate is a parsed expense awaiting an obligation tag before it
// becomes a committed transaction. The conversation entry offering the
// choices references it by id; the two are resolved as one atomic step.
type PendingCandidate struct {
	Base
	Date        string          `gorm:"not null" json:"date"`
	Category    string          `gorm:"not null" json:"category"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Description string          `json:"description"`
	Confidence  float64         `json:"confidence"`
}
