package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one append-only turn in a lead's conversation
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	LeadID    string    `json:"lead_id" gorm:"type:varchar(64);not null;index"`
	Role      string    `json:"role" gorm:"type:varchar(16);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Message
func (Message) TableName() string {
	return "messages"
}
