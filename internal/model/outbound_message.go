package model

import "time"

// Outbound message statuses. queued is the only non-terminal state.
const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

const (
	ChannelSMS   = "sms"
	ChannelText  = "text"
	ChannelEmail = "email"
)

// Provider names recorded on outbound messages that no adapter handled
const (
	ProviderInternal  = "internal"
	ProviderSimulated = "simulated"
)

// OutboundMessage is one unit of queued notification work
type OutboundMessage struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	LeadID    *string    `json:"lead_id" gorm:"type:varchar(64);index"`
	Channel   string     `json:"channel" gorm:"type:varchar(32);not null"`
	Recipient string     `json:"recipient" gorm:"type:varchar(255);not null;default:''"`
	Subject   string     `json:"subject" gorm:"type:varchar(255);not null;default:''"`
	Body      string     `json:"body" gorm:"type:text;not null"`
	Status    string     `json:"status" gorm:"type:varchar(16);not null;index:idx_outbound_status_created,priority:1"`
	Provider  string     `json:"provider" gorm:"type:varchar(32);not null;default:''"`
	Error     string     `json:"error" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at" gorm:"index:idx_outbound_status_created,priority:2"`
	SentAt    *time.Time `json:"sent_at"`
}

// TableName specifies the table name for OutboundMessage
func (OutboundMessage) TableName() string {
	return "outbound_messages"
}
