package model

import "time"

// MonthKeyLayout formats the calendar month a usage event belongs to
const MonthKeyLayout = "2006-01"

// MonthKey returns the UTC calendar month of t, e.g. "2024-05"
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthKeyLayout)
}

// UsageEvent records that a lead consumed one quota slot in a month.
// The composite primary key allows at most one row per (month, lead).
type UsageEvent struct {
	MonthKey  string    `json:"month_key" gorm:"primaryKey;type:varchar(7)"`
	LeadID    string    `json:"lead_id" gorm:"primaryKey;type:varchar(64)"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for UsageEvent
func (UsageEvent) TableName() string {
	return "usage_events"
}
