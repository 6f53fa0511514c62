package model

import "time"

// Funnel is a generated landing page published under a short slug
type Funnel struct {
	Slug         string    `json:"slug" gorm:"primaryKey;type:varchar(32)"`
	Visibility   string    `json:"visibility" gorm:"type:varchar(16);not null;default:'public'"`
	Title        string    `json:"title" gorm:"type:varchar(512);not null;default:''"`
	BusinessName string    `json:"business_name" gorm:"type:varchar(255);not null;default:''"`
	BusinessType string    `json:"business_type" gorm:"type:varchar(255);not null;default:''"`
	Offer        string    `json:"offer" gorm:"type:text"`
	Location     string    `json:"location" gorm:"type:varchar(255);not null;default:''"`
	HTML         string    `json:"html" gorm:"column:html;type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for Funnel
func (Funnel) TableName() string {
	return "funnels"
}
