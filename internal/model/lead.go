package model

import "time"

// Lead stages, in pipeline order
const (
	StageNew       = "New"
	StageContacted = "Contacted"
	StageEngaged   = "Engaged"
	StageEstimate  = "Estimate"
	StageWon       = "Won"
	StageLost      = "Lost"
)

// Stages lists every valid lead stage in pipeline order
var Stages = []string{StageNew, StageContacted, StageEngaged, StageEstimate, StageWon, StageLost}

// ValidStage reports whether stage is one of Stages
func ValidStage(stage string) bool {
	for _, s := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Lead represents a prospective customer tracked through the sales pipeline
type Lead struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;default:''"`
	Contact   string    `json:"contact" gorm:"type:varchar(255);not null;default:''"`
	Source    string    `json:"source" gorm:"type:varchar(255);not null;default:''"`
	Stage     string    `json:"stage" gorm:"type:varchar(32);not null;default:'New'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}

// TableName specifies the table name for Lead
func (Lead) TableName() string {
	return "leads"
}
