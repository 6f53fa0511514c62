package model

import "time"

// SingletonID is the fixed key of every settings row
const SingletonID = 1

const (
	DefaultPlan             = "pro"
	DefaultLeadCap          = 100
	DefaultMonthlyPriceUSD  = 100
	MinLeadCap              = 1
	MaxLeadCap              = 100000
	DefaultAutosendChannels = "sms,email"
)

// TenantLimits holds the active plan and the monthly distinct-lead cap
type TenantLimits struct {
	ID              uint      `json:"-" gorm:"primaryKey;autoIncrement:false"`
	Plan            string    `json:"plan" gorm:"type:varchar(64);not null;default:'pro'"`
	LeadCap         int       `json:"lead_cap" gorm:"not null;default:100"`
	MonthlyPriceUSD int       `json:"monthly_price_usd" gorm:"not null;default:100"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for TenantLimits
func (TenantLimits) TableName() string {
	return "tenant_limits"
}

// ClampLeadCap bounds a cap into [MinLeadCap, MaxLeadCap]
func ClampLeadCap(cap int) int {
	if cap < MinLeadCap {
		return MinLeadCap
	}
	if cap > MaxLeadCap {
		return MaxLeadCap
	}
	return cap
}

// Integrations holds the operator controlled provider flags
type Integrations struct {
	ID               uint      `json:"-" gorm:"primaryKey;autoIncrement:false"`
	TwilioEnabled    bool      `json:"twilio_enabled" gorm:"not null;default:false"`
	SendGridEnabled  bool      `json:"sendgrid_enabled" gorm:"column:sendgrid_enabled;not null;default:false"`
	AutosendEnabled  bool      `json:"autosend_enabled" gorm:"not null;default:false"`
	AutosendChannels string    `json:"autosend_channels" gorm:"type:varchar(255);not null;default:'sms,email'"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for Integrations
func (Integrations) TableName() string {
	return "integrations"
}

// BusinessProfile describes the tenant business for prompt context
type BusinessProfile struct {
	ID            uint      `json:"-" gorm:"primaryKey;autoIncrement:false"`
	BizName       string    `json:"biz_name" gorm:"type:varchar(255);not null;default:''"`
	BizType       string    `json:"biz_type" gorm:"type:varchar(255);not null;default:''"`
	Offer         string    `json:"offer" gorm:"type:text"`
	Location      string    `json:"location" gorm:"type:varchar(255);not null;default:''"`
	Tone          string    `json:"tone" gorm:"type:varchar(64);not null;default:'confident'"`
	ContactMethod string    `json:"contact_method" gorm:"type:varchar(64);not null;default:'dm'"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for BusinessProfile
func (BusinessProfile) TableName() string {
	return "business_profile"
}
