package handler

import (
	"time"

	"rar-studio/internal/model"
)

// LimitsRequest represents the request structure for updating tenant limits
type LimitsRequest struct {
	Plan            string `json:"plan"`
	LeadCap         *int   `json:"lead_cap"`
	MonthlyPriceUSD *int   `json:"monthly_price_usd"`
}

// IntegrationsRequest represents the request structure for updating integration flags
type IntegrationsRequest struct {
	TwilioEnabled    *bool  `json:"twilio_enabled" binding:"required"`
	SendGridEnabled  *bool  `json:"sendgrid_enabled" binding:"required"`
	AutosendEnabled  *bool  `json:"autosend_enabled" binding:"required"`
	AutosendChannels string `json:"autosend_channels"`
}

// OutboundQueueRequest represents the request structure for queueing an outbound message
type OutboundQueueRequest struct {
	LeadID    string `json:"lead_id"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// ProfileRequest represents the request structure for updating the business profile
type ProfileRequest struct {
	BizName       string `json:"biz_name"`
	BizType       string `json:"biz_type"`
	Offer         string `json:"offer"`
	Location      string `json:"location"`
	Tone          string `json:"tone"`
	ContactMethod string `json:"contact_method"`
}

// LeadRequest represents the request structure for creating a lead
type LeadRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Source  string `json:"source"`
}

// MoveStageRequest represents the request structure for moving a lead between stages
type MoveStageRequest struct {
	LeadID string `json:"lead_id" binding:"required"`
	Stage  string `json:"stage" binding:"required"`
}

// ChatRequest represents one salesperson chat turn
type ChatRequest struct {
	LeadID  string `json:"lead_id"`
	Message string `json:"message"`
}

// BusinessRequest represents the business an asset is generated for
type BusinessRequest struct {
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	Offer        string `json:"offer"`
	Location     string `json:"location"`
	Vibe         string `json:"vibe"`
}

// SalesRepliesRequest represents a customer message to draft replies for
type SalesRepliesRequest struct {
	CustomerMessage string `json:"customer_message"`
	BusinessType    string `json:"business_type"`
	Offer           string `json:"offer"`
	Location        string `json:"location"`
	Goal            string `json:"goal"`
}

// QueuedResponse represents a freshly queued outbound message
type QueuedResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// OutboundListResponse represents a page of outbound messages
type OutboundListResponse struct {
	Messages []model.OutboundMessage `json:"messages"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	Limit    int                     `json:"limit"`
}

// FunnelResponse represents a published funnel
type FunnelResponse struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK        bool      `json:"ok"`
	Dialect   string    `json:"dialect"`
	DB        bool      `json:"db"`
	Scheduler string    `json:"scheduler"`
	Timestamp time.Time `json:"ts"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
