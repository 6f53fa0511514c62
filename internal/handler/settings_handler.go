package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rar-studio/internal/model"
	"rar-studio/internal/service/studio"
)

// GetLimits returns the tenant plan and monthly lead cap
func (h *Handlers) GetLimits(c *gin.Context) {
	limits, err := h.studio.Limits(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve limits")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "limits": limits})
}

// UpdateLimits stores a new plan, cap and price
func (h *Handlers) UpdateLimits(c *gin.Context) {
	var req LimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	in := studio.LimitsInput{
		Plan:            req.Plan,
		LeadCap:         model.DefaultLeadCap,
		MonthlyPriceUSD: model.DefaultMonthlyPriceUSD,
	}
	if req.LeadCap != nil {
		in.LeadCap = *req.LeadCap
	}
	if req.MonthlyPriceUSD != nil {
		in.MonthlyPriceUSD = *req.MonthlyPriceUSD
	}

	limits, err := h.studio.UpdateLimits(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to update limits")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "limits": limits})
}

// GetUsage returns distinct leads served this month against the cap
func (h *Handlers) GetUsage(c *gin.Context) {
	snapshot, err := h.meter.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve usage")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"month":      snapshot.Month,
		"used_leads": snapshot.Used,
		"lead_cap":   snapshot.Cap,
		"plan":       snapshot.Plan,
	})
}

// GetIntegrations returns provider flags and credential readiness
func (h *Handlers) GetIntegrations(c *gin.Context) {
	view, err := h.studio.Integrations(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve integrations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"integrations": view.Integrations,
		"env_ready":    view.EnvReady,
	})
}

// UpdateIntegrations stores provider and autosend flags
func (h *Handlers) UpdateIntegrations(c *gin.Context) {
	var req IntegrationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	integ, err := h.studio.UpdateIntegrations(c.Request.Context(), studio.IntegrationsInput{
		TwilioEnabled:    *req.TwilioEnabled,
		SendGridEnabled:  *req.SendGridEnabled,
		AutosendEnabled:  *req.AutosendEnabled,
		AutosendChannels: req.AutosendChannels,
	})
	if err != nil {
		respondError(c, err, "Failed to update integrations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "integrations": integ})
}

// GetProfile returns the business profile
func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.studio.Profile(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": profile})
}

// UpdateProfile stores the business profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	profile, err := h.studio.UpdateProfile(c.Request.Context(), studio.ProfileInput{
		BizName:       req.BizName,
		BizType:       req.BizType,
		Offer:         req.Offer,
		Location:      req.Location,
		Tone:          req.Tone,
		ContactMethod: req.ContactMethod,
	})
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": profile})
}
