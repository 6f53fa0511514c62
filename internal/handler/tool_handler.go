package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rar-studio/internal/service/studio"
)

func (req BusinessRequest) input() studio.BusinessInput {
	return studio.BusinessInput{
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		Offer:        req.Offer,
		Location:     req.Location,
		Tone:         req.Vibe,
	}
}

// MarketingPack generates hooks, captions and ad copy for a business
func (h *Handlers) MarketingPack(c *gin.Context) {
	var req BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := h.studio.MarketingPack(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err, "Failed to generate marketing pack")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "result": out})
}

// SalesPlaybook generates a sales playbook for a business
func (h *Handlers) SalesPlaybook(c *gin.Context) {
	var req BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := h.studio.SalesPlaybook(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err, "Failed to generate sales playbook")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "result": out})
}

// SalesReplies drafts replies to a customer message
func (h *Handlers) SalesReplies(c *gin.Context) {
	var req SalesRepliesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := h.studio.SalesReplies(c.Request.Context(), studio.SalesRepliesInput{
		CustomerMessage: req.CustomerMessage,
		BusinessType:    req.BusinessType,
		Offer:           req.Offer,
		Location:        req.Location,
		Goal:            req.Goal,
	})
	if err != nil {
		respondError(c, err, "Failed to generate sales replies")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "result": out})
}

// BuildFunnel publishes a landing page and returns where it is served
func (h *Handlers) BuildFunnel(c *gin.Context) {
	var req BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	funnel, err := h.studio.BuildFunnel(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err, "Failed to build funnel")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"funnel": FunnelResponse{
			Slug:  funnel.Slug,
			Title: funnel.Title,
			URL:   "/f/" + funnel.Slug,
		},
	})
}

// ViewFunnel serves a published funnel page
func (h *Handlers) ViewFunnel(c *gin.Context) {
	funnel, err := h.studio.Funnel(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to retrieve funnel")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(funnel.HTML))
}
