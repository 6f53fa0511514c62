package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rar-studio/internal/service/studio"
)

// ListLeads returns all leads, most recently active first
func (h *Handlers) ListLeads(c *gin.Context) {
	leads, err := h.studio.ListLeads(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve leads")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "leads": leads})
}

// CreateLead adds a lead to the New stage
func (h *Handlers) CreateLead(c *gin.Context) {
	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	lead, err := h.studio.CreateLead(c.Request.Context(), studio.LeadInput{
		Name:    req.Name,
		Contact: req.Contact,
		Source:  req.Source,
	})
	if err != nil {
		respondError(c, err, "Failed to create lead")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "lead": lead})
}

// DeleteLead removes a lead and everything that references it
func (h *Handlers) DeleteLead(c *gin.Context) {
	if err := h.studio.DeleteLead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete lead")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetConversation returns a lead's messages in order
func (h *Handlers) GetConversation(c *gin.Context) {
	messages, err := h.orchestrator.History(c.Request.Context(), c.Param("lead_id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve conversation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": messages})
}

// MoveStage moves a lead to another pipeline stage
func (h *Handlers) MoveStage(c *gin.Context) {
	var req MoveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.studio.MoveStage(c.Request.Context(), req.LeadID, req.Stage); err != nil {
		respondError(c, err, "Failed to move lead")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Chat runs one salesperson turn for a lead
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	reply, err := h.orchestrator.Chat(c.Request.Context(), req.LeadID, req.Message)
	if err != nil {
		respondError(c, err, "Failed to process chat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "reply": reply.Reply, "usage": reply.Usage})
}
