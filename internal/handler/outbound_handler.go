package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rar-studio/internal/service/outbound"
)

// QueueOutbound queues a notification for the next run
func (h *Handlers) QueueOutbound(c *gin.Context) {
	var req OutboundQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.queue.Enqueue(c.Request.Context(), outbound.EnqueueInput{
		LeadID:    req.LeadID,
		Channel:   req.Channel,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      req.Body,
	})
	if err != nil {
		respondError(c, err, "Failed to queue outbound message")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"queued": QueuedResponse{
			ID:        msg.ID,
			Status:    msg.Status,
			CreatedAt: msg.CreatedAt,
		},
	})
}

// RunOutbound processes one batch of queued messages
func (h *Handlers) RunOutbound(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(outbound.DefaultBatchLimit)))
	if err != nil || limit < 1 {
		badRequest(c, "limit must be a positive integer")
		return
	}

	// A client disconnect must not abandon a half-processed batch.
	result, err := h.queue.Run(context.WithoutCancel(c.Request.Context()), limit)
	if err != nil {
		respondError(c, err, "Failed to run outbound queue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"queued_found": result.QueuedFound,
		"sent":         result.Sent,
		"failed":       result.Failed,
	})
}

// ListOutbound returns outbound messages with pagination
func (h *Handlers) ListOutbound(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	status := c.Query("status")

	messages, total, page, limit, err := h.queue.List(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve outbound messages")
		return
	}

	c.JSON(http.StatusOK, OutboundListResponse{
		Messages: messages,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}
