package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rar-studio/internal/model"
)

func (r *Repository) CreateOutbound(ctx context.Context, msg *model.OutboundMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create outbound message: %w", err)
	}
	return nil
}

func (r *Repository) GetOutbound(ctx context.Context, id string) (*model.OutboundMessage, error) {
	var msg model.OutboundMessage
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&msg)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &msg, nil
}

// ListQueued returns up to limit queued messages, oldest first. Ids are random
// uuids, so rows sharing a created_at tick come back in arbitrary order.
func (r *Repository) ListQueued(ctx context.Context, limit int) ([]model.OutboundMessage, error) {
	var msgs []model.OutboundMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusQueued).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list queued messages: %w", err)
	}
	return msgs, nil
}

// FinishOutbound moves a queued message into a terminal state.
// It reports false when the row was no longer queued, e.g. finalized by a concurrent run.
func (r *Repository) FinishOutbound(ctx context.Context, id, status, provider, errMsg string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.OutboundMessage{}).
		Where("id = ? AND status = ?", id, model.StatusQueued).
		Updates(map[string]interface{}{
			"status":   status,
			"provider": provider,
			"error":    errMsg,
			"sent_at":  at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to finish outbound message: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ListOutbound pages through outbound messages newest first, optionally filtered by status
func (r *Repository) ListOutbound(ctx context.Context, status string, offset, limit int) ([]model.OutboundMessage, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.OutboundMessage{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count outbound messages: %w", err)
	}

	var msgs []model.OutboundMessage
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&msgs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list outbound messages: %w", err)
	}
	return msgs, total, nil
}
