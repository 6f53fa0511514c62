package repository

import (
	"context"
	"fmt"

	"rar-studio/internal/model"
)

func (r *Repository) AppendMessage(ctx context.Context, msg *model.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// RecentMessages returns the last n messages of a conversation, oldest first
func (r *Repository) RecentMessages(ctx context.Context, leadID string, n int) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).Where("lead_id = ?", leadID).Order("id DESC").Limit(n).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *Repository) Conversation(ctx context.Context, leadID string) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).Where("lead_id = ?", leadID).Order("id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return msgs, nil
}
