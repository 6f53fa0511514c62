package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rar-studio/internal/model"
)

func (r *Repository) CreateLead(ctx context.Context, lead *model.Lead) error {
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (r *Repository) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var lead model.Lead
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&lead)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &lead, nil
}

func (r *Repository) ListLeads(ctx context.Context) ([]model.Lead, error) {
	var leads []model.Lead
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (r *Repository) UpdateLeadStage(ctx context.Context, id, stage string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Lead{}).Where("id = ?", id).
		Updates(map[string]interface{}{"stage": stage, "updated_at": at})
	if result.Error != nil {
		return fmt.Errorf("failed to update lead stage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) TouchLead(ctx context.Context, id string, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Lead{}).Where("id = ?", id).Update("updated_at", at).Error; err != nil {
		return fmt.Errorf("failed to touch lead: %w", err)
	}
	return nil
}

// DeleteLead removes the lead and every row referencing it in one transaction.
// No foreign key cascade is assumed.
func (r *Repository) DeleteLead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete lead messages: %w", err)
		}
		if err := tx.Where("lead_id = ?", id).Delete(&model.UsageEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete lead usage events: %w", err)
		}
		if err := tx.Where("lead_id = ?", id).Delete(&model.OutboundMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete lead outbound messages: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&model.Lead{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete lead: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
