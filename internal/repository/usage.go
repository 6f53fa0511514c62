package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"rar-studio/internal/model"
)

// CountUsedLeads counts distinct leads with a usage event in month
func (r *Repository) CountUsedLeads(ctx context.Context, month string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UsageEvent{}).
		Where("month_key = ?", month).
		Distinct("lead_id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count used leads: %w", err)
	}
	return count, nil
}

func (r *Repository) IsLeadCounted(ctx context.Context, month, leadID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UsageEvent{}).
		Where("month_key = ? AND lead_id = ?", month, leadID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error checking usage: %w", err)
	}
	return count > 0, nil
}

// RecordUsage inserts the (month, lead) event unless it already exists.
// The primary key makes duplicates a silent no-op on every dialect.
func (r *Repository) RecordUsage(ctx context.Context, month, leadID string, at time.Time) error {
	event := model.UsageEvent{MonthKey: month, LeadID: leadID, CreatedAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "month_key"}, {Name: "lead_id"}},
		DoNothing: true,
	}).Create(&event).Error
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}
