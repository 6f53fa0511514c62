package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rar-studio/internal/model"
)

func (r *Repository) CreateFunnel(ctx context.Context, funnel *model.Funnel) error {
	if err := r.db.WithContext(ctx).Create(funnel).Error; err != nil {
		return fmt.Errorf("failed to create funnel: %w", err)
	}
	return nil
}

func (r *Repository) GetFunnel(ctx context.Context, slug string) (*model.Funnel, error) {
	var funnel model.Funnel
	result := r.db.WithContext(ctx).Where("slug = ?", slug).First(&funnel)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &funnel, nil
}
