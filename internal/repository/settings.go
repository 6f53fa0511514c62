package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rar-studio/internal/model"
)

func (r *Repository) getSingleton(ctx context.Context, dest interface{}, name string) error {
	result := r.db.WithContext(ctx).Where("id = ?", model.SingletonID).First(dest)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s row missing: %w", name, ErrNotFound)
	}
	if result.Error != nil {
		return fmt.Errorf("failed to load %s: %w", name, result.Error)
	}
	return nil
}

// updateSingleton writes through a map so zero values such as false are persisted
func (r *Repository) updateSingleton(ctx context.Context, table interface{}, name string, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(table).Where("id = ?", model.SingletonID).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", name, err)
	}
	return nil
}

func (r *Repository) GetLimits(ctx context.Context) (*model.TenantLimits, error) {
	var limits model.TenantLimits
	if err := r.getSingleton(ctx, &limits, "tenant limits"); err != nil {
		return nil, err
	}
	return &limits, nil
}

func (r *Repository) UpdateLimits(ctx context.Context, limits model.TenantLimits) error {
	return r.updateSingleton(ctx, &model.TenantLimits{}, "tenant limits", map[string]interface{}{
		"plan":              limits.Plan,
		"lead_cap":          limits.LeadCap,
		"monthly_price_usd": limits.MonthlyPriceUSD,
		"updated_at":        limits.UpdatedAt,
	})
}

func (r *Repository) GetIntegrations(ctx context.Context) (*model.Integrations, error) {
	var integ model.Integrations
	if err := r.getSingleton(ctx, &integ, "integrations"); err != nil {
		return nil, err
	}
	return &integ, nil
}

func (r *Repository) UpdateIntegrations(ctx context.Context, integ model.Integrations) error {
	return r.updateSingleton(ctx, &model.Integrations{}, "integrations", map[string]interface{}{
		"twilio_enabled":    integ.TwilioEnabled,
		"sendgrid_enabled":  integ.SendGridEnabled,
		"autosend_enabled":  integ.AutosendEnabled,
		"autosend_channels": integ.AutosendChannels,
		"updated_at":        integ.UpdatedAt,
	})
}

func (r *Repository) GetProfile(ctx context.Context) (*model.BusinessProfile, error) {
	var profile model.BusinessProfile
	if err := r.getSingleton(ctx, &profile, "business profile"); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, profile model.BusinessProfile) error {
	return r.updateSingleton(ctx, &model.BusinessProfile{}, "business profile", map[string]interface{}{
		"biz_name":       profile.BizName,
		"biz_type":       profile.BizType,
		"offer":          profile.Offer,
		"location":       profile.Location,
		"tone":           profile.Tone,
		"contact_method": profile.ContactMethod,
		"updated_at":     profile.UpdatedAt,
	})
}
