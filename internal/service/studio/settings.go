package studio

import (
	"context"
	"strings"

	"rar-studio/internal/model"
)

// LimitsInput holds a tenant limits update
type LimitsInput struct {
	Plan            string
	LeadCap         int
	MonthlyPriceUSD int
}

// IntegrationsInput holds an integrations update
type IntegrationsInput struct {
	TwilioEnabled    bool
	SendGridEnabled  bool
	AutosendEnabled  bool
	AutosendChannels string
}

// IntegrationsView pairs the stored flags with credential readiness
type IntegrationsView struct {
	Integrations *model.Integrations `json:"integrations"`
	EnvReady     map[string]bool     `json:"env_ready"`
}

// ProfileInput holds a business profile update
type ProfileInput struct {
	BizName       string
	BizType       string
	Offer         string
	Location      string
	Tone          string
	ContactMethod string
}

func (s *Service) Limits(ctx context.Context) (*model.TenantLimits, error) {
	return s.store.GetLimits(ctx)
}

// UpdateLimits lower-cases the plan and clamps the cap and price into range
func (s *Service) UpdateLimits(ctx context.Context, in LimitsInput) (*model.TenantLimits, error) {
	plan := strings.ToLower(CleanOneLine(in.Plan))
	if plan == "" {
		plan = model.DefaultPlan
	}
	price := in.MonthlyPriceUSD
	if price < 0 {
		price = 0
	}

	limits := model.TenantLimits{
		ID:              model.SingletonID,
		Plan:            plan,
		LeadCap:         model.ClampLeadCap(in.LeadCap),
		MonthlyPriceUSD: price,
		UpdatedAt:       s.now().UTC(),
	}
	if err := s.store.UpdateLimits(ctx, limits); err != nil {
		return nil, err
	}
	return &limits, nil
}

func (s *Service) Integrations(ctx context.Context) (*IntegrationsView, error) {
	integ, err := s.store.GetIntegrations(ctx)
	if err != nil {
		return nil, err
	}
	return &IntegrationsView{Integrations: integ, EnvReady: s.readiness.Readiness()}, nil
}

func (s *Service) UpdateIntegrations(ctx context.Context, in IntegrationsInput) (*model.Integrations, error) {
	channels := strings.ReplaceAll(CleanOneLine(in.AutosendChannels), " ", "")
	if channels == "" {
		channels = model.DefaultAutosendChannels
	}

	integ := model.Integrations{
		ID:               model.SingletonID,
		TwilioEnabled:    in.TwilioEnabled,
		SendGridEnabled:  in.SendGridEnabled,
		AutosendEnabled:  in.AutosendEnabled,
		AutosendChannels: strings.ToLower(channels),
		UpdatedAt:        s.now().UTC(),
	}
	if err := s.store.UpdateIntegrations(ctx, integ); err != nil {
		return nil, err
	}
	return &integ, nil
}

func (s *Service) Profile(ctx context.Context) (*model.BusinessProfile, error) {
	return s.store.GetProfile(ctx)
}

func (s *Service) UpdateProfile(ctx context.Context, in ProfileInput) (*model.BusinessProfile, error) {
	profile := model.BusinessProfile{
		ID:            model.SingletonID,
		BizName:       CleanOneLine(in.BizName),
		BizType:       CleanOneLine(in.BizType),
		Offer:         CleanOneLine(in.Offer),
		Location:      CleanOneLine(in.Location),
		Tone:          CleanOneLine(in.Tone),
		ContactMethod: CleanOneLine(in.ContactMethod),
		UpdatedAt:     s.now().UTC(),
	}
	if profile.Tone == "" {
		profile.Tone = "confident"
	}
	if profile.ContactMethod == "" {
		profile.ContactMethod = "dm"
	}

	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
