// Package studio holds the tenant facing operations around the core queue:
// leads, business profile, settings and generated marketing assets.
package studio

import (
	"context"
	"strings"
	"time"

	"rar-studio/internal/llm"
	"rar-studio/internal/model"
)

// Store is the persistence the studio needs
type Store interface {
	CreateLead(ctx context.Context, lead *model.Lead) error
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context) ([]model.Lead, error)
	UpdateLeadStage(ctx context.Context, id, stage string, at time.Time) error
	DeleteLead(ctx context.Context, id string) error

	GetProfile(ctx context.Context) (*model.BusinessProfile, error)
	UpdateProfile(ctx context.Context, profile model.BusinessProfile) error
	GetLimits(ctx context.Context) (*model.TenantLimits, error)
	UpdateLimits(ctx context.Context, limits model.TenantLimits) error
	GetIntegrations(ctx context.Context) (*model.Integrations, error)
	UpdateIntegrations(ctx context.Context, integ model.Integrations) error

	CreateFunnel(ctx context.Context, funnel *model.Funnel) error
	GetFunnel(ctx context.Context, slug string) (*model.Funnel, error)
}

// Readiness reports provider credential presence by provider name
type Readiness interface {
	Readiness() map[string]bool
}

// Brand is the prompt context shared by every generation
type Brand struct {
	Name     string
	Audience string
}

// Service implements the studio operations
type Service struct {
	store     Store
	generator llm.Generator
	readiness Readiness
	brand     Brand
	now       func() time.Time
}

func NewService(store Store, generator llm.Generator, readiness Readiness, brand Brand) *Service {
	return &Service{
		store:     store,
		generator: generator,
		readiness: readiness,
		brand:     brand,
		now:       time.Now,
	}
}

// CleanOneLine collapses internal whitespace and trims the ends
func CleanOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
