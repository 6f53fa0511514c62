package studio

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"rar-studio/internal/model"
	"rar-studio/internal/repository"
	"rar-studio/internal/service"
)

// LeadInput holds the fields of a new lead
type LeadInput struct {
	Name    string
	Contact string
	Source  string
}

// CreateLead stores a lead in the New stage
func (s *Service) CreateLead(ctx context.Context, in LeadInput) (*model.Lead, error) {
	now := s.now().UTC()
	lead := &model.Lead{
		ID:        uuid.NewString(),
		Name:      CleanOneLine(in.Name),
		Contact:   CleanOneLine(in.Contact),
		Source:    CleanOneLine(in.Source),
		Stage:     model.StageNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateLead(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *Service) ListLeads(ctx context.Context) ([]model.Lead, error) {
	return s.store.ListLeads(ctx)
}

// DeleteLead removes the lead together with its messages, usage events and outbound messages
func (s *Service) DeleteLead(ctx context.Context, id string) error {
	err := s.store.DeleteLead(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return service.ErrLeadNotFound
	}
	return err
}

// MoveStage changes the pipeline stage of a lead
func (s *Service) MoveStage(ctx context.Context, leadID, stage string) error {
	stage = CleanOneLine(stage)
	if !model.ValidStage(stage) {
		return service.Invalid("stage", "Invalid stage")
	}

	err := s.store.UpdateLeadStage(ctx, leadID, stage, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return service.ErrLeadNotFound
	}
	return err
}
