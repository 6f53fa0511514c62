package studio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rar-studio/internal/llm"
	"rar-studio/internal/model"
	"rar-studio/internal/repository"
	"rar-studio/internal/service"
)

const notConfiguredText = "Set OPENAI_API_KEY to enable generated outputs."

var deliverables = []string{"Hooks (10)", "Captions (6)", "Ad Copy (3)", "DM Closer Script (1)", "Landing Page Outline (1)"}

var fallbackFunnel = template.Must(template.New("funnel").Parse(
	`<html><body><h1>{{.BusinessName}}</h1><p>{{.BusinessType}}</p><p>{{.Offer}}</p><p>{{.Location}}</p></body></html>`))

// BusinessInput describes the business an asset is generated for
type BusinessInput struct {
	BusinessName string
	BusinessType string
	Offer        string
	Location     string
	Tone         string
}

func (in BusinessInput) clean() BusinessInput {
	return BusinessInput{
		BusinessName: CleanOneLine(in.BusinessName),
		BusinessType: CleanOneLine(in.BusinessType),
		Offer:        CleanOneLine(in.Offer),
		Location:     CleanOneLine(in.Location),
		Tone:         CleanOneLine(in.Tone),
	}
}

func (in BusinessInput) validate() error {
	if in.BusinessName == "" {
		return service.Invalid("business_name", "business_name required")
	}
	if in.BusinessType == "" {
		return service.Invalid("business_type", "business_type required")
	}
	return nil
}

func (in BusinessInput) inputs() map[string]string {
	return map[string]string{
		"business_name": in.BusinessName,
		"business_type": in.BusinessType,
		"offer":         in.Offer,
		"location":      in.Location,
		"deliverables":  strings.Join(deliverables, ", "),
	}
}

// SalesRepliesInput describes a customer message to answer
type SalesRepliesInput struct {
	CustomerMessage string
	BusinessType    string
	Offer           string
	Location        string
	Goal            string
}

func (s *Service) generate(ctx context.Context, tool, tone string, inputs map[string]string) (string, error) {
	if tone == "" {
		tone = "confident"
	}
	out, err := s.generator.Generate(ctx, llm.Request{
		Tool:     tool,
		Tone:     tone,
		Audience: s.brand.Audience,
		Brand:    s.brand.Name,
		Inputs:   inputs,
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// MarketingPack generates hooks, captions, ad copy and a landing page outline
func (s *Service) MarketingPack(ctx context.Context, in BusinessInput) (string, error) {
	in = in.clean()
	if err := in.validate(); err != nil {
		return "", err
	}

	out, err := s.generate(ctx, llm.ToolMarketingPack, in.Tone, in.inputs())
	if errors.Is(err, llm.ErrNotConfigured) {
		return notConfiguredText, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate marketing pack: %w", err)
	}
	return out, nil
}

// SalesPlaybook generates an opener, discovery questions, objection handling and a close
func (s *Service) SalesPlaybook(ctx context.Context, in BusinessInput) (string, error) {
	in = in.clean()
	if in.BusinessType == "" {
		return "", service.Invalid("business_type", "business_type required")
	}

	out, err := s.generate(ctx, llm.ToolSalesPlaybook, in.Tone, in.inputs())
	if errors.Is(err, llm.ErrNotConfigured) {
		return notConfiguredText, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate sales playbook: %w", err)
	}
	return out, nil
}

// SalesReplies drafts replies to a customer message
func (s *Service) SalesReplies(ctx context.Context, in SalesRepliesInput) (string, error) {
	msg := strings.TrimSpace(in.CustomerMessage)
	if msg == "" {
		return "", service.Invalid("customer_message", "customer_message required")
	}
	goal := strings.ToLower(CleanOneLine(in.Goal))
	if goal == "" {
		goal = "book"
	}

	out, err := s.generate(ctx, llm.ToolSalesReplies, "", map[string]string{
		"customer_message": msg,
		"business_type":    CleanOneLine(in.BusinessType),
		"offer":            CleanOneLine(in.Offer),
		"location":         CleanOneLine(in.Location),
		"goal":             goal,
	})
	if errors.Is(err, llm.ErrNotConfigured) {
		return notConfiguredText, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate sales replies: %w", err)
	}
	return out, nil
}

// BuildFunnel generates a landing page and publishes it under a fresh slug.
// Without a generator a minimal page is stored instead.
func (s *Service) BuildFunnel(ctx context.Context, in BusinessInput) (*model.Funnel, error) {
	in = in.clean()
	if err := in.validate(); err != nil {
		return nil, err
	}

	html, err := s.generate(ctx, llm.ToolFunnelHTML, "confident", in.inputs())
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			logrus.Errorf("Failed to generate funnel html, using fallback page: %v", err)
		}
		html, err = renderFallbackFunnel(in)
		if err != nil {
			return nil, err
		}
	}

	funnel := &model.Funnel{
		Slug:         newSlug(),
		Visibility:   "public",
		Title:        fmt.Sprintf("%s — %s", in.BusinessName, in.BusinessType),
		BusinessName: in.BusinessName,
		BusinessType: in.BusinessType,
		Offer:        in.Offer,
		Location:     in.Location,
		HTML:         html,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateFunnel(ctx, funnel); err != nil {
		return nil, err
	}
	return funnel, nil
}

// Funnel returns a published funnel by slug
func (s *Service) Funnel(ctx context.Context, slug string) (*model.Funnel, error) {
	funnel, err := s.store.GetFunnel(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, service.ErrFunnelNotFound
	}
	if err != nil {
		return nil, err
	}
	return funnel, nil
}

func renderFallbackFunnel(in BusinessInput) (string, error) {
	var buf bytes.Buffer
	if err := fallbackFunnel.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("failed to render fallback funnel: %w", err)
	}
	return buf.String(), nil
}

func newSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
