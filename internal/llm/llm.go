// Package llm generates marketing and sales text through a chat completion API.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"

	"rar-studio/internal/config"
)

// Tools understood by Generate
const (
	ToolMarketingPack   = "marketing_pack"
	ToolSalesReplies    = "sales_replies"
	ToolFunnelHTML      = "funnel_html"
	ToolSalespersonChat = "salesperson_chat"
	ToolSalesPlaybook   = "sales_playbook"
)

var (
	ErrNotConfigured = errors.New("text generation is not configured: OPENAI_API_KEY is not set")
	ErrUnknownTool   = errors.New("unknown generation tool")
)

// Turn is one prior conversation message passed as history
type Turn struct {
	Role    string
	Content string
}

// Request describes one generation
type Request struct {
	Tool     string
	Tone     string
	Audience string
	Brand    string
	Inputs   map[string]string
	History  []Turn
}

// Generator produces text for a Request
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New returns an OpenAI backed generator, or Disabled when no key is configured
func New(cfg config.OpenAIConfig) Generator {
	if cfg.APIKey == "" {
		logrus.Warn("OPENAI_API_KEY is not set, text generation disabled")
		return Disabled{}
	}
	return NewOpenAI(cfg)
}

// Disabled is used when no API key is configured
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}

// OpenAI generates text with the chat completions API
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(cfg config.OpenAIConfig) *OpenAI {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAI{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithRequestTimeout(timeout),
		),
		model: cfg.Model,
	}
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	messages, err := BuildMessages(req)
	if err != nil {
		return "", err
	}

	var params []openai.ChatCompletionMessageParamUnion
	for _, m := range messages {
		switch m.Role {
		case "system":
			params = append(params, openai.SystemMessage(m.Content))
		case "assistant":
			params = append(params, openai.AssistantMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: params,
		Model:    openai.ChatModel(o.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var systemPrompt = template.Must(template.New("system").Parse(
	`You are a human marketer and salesperson for {{.Brand}}. Audience: {{.Audience}}. Tone: {{.Tone}}. ` +
		`Write fast, modern, high-converting copy. Do not sound like AI. No filler.`))

var toolPrompts = map[string]*template.Template{
	ToolMarketingPack: template.Must(template.New(ToolMarketingPack).Parse(
		`Business name: {{index . "business_name"}}
Business type: {{index . "business_type"}}
Offer: {{or (index . "offer") "(not provided)"}}
Location: {{or (index . "location") "(not provided)"}}
Produce: 10 hooks, 6 captions, 3 ad copies with headline and CTA, one DM closer script and a landing page outline.`)),
	ToolSalesReplies: template.Must(template.New(ToolSalesReplies).Parse(
		`A customer wrote: "{{index . "customer_message"}}"
Business type: {{index . "business_type"}}
Offer: {{or (index . "offer") "(not provided)"}}
Location: {{or (index . "location") "(not provided)"}}
Goal: {{or (index . "goal") "book"}}
Write three short replies that move the customer toward the goal.`)),
	ToolFunnelHTML: template.Must(template.New(ToolFunnelHTML).Parse(
		`Write a complete single-file HTML landing page with inline CSS.
Business name: {{index . "business_name"}}
Business type: {{index . "business_type"}}
Offer: {{or (index . "offer") "(not provided)"}}
Location: {{or (index . "location") "(not provided)"}}
Return only HTML.`)),
	ToolSalespersonChat: template.Must(template.New(ToolSalespersonChat).Parse(
		`You are texting a lead on behalf of {{or (index . "biz_name") "the business"}} ({{index . "biz_type"}}).
Offer: {{or (index . "offer") "(not provided)"}}. Location: {{or (index . "location") "(not provided)"}}.
Preferred contact method: {{or (index . "contact_method") "dm"}}. Lead name: {{or (index . "lead_name") "(unknown)"}}.
Reply to the lead's latest message in one or two short sentences and ask one question that moves toward booking.`)),
	ToolSalesPlaybook: template.Must(template.New(ToolSalesPlaybook).Parse(
		`Business type: {{index . "business_type"}}
Offer: {{or (index . "offer") "(not provided)"}}
Write a short sales playbook: opener, three discovery questions, top objections with answers, and a close.`)),
}

// PromptMessage is a rendered chat message before it is mapped to the API types
type PromptMessage struct {
	Role    string
	Content string
}

// BuildMessages renders the system prompt, the tool prompt and any history
func BuildMessages(req Request) ([]PromptMessage, error) {
	tmpl, ok := toolPrompts[strings.ToLower(strings.TrimSpace(req.Tool))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, req.Tool)
	}

	var sys bytes.Buffer
	if err := systemPrompt.Execute(&sys, map[string]string{
		"Brand":    req.Brand,
		"Audience": req.Audience,
		"Tone":     req.Tone,
	}); err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}

	inputs := req.Inputs
	if inputs == nil {
		inputs = map[string]string{}
	}
	var task bytes.Buffer
	if err := tmpl.Execute(&task, inputs); err != nil {
		return nil, fmt.Errorf("failed to render %s prompt: %w", req.Tool, err)
	}

	messages := []PromptMessage{
		{Role: "system", Content: sys.String()},
		{Role: "system", Content: task.String()},
	}
	for _, turn := range req.History {
		messages = append(messages, PromptMessage{Role: turn.Role, Content: turn.Content})
	}
	if len(req.History) == 0 {
		messages = append(messages, PromptMessage{Role: "user", Content: "Go."})
	}
	return messages, nil
}
