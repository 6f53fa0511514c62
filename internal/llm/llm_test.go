package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rar-studio/internal/config"
)

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	gen := New(config.OpenAIConfig{})
	_, ok := gen.(Disabled)
	require.True(t, ok)

	_, err := gen.Generate(context.Background(), Request{Tool: ToolMarketingPack})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, ok = New(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4.1-mini"}).(*OpenAI)
	assert.True(t, ok)
}

func TestBuildMessages(t *testing.T) {
	msgs, err := BuildMessages(Request{
		Tool:     ToolSalespersonChat,
		Tone:     "friendly",
		Audience: "small business",
		Brand:    "RAR AI Studio",
		Inputs:   map[string]string{"biz_name": "Acme Plumbing", "biz_type": "plumber"},
		History: []Turn{
			{Role: "user", Content: "how much for a leak?"},
		},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "RAR AI Studio")
	assert.Contains(t, msgs[0].Content, "friendly")
	assert.Contains(t, msgs[1].Content, "Acme Plumbing")
	assert.Contains(t, msgs[1].Content, "Offer: (not provided)")
	assert.Equal(t, Turn{Role: "user", Content: "how much for a leak?"}, Turn{Role: msgs[2].Role, Content: msgs[2].Content})

	msgs, err = BuildMessages(Request{Tool: "FUNNEL_HTML", Inputs: map[string]string{"business_name": "Acme"}})
	require.NoError(t, err)
	assert.Equal(t, "user", msgs[len(msgs)-1].Role)

	_, err = BuildMessages(Request{Tool: "poetry"})
	assert.ErrorIs(t, err, ErrUnknownTool)
}
