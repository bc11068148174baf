package provider

import (
	"context"

	"github.com/sells-group/research-engine/internal/resilience"
	"github.com/sells-group/research-engine/pkg/anthropic"
)

// AnthropicAdapter formats requests for the Anthropic messages API.
type AnthropicAdapter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	spec      Spec
}

// NewAnthropicAdapter wraps an Anthropic client.
func NewAnthropicAdapter(client anthropic.Client, modelID string) *AnthropicAdapter {
	return &AnthropicAdapter{client: client, model: modelID, maxTokens: 8192, spec: Specs[NameAnthropic]}
}

func (a *AnthropicAdapter) Name() string { return NameAnthropic }

func (a *AnthropicAdapter) Invoke(ctx context.Context, prompt, system string, opts InvokeOptions) (*InvokeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.spec.Timeout)
	defer cancel()

	maxTokens := a.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = int64(opts.MaxTokens)
	}

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
	})
	if err != nil {
		if status := anthropic.StatusCode(err); status != 0 {
			return nil, resilience.NewProviderError(NameAnthropic, resilience.ClassifyStatus(status), status, err)
		}
		return nil, resilience.NewProviderError(NameAnthropic, resilience.KindOf(err), 0, err)
	}

	return &InvokeResult{
		Text:         resp.Text,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}
