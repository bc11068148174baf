package provider

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/research-engine/internal/model"
	"github.com/sells-group/research-engine/internal/resilience"
	"github.com/sells-group/research-engine/pkg/perplexity"
)

// PerplexityAdapter formats requests for the Perplexity chat API. This is
// the search-augmented, deep-research style provider; its timeout allowance
// is far larger than the chat-style providers.
type PerplexityAdapter struct {
	client perplexity.Client
	model  string
	spec   Spec
}

// NewPerplexityAdapter wraps a Perplexity client.
func NewPerplexityAdapter(client perplexity.Client, modelID string) *PerplexityAdapter {
	return &PerplexityAdapter{client: client, model: modelID, spec: Specs[NamePerplexity]}
}

func (a *PerplexityAdapter) Name() string { return NamePerplexity }

func (a *PerplexityAdapter) Invoke(ctx context.Context, prompt, system string, opts InvokeOptions) (*InvokeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.spec.Timeout)
	defer cancel()

	req := perplexity.ChatCompletionRequest{
		Model:       a.model,
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = &opts.MaxTokens
	}
	if system != "" {
		req.Messages = append(req.Messages, perplexity.Message{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, perplexity.Message{Role: "user", Content: prompt})

	resp, err := a.client.ChatCompletion(ctx, req)
	if err != nil {
		var apiErr *perplexity.APIError
		if errors.As(err, &apiErr) {
			return nil, resilience.NewProviderError(NamePerplexity, resilience.ClassifyStatus(apiErr.StatusCode), apiErr.StatusCode, err)
		}
		return nil, resilience.NewProviderError(NamePerplexity, resilience.KindOf(err), 0, err)
	}
	if len(resp.Choices) == 0 {
		return nil, resilience.NewProviderError(NamePerplexity, model.ErrorKindOther, 0, eris.New("perplexity: empty choices"))
	}

	return &InvokeResult{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}, nil
}
