package provider

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/research-engine/internal/model"
	"github.com/sells-group/research-engine/internal/resilience"
	"github.com/sells-group/research-engine/pkg/openai"
)

// OpenAIAdapter formats requests for the OpenAI chat API.
type OpenAIAdapter struct {
	client openai.Client
	model  string
	spec   Spec
}

// NewOpenAIAdapter wraps an OpenAI client.
func NewOpenAIAdapter(client openai.Client, modelID string) *OpenAIAdapter {
	return &OpenAIAdapter{client: client, model: modelID, spec: Specs[NameOpenAI]}
}

func (a *OpenAIAdapter) Name() string { return NameOpenAI }

func (a *OpenAIAdapter) Invoke(ctx context.Context, prompt, system string, opts InvokeOptions) (*InvokeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.spec.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = &opts.MaxTokens
	}
	if system != "" {
		req.Messages = append(req.Messages, openai.Message{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, openai.Message{Role: "user", Content: prompt})

	resp, err := a.client.ChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, resilience.NewProviderError(NameOpenAI, resilience.ClassifyStatus(apiErr.StatusCode), apiErr.StatusCode, err)
		}
		return nil, resilience.NewProviderError(NameOpenAI, resilience.KindOf(err), 0, err)
	}
	if len(resp.Choices) == 0 {
		return nil, resilience.NewProviderError(NameOpenAI, model.ErrorKindOther, 0, eris.New("openai: empty choices"))
	}

	return &InvokeResult{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}, nil
}
