package provider

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/research-engine/internal/model"
	"github.com/sells-group/research-engine/internal/resilience"
	"github.com/sells-group/research-engine/pkg/gemini"
)

// GeminiAdapter formats requests for the Gemini generateContent API.
type GeminiAdapter struct {
	client gemini.Client
	model  string
	spec   Spec
}

// NewGeminiAdapter wraps a Gemini client.
func NewGeminiAdapter(client gemini.Client, modelID string) *GeminiAdapter {
	return &GeminiAdapter{client: client, model: modelID, spec: Specs[NameGemini]}
}

func (a *GeminiAdapter) Name() string { return NameGemini }

func (a *GeminiAdapter) Invoke(ctx context.Context, prompt, system string, opts InvokeOptions) (*InvokeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.spec.Timeout)
	defer cancel()

	req := gemini.GenerateContentRequest{
		Model:    a.model,
		Contents: []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}}}},
	}
	if system != "" {
		req.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: system}}}
	}
	if opts.Temperature != nil || opts.MaxTokens > 0 {
		cfg := &gemini.GenerationConfig{Temperature: opts.Temperature}
		if opts.MaxTokens > 0 {
			cfg.MaxOutputTokens = &opts.MaxTokens
		}
		req.GenerationConfig = cfg
	}

	resp, err := a.client.GenerateContent(ctx, req)
	if err != nil {
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) {
			return nil, resilience.NewProviderError(NameGemini, resilience.ClassifyStatus(apiErr.StatusCode), apiErr.StatusCode, err)
		}
		return nil, resilience.NewProviderError(NameGemini, resilience.KindOf(err), 0, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, resilience.NewProviderError(NameGemini, model.ErrorKindOther, 0, eris.New("gemini: empty candidates"))
	}

	result := &InvokeResult{Text: text}
	if resp.UsageMetadata != nil {
		result.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		result.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}
