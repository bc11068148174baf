// Package provider defines the uniform adapter interface over the external
// model providers, plus the registry and per-provider configuration records.
package provider

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// Known provider names. The set is a closed enumeration; the orchestrator
// iterates it positionally when building aggregate responses.
const (
	NameOpenAI     = "openai"
	NameAnthropic  = "anthropic"
	NameGemini     = "gemini"
	NamePerplexity = "perplexity"
)

// Names lists every known provider in canonical order.
var Names = []string{NameOpenAI, NameAnthropic, NameGemini, NamePerplexity}

// Known reports whether name is a known provider.
func Known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// InvokeOptions tunes a single provider call.
type InvokeOptions struct {
	Temperature *float64
	MaxTokens   int
}

// InvokeResult is the successful outcome of a provider call.
type InvokeResult struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Adapter is the uniform capability every provider exposes: format the
// provider-specific request, apply auth, enforce the per-provider timeout
// and classify transport failures. Adapters never substitute synthetic
// content for a failure; callers decide fallback behavior.
type Adapter interface {
	Name() string
	Invoke(ctx context.Context, prompt, system string, opts InvokeOptions) (*InvokeResult, error)
}

// Spec is the static configuration record for one provider: credential
// format, call timeout and display name for user-facing fallback text.
type Spec struct {
	Name        string
	DisplayName string
	KeyPrefix   string
	MinKeyLen   int
	Timeout     time.Duration
}

// Specs holds the per-provider configuration records. Perplexity runs the
// deep-research model and is allowed up to ten minutes per call.
var Specs = map[string]Spec{
	NameOpenAI:     {Name: NameOpenAI, DisplayName: "OpenAI", KeyPrefix: "sk-", MinKeyLen: 40, Timeout: 120 * time.Second},
	NameAnthropic:  {Name: NameAnthropic, DisplayName: "Anthropic", KeyPrefix: "sk-ant-", MinKeyLen: 40, Timeout: 120 * time.Second},
	NameGemini:     {Name: NameGemini, DisplayName: "Gemini", KeyPrefix: "AIza", MinKeyLen: 30, Timeout: 60 * time.Second},
	NamePerplexity: {Name: NamePerplexity, DisplayName: "Perplexity", KeyPrefix: "pplx-", MinKeyLen: 40, Timeout: 600 * time.Second},
}

// ValidateCredential checks a credential for presence and the provider's
// required format before any call is attempted.
func ValidateCredential(name, key string) error {
	spec, ok := Specs[name]
	if !ok {
		return eris.Errorf("provider: unknown provider %q", name)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return eris.Errorf("provider: %s credential is missing", name)
	}
	if spec.KeyPrefix != "" && !strings.HasPrefix(key, spec.KeyPrefix) {
		return eris.Errorf("provider: %s credential must start with %q", name, spec.KeyPrefix)
	}
	if len(key) < spec.MinKeyLen {
		return eris.Errorf("provider: %s credential is too short", name)
	}
	return nil
}

// Registry holds the configured adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter to the registry.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Get returns an adapter by name, or nil if not registered.
func (r *Registry) Get(name string) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[name]
}

// List returns all registered adapter names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
