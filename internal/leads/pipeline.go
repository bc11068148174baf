package leads

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/research-engine/internal/model"
	"github.com/sells-group/research-engine/internal/promptbuild"
	"github.com/sells-group/research-engine/internal/provider"
)

// DefaultProfileProvider is the designated phase-1 provider when none is
// configured.
const DefaultProfileProvider = provider.NameAnthropic

// profileMaxTokens bounds the phase-1 extraction call. Profiles are small
// structured objects.
const profileMaxTokens = 2048

// DispatchFunc runs the full single-provider pipeline for one prompt pair
// and returns the settled result. Supplied by the orchestrator so phase 2
// goes through the same retry and redaction path as direct research.
type DispatchFunc func(ctx context.Context, providerName string, out promptbuild.Output) model.ProviderResult

// Pipeline is the two-phase sales-opportunities flow.
type Pipeline struct {
	registry        *provider.Registry
	builder         *promptbuild.Builder
	profileProvider string
	credentialGate  func(name string) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProfileProvider sets the provider that performs phase-1 profile
// extraction.
func WithProfileProvider(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.profileProvider = name
		}
	}
}

// WithCredentialGate installs a check consulted before the phase-1 call.
// A gate error means the designated provider is unusable; the profile is
// synthesized without any network call.
func WithCredentialGate(gate func(name string) error) Option {
	return func(p *Pipeline) {
		p.credentialGate = gate
	}
}

// NewPipeline creates a Pipeline over the given adapter registry.
func NewPipeline(reg *provider.Registry, builder *promptbuild.Builder, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:        reg,
		builder:         builder,
		profileProvider: DefaultProfileProvider,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes both phases and returns the settled per-provider results.
// Phase 2 never starts before phase 1 settles; phase-2 calls run
// concurrently and independently of each other.
func (p *Pipeline) Run(ctx context.Context, req *model.ResearchRequest, dispatch DispatchFunc) map[string]model.ProviderResult {
	profile := p.Profile(ctx, req)
	block := ProfileBlock(profile)

	var mu sync.Mutex
	results := make(map[string]model.ProviderResult)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range req.EnabledProviders() {
		g.Go(func() error {
			out := p.builder.BuildFor(name, req)
			out.Prompt += block
			res := dispatch(gctx, name, out)
			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Profile runs phase 1: exactly one call to the designated provider. Any
// failure, from a missing adapter to unparseable output, degrades to a
// profile synthesized from the request. Phase 1 never hard-fails.
func (p *Pipeline) Profile(ctx context.Context, req *model.ResearchRequest) *model.LeadProfile {
	if p.credentialGate != nil {
		if err := p.credentialGate(p.profileProvider); err != nil {
			zap.L().Warn("leads: profile provider not configured, synthesizing profile",
				zap.String("provider", p.profileProvider),
				zap.Error(err))
			return SynthesizeProfile(req)
		}
	}

	adapter := p.registry.Get(p.profileProvider)
	if adapter == nil {
		zap.L().Warn("leads: profile provider not registered, synthesizing profile",
			zap.String("provider", p.profileProvider))
		return SynthesizeProfile(req)
	}

	res, err := adapter.Invoke(ctx, ProfilePrompt(req), profileSystem, provider.InvokeOptions{MaxTokens: profileMaxTokens})
	if err != nil {
		zap.L().Warn("leads: profile extraction failed, synthesizing profile",
			zap.String("provider", p.profileProvider),
			zap.Error(err))
		return SynthesizeProfile(req)
	}

	profile, err := ParseProfile(res.Text)
	if err != nil {
		zap.L().Warn("leads: profile output unparseable, synthesizing profile",
			zap.String("provider", p.profileProvider),
			zap.Error(err))
		return SynthesizeProfile(req)
	}
	return profile
}
