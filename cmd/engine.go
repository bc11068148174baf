package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/research-engine/internal/config"
	"github.com/sells-group/research-engine/internal/orchestrator"
	"github.com/sells-group/research-engine/internal/provider"
	"github.com/sells-group/research-engine/internal/redact"
	"github.com/sells-group/research-engine/internal/resilience"
	"github.com/sells-group/research-engine/internal/session"
	"github.com/sells-group/research-engine/internal/store"
	"github.com/sells-group/research-engine/pkg/anthropic"
	"github.com/sells-group/research-engine/pkg/gemini"
	"github.com/sells-group/research-engine/pkg/openai"
	"github.com/sells-group/research-engine/pkg/perplexity"
)

// engineEnv bundles the wired subsystems a command needs.
type engineEnv struct {
	Store    store.SessionStore
	Sessions *session.Manager
	Orch     *orchestrator.Orchestrator
}

func (e *engineEnv) Close() {
	_ = e.Store.Close()
}

func initStore(ctx context.Context) (store.SessionStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func initRegistry() *provider.Registry {
	reg := provider.NewRegistry()
	reg.Register(provider.NewOpenAIAdapter(
		openai.NewClient(cfg.OpenAI.Key, openai.WithModel(cfg.OpenAI.Model)), cfg.OpenAI.Model))
	reg.Register(provider.NewAnthropicAdapter(
		anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model))
	reg.Register(provider.NewGeminiAdapter(
		gemini.NewClient(cfg.Gemini.Key, gemini.WithModel(cfg.Gemini.Model)), cfg.Gemini.Model))
	reg.Register(provider.NewPerplexityAdapter(
		perplexity.NewClient(cfg.Perplexity.Key, perplexity.WithModel(cfg.Perplexity.Model)), cfg.Perplexity.Model))
	return reg
}

func initEngine(ctx context.Context) (*engineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(st)

	terms := redact.DefaultTermList()
	if cfg.Redact.TermsPath != "" {
		terms, err = redact.LoadTermList(cfg.Redact.TermsPath)
		if err != nil {
			st.Close()
			return nil, err
		}
	}

	opts := []orchestrator.Option{
		orchestrator.WithCredentials(cfg.ProviderKeys()),
		orchestrator.WithSessions(sessions),
		orchestrator.WithMasker(redact.NewMasker(terms)),
		orchestrator.WithDomainChecker(redact.NewDomainChecker(redact.WithLiveProbe(cfg.Redact.LiveProbe))),
		orchestrator.WithProfileProvider(cfg.Leads.ProfileProvider),
		orchestrator.WithBackgroundVerification(cfg.Redact.Verify),
		orchestrator.WithRetryConfig(resilience.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Retry.BaseDelaySecs) * time.Second,
		}),
	}
	for _, name := range provider.Names {
		pc := providerConfig(name)
		if pc.RPS > 0 {
			burst := pc.Burst
			if burst <= 0 {
				burst = 1
			}
			opts = append(opts, orchestrator.WithRateLimiter(name, provider.NewRateLimiter(pc.RPS, burst)))
		}
	}

	return &engineEnv{
		Store:    st,
		Sessions: sessions,
		Orch:     orchestrator.New(initRegistry(), opts...),
	}, nil
}

func providerConfig(name string) config.ProviderConfig {
	switch name {
	case provider.NameOpenAI:
		return cfg.OpenAI
	case provider.NameAnthropic:
		return cfg.Anthropic
	case provider.NameGemini:
		return cfg.Gemini
	case provider.NamePerplexity:
		return cfg.Perplexity
	default:
		return config.ProviderConfig{}
	}
}
