// Package orchestrator fans a research request out to every eligible
// provider, collects the settled results and merges them into a single
// aggregate response. The aggregate call never fails because one provider
// is mis-configured or unavailable.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/research-engine/internal/leads"
	"github.com/sells-group/research-engine/internal/model"
	"github.com/sells-group/research-engine/internal/promptbuild"
	"github.com/sells-group/research-engine/internal/provider"
	"github.com/sells-group/research-engine/internal/redact"
	"github.com/sells-group/research-engine/internal/resilience"
	"github.com/sells-group/research-engine/internal/session"
)

// Orchestrator is the fan-out/fan-in controller. One per process.
type Orchestrator struct {
	registry    *provider.Registry
	builder     *promptbuild.Builder
	masker      *redact.Masker
	domains     *redact.DomainChecker
	leads       *leads.Pipeline
	sessions    *session.Manager
	credentials map[string]string
	retry       resilience.RetryConfig
	breakers    map[string]*resilience.CircuitBreaker
	limiters    map[string]*provider.RateLimiter
	invokeOpts  provider.InvokeOptions

	profileProvider string

	verify       bool
	onVerifyDone func()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCredentials supplies the provider credential map used for
// eligibility checks. Keys are provider names.
func WithCredentials(creds map[string]string) Option {
	return func(o *Orchestrator) { o.credentials = creds }
}

// WithRetryConfig overrides the default retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(o *Orchestrator) { o.retry = cfg }
}

// WithRateLimiter throttles one provider's dispatch rate.
func WithRateLimiter(name string, rl *provider.RateLimiter) Option {
	return func(o *Orchestrator) { o.limiters[name] = rl }
}

// WithDomainChecker replaces the default domain checker.
func WithDomainChecker(dc *redact.DomainChecker) Option {
	return func(o *Orchestrator) { o.domains = dc }
}

// WithMasker replaces the default masker.
func WithMasker(m *redact.Masker) Option {
	return func(o *Orchestrator) { o.masker = m }
}

// WithProfileProvider sets the designated phase-1 provider for the
// sales-opportunities pipeline.
func WithProfileProvider(name string) Option {
	return func(o *Orchestrator) { o.profileProvider = name }
}

// WithSessions attaches the session manager backing SubmitBatch.
func WithSessions(m *session.Manager) Option {
	return func(o *Orchestrator) { o.sessions = m }
}

// WithBackgroundVerification toggles the advisory post-aggregation
// verification pass.
func WithBackgroundVerification(on bool) Option {
	return func(o *Orchestrator) { o.verify = on }
}

// WithInvokeOptions sets the per-call generation options.
func WithInvokeOptions(opts provider.InvokeOptions) Option {
	return func(o *Orchestrator) { o.invokeOpts = opts }
}

// New creates an Orchestrator over the given adapter registry.
func New(reg *provider.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:    reg,
		builder:     promptbuild.New(),
		masker:      redact.NewMasker(redact.DefaultTermList()),
		domains:     redact.NewDomainChecker(),
		credentials: map[string]string{},
		retry:       resilience.DefaultRetryConfig(),
		breakers:    make(map[string]*resilience.CircuitBreaker, len(provider.Names)),
		limiters:    make(map[string]*provider.RateLimiter, len(provider.Names)),
	}
	for _, opt := range opts {
		opt(o)
	}
	for _, name := range provider.Names {
		o.breakers[name] = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			OnStateChange: breakerLogger(name),
		})
	}
	leadOpts := []leads.Option{
		leads.WithCredentialGate(func(name string) error {
			return provider.ValidateCredential(name, o.credentials[name])
		}),
	}
	if o.profileProvider != "" {
		leadOpts = append(leadOpts, leads.WithProfileProvider(o.profileProvider))
	}
	o.leads = leads.NewPipeline(reg, o.builder, leadOpts...)
	return o
}

// Submit runs one research request end to end and returns a structurally
// complete aggregate response. Only malformed requests fail hard.
func (o *Orchestrator) Submit(ctx context.Context, req *model.ResearchRequest) (*model.AggregateResponse, error) {
	resp, _, err := o.submit(ctx, req)
	return resp, err
}

// SubmitBatch runs one batch of a session-backed job: it merges session
// context into the request, dispatches it and durably records the batch.
// A store failure is a hard error; batch continuity must not be lost
// silently.
func (o *Orchestrator) SubmitBatch(ctx context.Context, sessionID string, batchIndex int, req *model.ResearchRequest) (*model.AggregateResponse, error) {
	if o.sessions == nil {
		return nil, eris.New("orchestrator: no session manager configured")
	}
	sess, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != model.SessionActive {
		return nil, eris.Errorf("orchestrator: session is %s", sess.Status)
	}

	r := *req
	r.SessionID = sessionID
	r.BatchIndex = batchIndex
	if r.Query == "" {
		r.Query = sess.Prompt
	}
	if batchIndex > 0 {
		r.IsContinuation = true
		if r.PreviousResult == "" {
			r.PreviousResult = sess.PreviousResults
		}
	}
	if r.UploadFilename == "" {
		r.UploadFilename = sess.File.Name
	}

	resp, results, err := o.submit(ctx, &r)
	if err != nil {
		return nil, err
	}

	texts := make(map[string]string, len(results))
	for name, res := range results {
		if !res.Failed() {
			texts[name] = res.Text
		}
	}
	if _, err := o.sessions.StoreBatch(ctx, sessionID, batchIndex, texts, r.Instructions); err != nil {
		return nil, err
	}
	return resp, nil
}

func (o *Orchestrator) submit(ctx context.Context, req *model.ResearchRequest) (*model.AggregateResponse, map[string]model.ProviderResult, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	names := req.EnabledProviders()
	if !anyKnown(names) {
		return nil, nil, eris.Errorf("orchestrator: no known provider enabled (got %v)", names)
	}
	start := time.Now()

	resp := &model.AggregateResponse{
		Results: make(map[string]*string, len(provider.Names)),
		Errors:  make(map[string]string),
	}
	for _, name := range provider.Names {
		resp.Results[name] = nil
	}

	// Eligibility: a selected provider with a bad credential gets inline
	// guidance text and is never dispatched.
	var eligible []string
	for _, name := range names {
		if !provider.Known(name) {
			zap.L().Warn("orchestrator: unknown provider selected", zap.String("provider", name))
			continue
		}
		if err := provider.ValidateCredential(name, o.credentials[name]); err != nil {
			zap.L().Info("orchestrator: provider not configured",
				zap.String("provider", name),
				zap.Error(err))
			text := configRequiredText(name)
			resp.Results[name] = &text
			continue
		}
		eligible = append(eligible, name)
	}

	var results map[string]model.ProviderResult
	if req.Category == model.CategorySalesOpportunities {
		r := *req
		r.Providers = make(map[string]bool, len(eligible))
		for _, name := range eligible {
			r.Providers[name] = true
		}
		results = o.leads.Run(ctx, &r, o.dispatch)
	} else {
		results = o.fanOut(ctx, eligible, req)
	}

	succeeded := 0
	var notes []model.ValidationNote
	for name, res := range results {
		if res.Failed() {
			text := failureText(name, res.ErrKind)
			resp.Results[name] = &text
			resp.Errors[name] = res.ErrDetail
			continue
		}

		masked := o.masker.Mask(res.Text)
		for _, phrase := range o.masker.Violations(masked) {
			notes = append(notes, model.ValidationNote{
				Provider: name,
				Kind:     "masking_violation",
				Detail:   phrase,
			})
		}
		for _, dc := range o.domains.Check(ctx, masked) {
			if !dc.Verified {
				notes = append(notes, model.ValidationNote{
					Provider: name,
					Kind:     "suspect_domain",
					Detail:   dc.Domain + ": " + dc.Reason,
				})
			}
		}

		resp.Results[name] = &masked
		succeeded++

		zap.L().Info("orchestrator: provider result",
			zap.String("provider", name),
			zap.Duration("latency", res.Latency),
			zap.Int64("input_tokens", res.InputTokens),
			zap.Int64("output_tokens", res.OutputTokens))
	}

	resp.Notes = notes
	resp.Meta = model.ResponseMeta{
		ProcessingTime:     time.Since(start),
		ProvidersAttempted: len(results),
		Confidence:         confidence(succeeded, len(results), len(notes)),
	}

	if o.verify {
		o.backgroundVerify(results)
	}
	return resp, results, nil
}

// fanOut dispatches every eligible provider concurrently. A failure in one
// pipeline never cancels the others; the map holds one settled result per
// dispatched provider.
func (o *Orchestrator) fanOut(ctx context.Context, names []string, req *model.ResearchRequest) map[string]model.ProviderResult {
	var mu sync.Mutex
	out := make(map[string]model.ProviderResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			res := o.dispatch(gctx, name, o.builder.BuildFor(name, req))
			mu.Lock()
			out[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// dispatch runs the full single-provider pipeline: rate limit, circuit
// breaker, retry, invoke. It always returns a settled result.
func (o *Orchestrator) dispatch(ctx context.Context, name string, out promptbuild.Output) model.ProviderResult {
	start := time.Now()

	adapter := o.registry.Get(name)
	if adapter == nil {
		return model.ProviderResult{
			Provider:  name,
			ErrKind:   model.ErrorKindOther,
			ErrDetail: "provider not registered",
			Latency:   time.Since(start),
		}
	}

	if err := o.limiters[name].Wait(ctx); err != nil {
		return model.ProviderResult{
			Provider:  name,
			ErrKind:   resilience.KindOf(err),
			ErrDetail: err.Error(),
			Latency:   time.Since(start),
		}
	}

	cfg := o.retry
	cfg.OnRetry = resilience.RetryLogger(name)

	res, err := resilience.ExecuteVal(ctx, o.breakers[name], func(ctx context.Context) (*provider.InvokeResult, error) {
		return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*provider.InvokeResult, error) {
			return adapter.Invoke(ctx, out.Prompt, out.System, o.invokeOpts)
		})
	})
	latency := time.Since(start)
	if err != nil {
		kind := resilience.KindOf(err)
		zap.L().Warn("orchestrator: provider call failed",
			zap.String("provider", name),
			zap.String("kind", string(kind)),
			zap.Duration("latency", latency),
			zap.Error(err))
		return model.ProviderResult{
			Provider:  name,
			ErrKind:   kind,
			ErrDetail: err.Error(),
			Latency:   latency,
		}
	}

	return model.ProviderResult{
		Provider:     name,
		Text:         res.Text,
		Latency:      latency,
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
	}
}

// anyKnown reports whether at least one name is a known provider.
func anyKnown(names []string) bool {
	for _, name := range names {
		if provider.Known(name) {
			return true
		}
	}
	return false
}

// confidence scores an aggregate: the success ratio, discounted by
// validation notes.
func confidence(succeeded, attempted, notes int) float64 {
	if attempted == 0 {
		return 0
	}
	conf := float64(succeeded) / float64(attempted)
	penalty := 0.05 * float64(notes)
	if penalty > 0.5 {
		penalty = 0.5
	}
	return conf * (1 - penalty)
}

func breakerLogger(name string) func(from, to resilience.CircuitState) {
	return func(from, to resilience.CircuitState) {
		zap.L().Warn("orchestrator: circuit state changed",
			zap.String("provider", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}
}
