package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Options configures a Manager's primary/fallback policy.
type Options struct {
	// Primary designates the backend chosen first for every dispatch. Empty
	// means the first successfully constructed backend becomes primary.
	Primary string

	// Fallbacks is the ordered list of backends tried after the primary
	// fails, when fallback is enabled.
	Fallbacks []string

	// EnableFallback turns the fallback chain on.
	EnableFallback bool
}

// Manager holds the set of configured provider adapters and re-implements
// every capability-contract operation by delegating to the primary and, on
// failure, walking the fallback chain. Each Manager owns its own registry
// and lifecycle; there are no process-wide singletons.
type Manager struct {
	logger zerolog.Logger

	mu        sync.RWMutex
	providers map[string]Provider
	order     []string // insertion order, for diagnostics and listing

	primaryID string
	// explicitPrimary records whether primaryID came from Options rather
	// than first-constructed promotion. AnalyzeCode's code-specialized
	// preference only applies when it did not.
	explicitPrimary bool

	fallbackIDs    []string
	enableFallback bool
}

// NewManager constructs an adapter for every config via the factory. A
// construction failure for one backend is logged and skipped; it never
// aborts construction of the others. If no explicit primary was designated
// (or the designated one failed to construct), the first successfully
// constructed adapter becomes primary.
func NewManager(factory *Factory, configs []*Config, opts Options, logger zerolog.Logger) *Manager {
	m := &Manager{
		logger:         logger.With().Str("component", "llmManager").Logger(),
		providers:      make(map[string]Provider),
		fallbackIDs:    opts.Fallbacks,
		enableFallback: opts.EnableFallback,
	}

	for _, cfg := range configs {
		if _, exists := m.providers[cfg.Provider]; exists {
			m.logger.Warn().Str("provider", cfg.Provider).Msg("Duplicate provider config ignored")
			continue
		}
		p, err := factory.Create(cfg)
		if err != nil {
			m.logger.Warn().Err(err).Str("provider", cfg.Provider).Msg("Failed to construct provider, skipping")
			continue
		}
		m.providers[cfg.Provider] = p
		m.order = append(m.order, cfg.Provider)
	}

	if opts.Primary != "" {
		if _, ok := m.providers[opts.Primary]; ok {
			m.primaryID = opts.Primary
			m.explicitPrimary = true
		} else {
			m.logger.Warn().Str("provider", opts.Primary).Msg("Configured primary not available")
		}
	}
	if m.primaryID == "" && len(m.order) > 0 {
		m.primaryID = m.order[0]
	}

	if m.primaryID == "" {
		m.logger.Warn().Msg("No provider constructed successfully; every operation will fail fast")
	} else {
		m.logger.Info().
			Str("primary", m.primaryID).
			Strs("providers", m.order).
			Bool("fallback", m.enableFallback).
			Msg("Provider manager ready")
	}

	return m
}

// Initialize concurrently initializes every constructed adapter. An
// individual adapter's failure is logged and does not fail the call; the
// adapter stays registered and will fail on first use instead.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.RLock()
	ids := append([]string(nil), m.order...)
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, id := range ids {
		p, ok := m.Provider(id)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(id string, p Provider) {
			defer wg.Done()
			if err := p.Initialize(ctx); err != nil {
				m.logger.Warn().Err(err).Str("provider", id).Msg("Provider initialization failed")
			}
		}(id, p)
	}
	wg.Wait()
}

// Provider returns the adapter registered under id.
func (m *Manager) Provider(id string) (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.providers[id]
	return p, ok
}

// ProviderIDs returns the configured backend ids in insertion order.
func (m *Manager) ProviderIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Primary returns the current primary adapter, or nil when none is
// available.
func (m *Manager) Primary() Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.primaryID == "" {
		return nil
	}
	return m.providers[m.primaryID]
}

// PrimaryID returns the current primary backend id, empty when none.
func (m *Manager) PrimaryID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.primaryID
}

// SetPrimary switches the designated primary to a configured backend.
func (m *Manager) SetPrimary(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[id]; !ok {
		return fmt.Errorf("%w: provider %q not configured", ErrNoProviderAvailable, id)
	}
	m.primaryID = id
	m.explicitPrimary = true
	return nil
}

// ValidateProviders probes every configured adapter sequentially and reports
// per-backend health. Probe failures become false, never errors.
func (m *Manager) ValidateProviders(ctx context.Context) map[string]bool {
	results := make(map[string]bool)
	for _, id := range m.ProviderIDs() {
		p, ok := m.Provider(id)
		if !ok {
			continue
		}
		results[id] = p.ValidateConfig(ctx)
	}
	return results
}

// resolve picks the dispatch target: an explicit backend id takes precedence
// over the primary. It returns the resolved id, or an error when nothing
// resolves.
func (m *Manager) resolve(providerID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if providerID != "" {
		if _, ok := m.providers[providerID]; !ok {
			return "", fmt.Errorf("%w: provider %q not configured", ErrNoProviderAvailable, providerID)
		}
		return providerID, nil
	}
	if m.primaryID == "" {
		return "", ErrNoProviderAvailable
	}
	return m.primaryID, nil
}

// fallbackChain returns the candidates to try after targetID failed:
// the primary first (when it was not the failed target), then the
// configured fallbacks in order. The failed target is never retried.
func (m *Manager) fallbackChain(targetID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var chain []string
	seen := map[string]bool{targetID: true}
	candidates := append([]string{m.primaryID}, m.fallbackIDs...)
	for _, id := range candidates {
		if id == "" || seen[id] {
			continue
		}
		if _, ok := m.providers[id]; !ok {
			continue
		}
		seen[id] = true
		chain = append(chain, id)
	}
	return chain
}

// dispatch invokes call against the resolved target and, on failure, walks
// the fallback chain in fixed order, collecting every error. It succeeds on
// the first adapter that returns without error; when all candidates fail it
// returns an aggregate error carrying every collected message.
func dispatch[T any](ctx context.Context, m *Manager, providerID, op string, call func(context.Context, Provider) (T, error)) (T, error) {
	var zero T

	targetID, err := m.resolve(providerID)
	if err != nil {
		return zero, err
	}
	target, _ := m.Provider(targetID)

	result, err := call(ctx, target)
	if err == nil {
		return result, nil
	}

	m.mu.RLock()
	fallbackOff := !m.enableFallback || len(m.fallbackIDs) == 0
	m.mu.RUnlock()
	if fallbackOff {
		return zero, err
	}

	m.logger.Warn().Err(err).Str("provider", targetID).Str("operation", op).Msg("Provider failed, trying fallback chain")

	var merr *multierror.Error
	merr = multierror.Append(merr, fmt.Errorf("%s: %w", targetID, err))

	for _, id := range m.fallbackChain(targetID) {
		p, ok := m.Provider(id)
		if !ok {
			continue
		}
		result, err = call(ctx, p)
		if err == nil {
			m.logger.Info().Str("provider", id).Str("operation", op).Msg("Fallback provider succeeded")
			return result, nil
		}
		merr = multierror.Append(merr, fmt.Errorf("%s: %w", id, err))
	}

	return zero, fmt.Errorf("all providers failed for %s: %w", op, merr)
}

// GenerateText performs single-shot generation with fallback. providerID may
// be empty to use the primary.
func (m *Manager) GenerateText(ctx context.Context, providerID, prompt, systemPrompt string) (*Response, error) {
	return dispatch(ctx, m, providerID, "generate_text", func(ctx context.Context, p Provider) (*Response, error) {
		return p.GenerateText(ctx, prompt, systemPrompt)
	})
}

// Summarize dispatches a summarization request with fallback.
func (m *Manager) Summarize(ctx context.Context, providerID string, req *SummarizeRequest) (*Response, error) {
	return dispatch(ctx, m, providerID, "summarize", func(ctx context.Context, p Provider) (*Response, error) {
		return p.Summarize(ctx, req)
	})
}

// AnalyzeCode dispatches a code-analysis request with fallback. When no
// explicit backend id is given and no primary was explicitly configured, the
// first configured backend marked code-specialized is preferred.
func (m *Manager) AnalyzeCode(ctx context.Context, providerID string, req *AnalyzeRequest) (*Response, error) {
	if providerID == "" {
		providerID = m.codeProviderID()
	}
	return dispatch(ctx, m, providerID, "analyze_code", func(ctx context.Context, p Provider) (*Response, error) {
		return p.AnalyzeCode(ctx, req)
	})
}

// codeProviderID returns the id of the first configured code-specialized
// backend, or empty for the default primary resolution.
func (m *Manager) codeProviderID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.explicitPrimary {
		return ""
	}
	for _, id := range m.order {
		if Info(id).CodeSpecialized {
			return id
		}
	}
	return ""
}

// GenerateDiagram dispatches a diagram request with fallback.
func (m *Manager) GenerateDiagram(ctx context.Context, providerID string, req *DiagramRequest) (*Response, error) {
	return dispatch(ctx, m, providerID, "generate_diagram", func(ctx context.Context, p Provider) (*Response, error) {
		return p.GenerateDiagram(ctx, req)
	})
}

// GenerateEmbedding dispatches an embedding request. Capability absence on
// one backend is fallback-eligible: a configured fallback with embedding
// support serves the request.
func (m *Manager) GenerateEmbedding(ctx context.Context, providerID, text string) ([]float64, error) {
	return dispatch(ctx, m, providerID, "generate_embedding", func(ctx context.Context, p Provider) ([]float64, error) {
		return p.GenerateEmbedding(ctx, text)
	})
}

// GenerateStream resolves exactly one target adapter and forwards its
// stream. Streaming never participates in the fallback chain: a mid-stream
// failure after partial output would silently duplicate or contradict text
// already delivered to the caller.
func (m *Manager) GenerateStream(ctx context.Context, providerID, prompt, systemPrompt string) (Stream, error) {
	targetID, err := m.resolve(providerID)
	if err != nil {
		return nil, err
	}
	target, _ := m.Provider(targetID)
	return target.GenerateStream(ctx, prompt, systemPrompt)
}

// TokenCount sums every configured adapter's instance counter.
func (m *Manager) TokenCount() int64 {
	var total int64
	for _, id := range m.ProviderIDs() {
		if p, ok := m.Provider(id); ok {
			total += p.TokenCount()
		}
	}
	return total
}

// ResetTokenCount resets every configured adapter's counter.
func (m *Manager) ResetTokenCount() {
	for _, id := range m.ProviderIDs() {
		if p, ok := m.Provider(id); ok {
			p.ResetTokenCount()
		}
	}
}

// ProviderTokenCount reads one backend's counter.
func (m *Manager) ProviderTokenCount(id string) (int64, error) {
	p, ok := m.Provider(id)
	if !ok {
		return 0, fmt.Errorf("%w: provider %q not configured", ErrNoProviderAvailable, id)
	}
	return p.TokenCount(), nil
}

// AvailableModels returns one backend's model list, or, with an empty id,
// every configured backend's models label-prefixed with its display name.
func (m *Manager) AvailableModels(ctx context.Context, providerID string) ([]string, error) {
	if providerID != "" {
		p, ok := m.Provider(providerID)
		if !ok {
			return nil, fmt.Errorf("%w: provider %q not configured", ErrNoProviderAvailable, providerID)
		}
		return p.ModelList(ctx), nil
	}

	var models []string
	for _, id := range m.ProviderIDs() {
		p, ok := m.Provider(id)
		if !ok {
			continue
		}
		display := Info(id).DisplayName
		models = append(models, lo.Map(p.ModelList(ctx), func(model string, _ int) string {
			return display + ": " + model
		})...)
	}
	return models, nil
}
