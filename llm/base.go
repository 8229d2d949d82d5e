package llm

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/jatin2507/docdelta/usage"
)

// Base is the resilience wrapper composed by every provider adapter. It owns
// error-classified bounded retry, the instance-scoped token counter, and
// best-effort usage recording. Adapters embed *Base and route every
// generation through Generate.
type Base struct {
	kind     string
	cfg      *Config
	logger   zerolog.Logger
	recorder usage.Recorder

	mu     sync.Mutex
	tokens int64
}

// NewBase creates the shared wrapper for one adapter instance. recorder may
// be nil, in which case usage events are dropped.
func NewBase(kind string, cfg *Config, logger zerolog.Logger, recorder usage.Recorder) *Base {
	if recorder == nil {
		recorder = usage.NopRecorder{}
	}
	return &Base{
		kind:     kind,
		cfg:      cfg,
		logger:   logger.With().Str("component", "llm").Str("provider", kind).Logger(),
		recorder: recorder,
	}
}

// Kind returns the provider kind this wrapper was built for.
func (b *Base) Kind() string { return b.kind }

// Config returns the adapter's immutable configuration.
func (b *Base) Config() *Config { return b.cfg }

// Logger returns the component logger for the adapter.
func (b *Base) Logger() zerolog.Logger { return b.logger }

// Generate runs fn under the per-call timeout and the retry policy, then
// settles token accounting on success. Attempts for a single logical call
// are strictly sequential with strictly doubling backoff; retries re-issue
// the exact same request. When the budget is exhausted the last error is
// returned unchanged.
func (b *Base) Generate(ctx context.Context, op string, fn func(ctx context.Context) (*Response, error)) (*Response, error) {
	var resp *Response
	err := b.retry(ctx, op, func(attemptCtx context.Context) error {
		var callErr error
		resp, callErr = fn(attemptCtx)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	b.settle(ctx, op, resp)
	return resp, nil
}

// retry executes fn up to MaxAttempts times with exponential backoff starting
// at RetryDelay and doubling per attempt. Fatal errors abort immediately.
func (b *Base) retry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.cfg.RetryDelay()
	eb.Multiplier = 2.0
	eb.RandomizationFactor = 0
	eb.MaxInterval = 5 * time.Minute
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(b.cfg.MaxAttempts()-1)), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout())
		defer cancel()

		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		b.logger.Warn().
			Err(err).
			Str("operation", op).
			Int("attempt", attempt).
			Int("status", StatusFromError(err)).
			Msg("Retryable provider error")
		return err
	}, policy)
}

// settle adds the call's tokens to the instance counter and appends a usage
// record. Recorder failures are logged and dropped; accounting never fails
// the generation call.
func (b *Base) settle(ctx context.Context, op string, resp *Response) {
	if resp == nil {
		return
	}

	total := resp.Usage.Total()
	if total == 0 {
		total = int64(b.EstimateTokens(resp.Text))
	}
	b.AddTokens(total)

	rec := &usage.Record{
		Provider:    b.kind,
		Model:       resp.Model,
		Operation:   op,
		TotalTokens: total,
		Cost:        EstimateCost(b.kind, resp.Model, resp.Usage),
		CreatedAt:   time.Now(),
	}
	if resp.Usage != nil {
		rec.PromptTokens = resp.Usage.PromptTokens
		rec.CompletionTokens = resp.Usage.CompletionTokens
	}

	if err := b.recorder.Record(ctx, rec); err != nil {
		b.logger.Warn().Err(err).Str("operation", op).Msg("Failed to record usage")
	}
}

// EstimateTokens approximates the token count of text. Roughly four
// characters per token, which is close enough for budgeting.
func (b *Base) EstimateTokens(text string) int {
	return len(text) / 4
}

// AddTokens adds n to the instance-scoped counter. Adapters call it for
// streams whose final event reports usage.
func (b *Base) AddTokens(n int64) {
	if n <= 0 {
		return
	}
	b.mu.Lock()
	b.tokens += n
	b.mu.Unlock()
}

// TokenCount reads the instance-scoped cumulative counter.
func (b *Base) TokenCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens
}

// ResetTokenCount resets the instance-scoped counter to zero.
func (b *Base) ResetTokenCount() {
	b.mu.Lock()
	b.tokens = 0
	b.mu.Unlock()
}
