// Package ollama implements the llm.Provider contract for a locally hosted
// Ollama daemon. No API key is required; the daemon address comes from the
// config, the OLLAMA_HOST environment variable, or the default localhost
// port.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/jatin2507/docdelta/llm"
	"github.com/jatin2507/docdelta/usage"
)

const (
	defaultHost           = "http://localhost:11434"
	defaultEmbeddingModel = "mxbai-embed-large"
)

// staticModels is the fallback listing when the daemon is unreachable and no
// model is configured.
var staticModels = []string{
	"llama3.2",
	"mistral",
	"qwen2.5-coder",
}

// Adapter implements llm.Provider against the Ollama API.
type Adapter struct {
	*llm.Base

	mu     sync.Mutex
	client *api.Client
}

// New constructs an Adapter. The client is created lazily by Initialize.
func New(cfg *llm.Config, logger zerolog.Logger, recorder usage.Recorder) (llm.Provider, error) {
	return &Adapter{
		Base: llm.NewBase(llm.ProviderOllama, cfg, logger, recorder),
	}, nil
}

// Initialize establishes the daemon client. Idempotent. A missing model is
// the one configuration Ollama cannot default for us.
func (a *Adapter) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return nil
	}

	if a.model() == "" {
		return llm.NewConfigurationError(llm.ProviderOllama, "ollama model not configured")
	}

	host := a.Config().Host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultHost
	}

	baseURL, err := parseHost(host)
	if err != nil {
		return llm.NewConfigurationError(llm.ProviderOllama, fmt.Sprintf("invalid ollama host %q", host))
	}

	a.client = api.NewClient(baseURL, &http.Client{})
	return nil
}

// parseHost parses a host string into a URL, defaulting the scheme to http.
func parseHost(host string) (*url.URL, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

func (a *Adapter) ensureClient(ctx context.Context) (*api.Client, error) {
	if err := a.Initialize(ctx); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.client, nil
}

func (a *Adapter) model() string {
	if a.Config().Model != "" {
		return a.Config().Model
	}
	return os.Getenv("OLLAMA_MODEL")
}

// chatRequest assembles the request from the config's generation parameters.
func (a *Adapter) chatRequest(prompt, systemPrompt string, stream bool) *api.ChatRequest {
	cfg := a.Config()

	var messages []api.Message
	if systemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, api.Message{Role: "user", Content: prompt})

	req := &api.ChatRequest{
		Model:    a.model(),
		Messages: messages,
		Stream:   &stream,
		Options:  make(map[string]interface{}),
	}
	if cfg.MaxTokens > 0 {
		req.Options["num_predict"] = int(cfg.MaxTokens)
	}
	if cfg.Temperature != nil {
		req.Options["temperature"] = *cfg.Temperature
	}
	if cfg.TopP != nil {
		req.Options["top_p"] = *cfg.TopP
	}
	if cfg.TopK != nil {
		req.Options["top_k"] = *cfg.TopK
	}
	if len(cfg.StopSequences) > 0 {
		req.Options["stop"] = cfg.StopSequences
	}
	return req
}

func (a *Adapter) generate(ctx context.Context, op, prompt, systemPrompt string) (*llm.Response, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	req := a.chatRequest(prompt, systemPrompt, false)
	return a.Generate(ctx, op, func(ctx context.Context) (*llm.Response, error) {
		var chatResp api.ChatResponse
		err := client.Chat(ctx, req, func(resp api.ChatResponse) error {
			chatResp = resp
			return nil
		})
		if err != nil {
			return nil, convertError(err)
		}

		resp := &llm.Response{
			Text:       chatResp.Message.Content,
			Model:      a.model(),
			Usage:      &llm.Usage{},
			StopReason: "stop",
		}
		if chatResp.PromptEvalCount > 0 {
			resp.Usage.PromptTokens = int64(chatResp.PromptEvalCount)
		}
		if chatResp.EvalCount > 0 {
			resp.Usage.CompletionTokens = int64(chatResp.EvalCount)
		}
		resp.Usage.TotalTokens = resp.Usage.PromptTokens + resp.Usage.CompletionTokens
		return resp, nil
	})
}

// GenerateText implements llm.Provider.
func (a *Adapter) GenerateText(ctx context.Context, prompt, systemPrompt string) (*llm.Response, error) {
	return a.generate(ctx, "generate_text", prompt, systemPrompt)
}

// Summarize implements llm.Provider.
func (a *Adapter) Summarize(ctx context.Context, req *llm.SummarizeRequest) (*llm.Response, error) {
	prompt, system := llm.BuildSummarizePrompt(req)
	return a.generate(ctx, "summarize", prompt, system)
}

// AnalyzeCode implements llm.Provider.
func (a *Adapter) AnalyzeCode(ctx context.Context, req *llm.AnalyzeRequest) (*llm.Response, error) {
	prompt, system := llm.BuildAnalyzePrompt(req)
	return a.generate(ctx, "analyze_code", prompt, system)
}

// GenerateDiagram implements llm.Provider.
func (a *Adapter) GenerateDiagram(ctx context.Context, req *llm.DiagramRequest) (*llm.Response, error) {
	prompt, system := llm.BuildDiagramPrompt(req)
	return a.generate(ctx, "generate_diagram", prompt, system)
}

// GenerateEmbedding implements llm.Provider using the daemon's embed API.
func (a *Adapter) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.Embed(ctx, &api.EmbedRequest{
		Model: defaultEmbeddingModel,
		Input: text,
	})
	if err != nil {
		return nil, convertError(err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, llm.NewProviderError(llm.ProviderOllama, "no embedding in response", nil)
	}

	vector := make([]float64, len(resp.Embeddings[0]))
	for i, v := range resp.Embeddings[0] {
		vector[i] = float64(v)
	}
	return vector, nil
}

// GenerateStream implements llm.Provider.
func (a *Adapter) GenerateStream(ctx context.Context, prompt, systemPrompt string) (llm.Stream, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	return newStream(ctx, a, client, a.chatRequest(prompt, systemPrompt, true)), nil
}

// ValidateConfig implements llm.Provider: the daemon heartbeat is the
// cheapest liveness probe.
func (a *Adapter) ValidateConfig(ctx context.Context) bool {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return false
	}
	if err := client.Heartbeat(ctx); err != nil {
		log := a.Logger()
		log.Debug().Err(err).Msg("Validation probe failed")
		return false
	}
	return true
}

// ModelList implements llm.Provider: live listing of locally pulled models,
// falling back to the configured model, then a static list, so the result is
// never empty.
func (a *Adapter) ModelList(ctx context.Context) []string {
	fallback := []string{a.model()}
	if fallback[0] == "" {
		fallback = append([]string(nil), staticModels...)
	}

	client, err := a.ensureClient(ctx)
	if err != nil {
		return fallback
	}
	resp, err := client.List(ctx)
	if err != nil || len(resp.Models) == 0 {
		return fallback
	}

	models := make([]string, 0, len(resp.Models))
	for _, model := range resp.Models {
		models = append(models, model.Name)
	}
	return models
}

// convertError maps daemon errors into the llm taxonomy. The daemon is
// local, so failures are usually the connection itself.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == 429:
			return llm.NewRateLimitError(llm.ProviderOllama, statusErr.ErrorMessage, err)
		case statusErr.StatusCode >= 500:
			return llm.NewTransientError(llm.ProviderOllama, statusErr.ErrorMessage, statusErr.StatusCode, err)
		default:
			return llm.NewProviderError(llm.ProviderOllama, statusErr.ErrorMessage, err)
		}
	}
	if llm.IsRetryable(err) {
		return llm.NewTransientError(llm.ProviderOllama, "ollama request failed", 0, err)
	}
	return llm.NewProviderError(llm.ProviderOllama, "ollama request failed", err)
}

var _ llm.Provider = (*Adapter)(nil)
