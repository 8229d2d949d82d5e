package llm

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/jatin2507/docdelta/usage"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

// Constructor builds a fresh adapter from a Config.
type Constructor func(cfg *Config, logger zerolog.Logger, recorder usage.Recorder) (Provider, error)

// Factory maps backend kinds to adapter constructors. Adding a backend is
// one Register call; the manager never changes. Each Factory instance owns
// its own table, so independent factories can coexist in one process.
type Factory struct {
	logger   zerolog.Logger
	recorder usage.Recorder

	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewFactory creates an empty factory. Constructors are registered by the
// composition root (the config package wires the built-in adapters).
func NewFactory(logger zerolog.Logger, recorder usage.Recorder) *Factory {
	return &Factory{
		logger:       logger,
		recorder:     recorder,
		constructors: make(map[string]Constructor),
	}
}

// Register maps a backend kind to its constructor. Later registrations for
// the same kind replace earlier ones.
func (f *Factory) Register(kind string, ctor Constructor) {
	f.mu.Lock()
	f.constructors[kind] = ctor
	f.mu.Unlock()
}

// Kinds returns the registered backend kinds.
func (f *Factory) Kinds() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	kinds := make([]string, 0, len(f.constructors))
	for kind := range f.constructors {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Create builds a fresh adapter for cfg. It never caches: each call yields a
// new instance. An unmapped kind yields an unknown-provider error.
func (f *Factory) Create(cfg *Config) (Provider, error) {
	f.mu.RLock()
	ctor, ok := f.constructors[cfg.Provider]
	f.mu.RUnlock()
	if !ok {
		return nil, NewUnknownProviderError(cfg.Provider)
	}
	return ctor(cfg, f.logger, f.recorder)
}

// ProviderInfo is static metadata about a backend kind.
type ProviderInfo struct {
	Kind            string
	DisplayName     string
	RequiresAPIKey  bool
	Features        []string
	Local           bool
	CodeSpecialized bool
	Description     string
}

var providerInfoTable = map[string]ProviderInfo{
	ProviderAnthropic: {
		Kind:            ProviderAnthropic,
		DisplayName:     "Anthropic Claude",
		RequiresAPIKey:  true,
		Features:        []string{"text", "streaming", "summarize", "analyze", "diagram"},
		CodeSpecialized: true,
		Description:     "Anthropic Claude models via the Messages API.",
	},
	ProviderOpenAI: {
		Kind:           ProviderOpenAI,
		DisplayName:    "OpenAI",
		RequiresAPIKey: true,
		Features:       []string{"text", "streaming", "summarize", "analyze", "diagram", "embedding"},
		Description:    "OpenAI chat completion and embedding models.",
	},
	ProviderOllama: {
		Kind:        ProviderOllama,
		DisplayName: "Ollama",
		Features:    []string{"text", "streaming", "summarize", "analyze", "diagram", "embedding"},
		Local:       true,
		Description: "Locally hosted models served by an Ollama daemon.",
	},
}

// Info returns static metadata for a backend kind. Unknown kinds get a
// generic record so callers can still list or display them.
func Info(kind string) ProviderInfo {
	if info, ok := providerInfoTable[kind]; ok {
		return info
	}
	return ProviderInfo{
		Kind:        kind,
		DisplayName: kind,
		Description: "Unknown provider.",
	}
}

// Recommendation is a fixed routing hint for default backend selection.
// It is never authoritative: manager configuration always overrides it.
type Recommendation struct {
	General       string
	Code          string
	Local         string
	CostEffective string
	Multimodal    string
}

// Recommendations returns the static routing table.
func Recommendations() Recommendation {
	return Recommendation{
		General:       ProviderAnthropic,
		Code:          ProviderAnthropic,
		Local:         ProviderOllama,
		CostEffective: ProviderOllama,
		Multimodal:    ProviderOpenAI,
	}
}
