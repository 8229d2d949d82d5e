package config

import (
	"github.com/rs/zerolog"

	"github.com/jatin2507/docdelta/llm"
	"github.com/jatin2507/docdelta/llm/anthropic"
	"github.com/jatin2507/docdelta/llm/ollama"
	"github.com/jatin2507/docdelta/llm/openai"
	"github.com/jatin2507/docdelta/usage"
)

// NewFactory returns an llm.Factory with every built-in backend registered.
// Registration happens here rather than in the llm package so that the
// backend subpackages can depend on llm without creating a cycle.
func NewFactory(logger zerolog.Logger, recorder usage.Recorder) *llm.Factory {
	factory := llm.NewFactory(logger, recorder)
	factory.Register(llm.ProviderAnthropic, anthropic.New)
	factory.Register(llm.ProviderOpenAI, openai.New)
	factory.Register(llm.ProviderOllama, ollama.New)
	return factory
}

// BuildManager constructs the orchestration manager from loaded settings.
func BuildManager(settings *Settings, logger zerolog.Logger, recorder usage.Recorder) *llm.Manager {
	factory := NewFactory(logger, recorder)
	return llm.NewManager(factory, settings.Providers, llm.Options{
		Primary:        settings.PrimaryProvider,
		Fallbacks:      settings.FallbackProviders,
		EnableFallback: settings.FallbackEnabled(),
	}, logger)
}
