package llm

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/jatin2507/docdelta/usage"
)

func TestFactory_UnknownKind(t *testing.T) {
	factory := NewFactory(zerolog.Nop(), usage.NopRecorder{})

	_, err := factory.Create(&Config{Provider: "bedrock"})
	if !IsUnknownProviderError(err) {
		t.Errorf("expected unknown provider error, got %v", err)
	}
}

func TestFactory_RegisterAndCreate(t *testing.T) {
	factory := NewFactory(zerolog.Nop(), usage.NopRecorder{})
	factory.Register("alpha", func(cfg *Config, _ zerolog.Logger, _ usage.Recorder) (Provider, error) {
		return &fakeProvider{id: cfg.Provider}, nil
	})

	if got := factory.Kinds(); len(got) != 1 || got[0] != "alpha" {
		t.Errorf("Kinds = %v, want [alpha]", got)
	}

	// Each Create yields a fresh instance.
	p1, err := factory.Create(&Config{Provider: "alpha"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	p2, err := factory.Create(&Config{Provider: "alpha"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p1 == p2 {
		t.Error("expected distinct adapter instances per Create")
	}
}

func TestInfo(t *testing.T) {
	anthropic := Info(ProviderAnthropic)
	if !anthropic.CodeSpecialized || !anthropic.RequiresAPIKey {
		t.Errorf("unexpected anthropic info: %+v", anthropic)
	}

	ollama := Info(ProviderOllama)
	if !ollama.Local || ollama.RequiresAPIKey {
		t.Errorf("unexpected ollama info: %+v", ollama)
	}

	// Unknown kinds get a usable generic record, not a zero value.
	unknown := Info("bedrock")
	if unknown.Kind != "bedrock" || unknown.DisplayName != "bedrock" {
		t.Errorf("unexpected fallback info: %+v", unknown)
	}
}

func TestRecommendations(t *testing.T) {
	rec := Recommendations()
	if rec.Code != ProviderAnthropic {
		t.Errorf("Code = %q, want %q", rec.Code, ProviderAnthropic)
	}
	if rec.Local != ProviderOllama {
		t.Errorf("Local = %q, want %q", rec.Local, ProviderOllama)
	}
	if rec.Multimodal != ProviderOpenAI {
		t.Errorf("Multimodal = %q, want %q", rec.Multimodal, ProviderOpenAI)
	}
}
