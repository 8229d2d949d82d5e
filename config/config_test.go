package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jatin2507/docdelta/llm"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(settings.Providers) != 1 || settings.Providers[0].Provider != llm.ProviderAnthropic {
		t.Errorf("unexpected default providers: %+v", settings.Providers)
	}
	if !settings.FallbackEnabled() {
		t.Error("fallback should default to enabled")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
providers:
  - provider: openai
    model: gpt-4o-mini
    max_retries: 5
  - provider: ollama
    model: llama3.2:3b
primary_provider: openai
fallback_providers:
  - ollama
enable_fallback: false
database:
  path: /tmp/test-docdelta.db
`)

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(settings.Providers) != 2 {
		t.Fatalf("providers = %d, want 2", len(settings.Providers))
	}
	if settings.Providers[0].Provider != llm.ProviderOpenAI || settings.Providers[0].MaxRetries != 5 {
		t.Errorf("unexpected first provider: %+v", settings.Providers[0])
	}
	if settings.PrimaryProvider != "openai" {
		t.Errorf("PrimaryProvider = %q, want openai", settings.PrimaryProvider)
	}
	if len(settings.FallbackProviders) != 1 || settings.FallbackProviders[0] != "ollama" {
		t.Errorf("unexpected fallbacks: %v", settings.FallbackProviders)
	}
	if settings.FallbackEnabled() {
		t.Error("enable_fallback: false should disable fallback")
	}
	if settings.DatabasePath() != "/tmp/test-docdelta.db" {
		t.Errorf("DatabasePath = %q", settings.DatabasePath())
	}
}

func TestLoad_GlobalRetryDefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
providers:
  - provider: anthropic
  - provider: openai
    max_retries: 2
max_retries: 7
retry_delay_ms: 500
`)

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := settings.Providers[0].MaxRetries; got != 7 {
		t.Errorf("anthropic MaxRetries = %d, want global 7", got)
	}
	if got := settings.Providers[0].RetryDelayMS; got != 500 {
		t.Errorf("anthropic RetryDelayMS = %d, want global 500", got)
	}
	// A provider's own setting wins over the global.
	if got := settings.Providers[1].MaxRetries; got != 2 {
		t.Errorf("openai MaxRetries = %d, want 2", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "providers: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSettings_DatabasePathDefault(t *testing.T) {
	settings := &Settings{}
	path := settings.DatabasePath()
	if path == "" {
		t.Fatal("expected a default database path")
	}
	if filepath.Base(path) != "docdelta.db" {
		t.Errorf("DatabasePath = %q, want a docdelta.db default", path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	enable := false
	in := &Settings{
		Providers:       []*llm.Config{{Provider: llm.ProviderOllama, Model: "llama3.2:3b"}},
		PrimaryProvider: llm.ProviderOllama,
		EnableFallback:  &enable,
	}
	if err := Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.PrimaryProvider != llm.ProviderOllama {
		t.Errorf("PrimaryProvider = %q, want ollama", out.PrimaryProvider)
	}
	if out.FallbackEnabled() {
		t.Error("saved enable_fallback: false lost on reload")
	}
}

func TestNewFactoryRegistersBuiltinKinds(t *testing.T) {
	factory := NewFactory(zerolog.Nop(), nil)
	kinds := map[string]bool{}
	for _, k := range factory.Kinds() {
		kinds[k] = true
	}
	for _, want := range []string{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderOllama} {
		if !kinds[want] {
			t.Errorf("kind %q not registered", want)
		}
	}
}
