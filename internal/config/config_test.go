package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("CHUNK_OVERLAP", "")
	t.Setenv("MODEL_PROVIDER", "")
	t.Setenv("QA_ACCEPT_THRESHOLD", "")

	cfg := Load()
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Fatalf("unexpected chunk defaults %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.TopK != 6 {
		t.Fatalf("expected default top k 6, got %d", cfg.TopK)
	}
	if cfg.ModelProvider != ProviderOllama {
		t.Fatalf("expected default provider ollama, got %q", cfg.ModelProvider)
	}
	if cfg.QAAcceptThreshold != 0.6 || cfg.FoundThreshold != 0.3 {
		t.Fatalf("unexpected thresholds %v/%v", cfg.QAAcceptThreshold, cfg.FoundThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "400")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("WEIGHT_GLP_ALIGNMENT", "0.3")
	t.Setenv("MODEL_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("API_BACKPRESSURE_WAIT_MS", "10")

	cfg := Load()
	if cfg.ChunkSize != 400 || cfg.ChunkOverlap != 50 {
		t.Fatalf("unexpected chunk settings %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.Weights().GLPAlignment != 0.3 {
		t.Fatalf("expected GLP weight override, got %v", cfg.Weights().GLPAlignment)
	}
	if cfg.ModelProvider != ProviderOpenAI {
		t.Fatalf("provider should be lower-cased, got %q", cfg.ModelProvider)
	}
	if cfg.APIBackpressureWait.Milliseconds() != 10 {
		t.Fatalf("unexpected backpressure wait %v", cfg.APIBackpressureWait)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "lots")
	t.Setenv("WEIGHT_COMPLETENESS", "high")

	cfg := Load()
	if cfg.ChunkSize != 1000 || cfg.WeightCompleteness != 0.20 {
		t.Fatalf("malformed values should fall back, got %d/%v", cfg.ChunkSize, cfg.WeightCompleteness)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Load()
	cfg.ChunkSize = 100
	cfg.ChunkOverlap = 100
	cfg.WeightCompleteness = 0.9
	cfg.ModelProvider = "bedrock"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"CHUNK_OVERLAP", "sum", "MODEL_PROVIDER"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %s", err, want)
		}
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NATS_SUBJECT=from.dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("NATS_SUBJECT", "")
	os.Unsetenv("NATS_SUBJECT")

	if got := Load().NATSSubject; got != "from.dotenv" {
		t.Fatalf("expected subject from .env, got %q", got)
	}
}
