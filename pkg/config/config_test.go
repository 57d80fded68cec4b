package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) (path string) {
	t.Helper()

	path = filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("PERSONA_MATRIX_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	path := writeConfig(t, `
llm:
  api_key: file-key
  model: gpt-4o
  temperature: 0.7
retry:
  max_attempts: 5
matrix:
  default_personas: 4
  age_ranges: ["20-24", "25-29"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.APIKey != "file-key" {
		t.Errorf("Expected file api key, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %f", cfg.LLM.Temperature)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("Expected 5 retry attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Matrix.DefaultPersonas != 4 {
		t.Errorf("Expected 4 default personas, got %d", cfg.Matrix.DefaultPersonas)
	}
	if len(cfg.Matrix.AgeRanges) != 2 || cfg.Matrix.AgeRanges[0] != "20-24" {
		t.Errorf("Expected configured age ranges, got %v", cfg.Matrix.AgeRanges)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PERSONA_MATRIX_API_KEY", "env-key")

	path := writeConfig(t, "llm: {}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("Expected api key from the environment, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Expected default model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 1.0 {
		t.Errorf("Expected default temperature, got %f", cfg.LLM.Temperature)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.DelaySeconds != 2 {
		t.Errorf("Expected default retry policy, got %+v", cfg.Retry)
	}
	if cfg.Rate.RPM != 60 || cfg.Rate.Burst != 5 {
		t.Errorf("Expected default rate limits, got %+v", cfg.Rate)
	}
	if cfg.Tokens.Matrix != 16384 {
		t.Errorf("Expected default matrix token budget, got %d", cfg.Tokens.Matrix)
	}
	if cfg.Matrix.DefaultPersonas != 3 {
		t.Errorf("Expected 3 default personas, got %d", cfg.Matrix.DefaultPersonas)
	}
	if len(cfg.Matrix.AgeRanges) != 3 {
		t.Errorf("Expected 3 default age ranges, got %v", cfg.Matrix.AgeRanges)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level, got %q", cfg.Log.Level)
	}
	if cfg.DataDir == "" {
		t.Error("Expected a default data directory")
	}
}

func TestLoadFileKeyBeatsEnv(t *testing.T) {
	t.Setenv("PERSONA_MATRIX_API_KEY", "env-key")

	path := writeConfig(t, "llm:\n  api_key: file-key\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Errorf("Expected the file key to win, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadFallbackEnvKey(t *testing.T) {
	t.Setenv("PERSONA_MATRIX_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "fallback-key")

	path := writeConfig(t, "llm: {}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "fallback-key" {
		t.Errorf("Expected the OPENAI_API_KEY fallback, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("PERSONA_MATRIX_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	path := writeConfig(t, "llm: {}\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected an error when no api key is configured")
	}
	if !strings.Contains(err.Error(), "api key") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected an error for an explicitly named missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "llm: [not: a: map\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected a parse error")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("Unexpected error: %v", err)
	}
}
