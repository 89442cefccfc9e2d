package model

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfigRoundTrip(t *testing.T) {
	def := DefaultConfig()

	data, err := yaml.Marshal(def)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got != *def {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", got, *def)
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Concurrency.CruxWorkers != 6 {
		t.Errorf("CruxWorkers = %d, want 6", cfg.Concurrency.CruxWorkers)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.LLM.Provider)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
}

func TestAPIKeyNeverSerialized(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "sk-secret"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "sk-secret") {
		t.Error("API key leaked into serialized config")
	}
}
