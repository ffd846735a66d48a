package config

import (
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	data := []byte(`
app:
  name: bl531
beamline:
  base_url: http://queue:60610
  api_key: secret
catalog:
  uri: http://tiled:8000
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Beamline.TimeoutSeconds != 300 {
		t.Errorf("Expected default timeout 300, got %d", cfg.Beamline.TimeoutSeconds)
	}
	if cfg.Beamline.PollIntervalMs != 1000 {
		t.Errorf("Expected default poll interval 1000ms, got %d", cfg.Beamline.PollIntervalMs)
	}
	if cfg.Beamline.BaseURL != "http://queue:60610" {
		t.Errorf("Unexpected base_url: %s", cfg.Beamline.BaseURL)
	}
	if cfg.Memory.Path != "bl531.db" {
		t.Errorf("Unexpected memory path: %s", cfg.Memory.Path)
	}
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv("BL531_BASE_URL", "http://other:60610")
	t.Setenv("BL531_MOCK_MODE", "true")

	cfg, err := Parse([]byte(`
beamline:
  base_url: http://queue:60610
catalog:
  uri: http://tiled:8000
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Beamline.BaseURL != "http://other:60610" {
		t.Errorf("Env override not applied, got %s", cfg.Beamline.BaseURL)
	}
	if !cfg.Beamline.Mock || !cfg.Catalog.Mock {
		t.Error("BL531_MOCK_MODE should flip both clients to mock")
	}
}

func TestGetDefaultProvider(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"openai": {APIKey: "k", Model: "gpt-4o", Enabled: true},
		},
	}
	name, p := cfg.GetDefaultProvider()
	if name != "openai" || p.Model != "gpt-4o" {
		t.Errorf("Unexpected provider: %s %+v", name, p)
	}
}
