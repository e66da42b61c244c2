package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"modelgw/pkg/types"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
addr: ":9090"
redis_addr: "localhost:6379"
log_level: debug
tick_ms: 50
instances:
  - model_id: meta/llama-3.1-8b
    endpoint: http://10.0.0.1:8000
    max_load: 4
  - model_id: meta/llama-3.1-8b
    endpoint: http://10.0.0.2:8000
    max_load: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.RedisAddr != "localhost:6379" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.TickMs != 50 {
		t.Fatalf("expected tick 50, got %d", cfg.TickMs)
	}
	if len(cfg.Instances) != 2 || cfg.Instances[0].MaxLoad != 4 {
		t.Fatalf("unexpected instances %+v", cfg.Instances)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTempFile(t, "config.json", `{
  "addr": ":8080",
  "max_retries": 5,
  "instances": [{"model_id": "m1", "endpoint": "http://a", "max_load": 1}]
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.MaxRetries != 5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.Instances) != 1 || cfg.Instances[0].ModelID != "m1" {
		t.Fatalf("unexpected instances %+v", cfg.Instances)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeTempFile(t, "config.toml", `
addr = ":7070"
result_ttl_s = 600

[[instances]]
model_id = "m1"
endpoint = "http://a"
max_load = 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.ResultTTLSec != 600 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.Instances) != 1 || cfg.Instances[0].MaxLoad != 3 {
		t.Fatalf("unexpected instances %+v", cfg.Instances)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
	if _, err := Load(writeTempFile(t, "config.ini", "addr=:8080")); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if _, err := Load(writeTempFile(t, "bad.yaml", ":\n  - [")); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
	if _, err := Load(writeTempFile(t, "bad.json", "{")); err == nil {
		t.Fatalf("expected error for invalid json")
	}
	if _, err := Load(writeTempFile(t, "bad.toml", "= nope")); err == nil {
		t.Fatalf("expected error for invalid toml")
	}
}

func TestModelIDs(t *testing.T) {
	cfg := Config{
		Instances: []types.InstanceDef{
			{ModelID: "m1", Endpoint: "http://a"},
			{ModelID: "m1", Endpoint: "http://b"},
			{ModelID: "m2", Endpoint: "http://c"},
		},
	}
	got := cfg.ModelIDs()
	want := []string{"m1", "m2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	cfg.Models = []string{"only-this"}
	if got := cfg.ModelIDs(); !reflect.DeepEqual(got, []string{"only-this"}) {
		t.Fatalf("explicit models must win, got %v", got)
	}
}
