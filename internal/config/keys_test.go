package config

import (
	"reflect"
	"testing"
)

func TestGet(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key  string
		want string
	}{
		{"retrieval.context_top_k", "6"},
		{"retrieval.context_min_score", "0.08"},
		{"retrieval.min_score", "0.12"},
		{"workspace.max_file_size", "102400"},
		{"commands.build", "npm run build"},
		{"server.addr", ":8787"},
		{"log.verbose", "false"},
		{"SERVER.ADDR", ":8787"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := Get(cfg, tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestGet_UnknownKey(t *testing.T) {
	if _, err := Get(Default(), "anthropic.api_key"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSet(t *testing.T) {
	cfg := Default()

	sets := map[string]string{
		"retrieval.top_k":             "4",
		"retrieval.min_score":         "0.5",
		"workspace.max_files":         "10",
		"workspace.ignore":            "**/a/**, **/b/** ,",
		"workspace.secret_patterns":   "**/vault/**",
		"workspace.secret_extensions": ".gpg,.age",
		"commands.default_test":       "pytest",
		"log.verbose":                 "true",
	}
	for key, value := range sets {
		if err := Set(cfg, key, value); err != nil {
			t.Fatalf("Set(%q, %q) error: %v", key, value, err)
		}
	}

	if cfg.Retrieval.TopK != 4 {
		t.Errorf("TopK = %d, want 4", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.MinScore != 0.5 {
		t.Errorf("MinScore = %v, want 0.5", cfg.Retrieval.MinScore)
	}
	if cfg.Workspace.MaxFiles != 10 {
		t.Errorf("MaxFiles = %d, want 10", cfg.Workspace.MaxFiles)
	}
	if !reflect.DeepEqual(cfg.Workspace.Ignore, []string{"**/a/**", "**/b/**"}) {
		t.Errorf("Ignore = %v", cfg.Workspace.Ignore)
	}
	if !reflect.DeepEqual(cfg.Workspace.SecretPatterns, []string{"**/vault/**"}) {
		t.Errorf("SecretPatterns = %v", cfg.Workspace.SecretPatterns)
	}
	if !reflect.DeepEqual(cfg.Workspace.SecretExtensions, []string{".gpg", ".age"}) {
		t.Errorf("SecretExtensions = %v", cfg.Workspace.SecretExtensions)
	}
	if cfg.Commands.DefaultTest != "pytest" {
		t.Errorf("DefaultTest = %q, want pytest", cfg.Commands.DefaultTest)
	}
	if !cfg.Log.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestSet_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"retrieval.top_k", "many"},
		{"retrieval.min_score", "high"},
		{"workspace.max_file_size", "1MB"},
		{"log.verbose", "loud"},
		{"tui.refresh_rate", "100ms"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := Set(Default(), tt.key, tt.value); err == nil {
				t.Errorf("Set(%q, %q) expected error", tt.key, tt.value)
			}
		})
	}
}

func TestKeysAreAllReadable(t *testing.T) {
	cfg := Default()
	for _, key := range Keys() {
		if _, err := Get(cfg, key); err != nil {
			t.Errorf("Get(%q) error: %v", key, err)
		}
	}
}
