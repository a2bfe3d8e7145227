package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ShayCichocki/architect/internal/commentary"
	"github.com/ShayCichocki/architect/internal/workspace"
	"github.com/ShayCichocki/architect/pkg/models"
)

func TestResolveSpec(t *testing.T) {
	dir := t.TempDir()
	specFile := filepath.Join(dir, "SPEC.md")
	if err := os.WriteFile(specFile, []byte("Build it\nShip it"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		specFile string
		want     string
		wantErr  bool
	}{
		{"args joined", []string{"Add", "login."}, "", "Add login.", false},
		{"file wins", []string{"ignored"}, specFile, "Build it\nShip it", false},
		{"nothing given", nil, "", "", true},
		{"blank args", []string{" "}, "", "", true},
		{"missing file", nil, filepath.Join(dir, "absent.md"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveSpec(tt.args, tt.specFile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveSpec error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveSpec = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTests(t *testing.T) {
	tests := []struct {
		name        string
		flags       []string
		defaultTest string
		want        []string
	}{
		{"flags win", []string{"go test ./..."}, "make check", []string{"go test ./..."}},
		{"default used", nil, "make check", []string{"make check"}},
		{"no default", nil, "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveTests(tt.flags, tt.defaultTest); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolveTests = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealCommand(t *testing.T) {
	commands := commentary.DefaultCommands()

	if got := healCommand([]string{"", "pytest"}, commands); got != "pytest" {
		t.Errorf("healCommand = %q, want pytest", got)
	}
	if got := healCommand(nil, commands); got != "npm test" {
		t.Errorf("healCommand = %q, want npm test", got)
	}
}

func TestDetectedCommands(t *testing.T) {
	project := workspace.ProjectInfo{Type: workspace.ProjectTypeGo, Test: "go test ./..."}

	got := detectedCommands(project, commentary.DefaultCommands())

	want := commentary.Commands{Build: "npm run build", Test: "go test ./...", Lint: "npm run lint"}
	if got != want {
		t.Errorf("detectedCommands = %+v, want %+v", got, want)
	}
}

func TestPlanCommand_JSON(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	work := t.TempDir()
	files := map[string]string{
		"src/auth/login.go": "package auth\n\nfunc Login(user, password string) error { return nil }\n",
		"README.md":         "# Demo\n",
	}
	for rel, content := range files {
		path := filepath.Join(work, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("retrieval:\n  cache_size: 16\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", configFile, "plan", "--dir", work, "--format", "json",
		"--test", "go test ./...", "Add login for user password. Update the README docs."})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	var result models.OrchestrationResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	// One line of specification is one step.
	if len(result.Plan) != 1 {
		t.Errorf("Plan has %d steps, want 1", len(result.Plan))
	}
	if len(result.RelevantContext) == 0 || result.RelevantContext[0].Path != "src/auth/login.go" {
		t.Errorf("RelevantContext = %+v", result.RelevantContext)
	}
	want := []string{"go test ./...", "npm run lint"}
	if !reflect.DeepEqual(result.SuggestedCommands, want) {
		t.Errorf("SuggestedCommands = %v, want %v", result.SuggestedCommands, want)
	}
}
