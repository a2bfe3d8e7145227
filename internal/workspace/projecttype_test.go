package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDetectProjectType(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  ProjectType
	}{
		{"empty", nil, ProjectTypeUnknown},
		{"go", map[string]string{"go.mod": "module x"}, ProjectTypeGo},
		{"rust", map[string]string{"Cargo.toml": ""}, ProjectTypeRust},
		{"python requirements", map[string]string{"requirements.txt": ""}, ProjectTypePython},
		{"python setup", map[string]string{"setup.py": ""}, ProjectTypePython},
		{"node", map[string]string{"package.json": "{}"}, ProjectTypeNode},
		{"go wins over node", map[string]string{"go.mod": "", "package.json": "{}"}, ProjectTypeGo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)
			if got := DetectProjectType(dir); got != tt.want {
				t.Errorf("DetectProjectType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectProject_NodeScripts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"package.json":  `{"scripts":{"test":"vitest","lint":"eslint ."}}`,
		"tsconfig.json": "{}",
	})

	got := DetectProject(dir)
	want := ProjectInfo{Type: ProjectTypeNode, Build: "npx tsc --noEmit", Test: "npm test", Lint: "npm run lint"}
	if got != want {
		t.Errorf("DetectProject = %+v, want %+v", got, want)
	}
}

func TestDetectProject_NodeWithoutScripts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"package.json": `{"name":"x"}`})

	got := DetectProject(dir)
	if got.Build != "" || got.Test != "" || got.Lint != "" {
		t.Errorf("DetectProject = %+v, want no commands", got)
	}
}

func TestDetectProject_PythonTestsDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"pyproject.toml": "", "tests/test_a.py": ""})

	if got := DetectProject(dir).Test; got != "python -m pytest" {
		t.Errorf("Test = %q, want python -m pytest", got)
	}
}
