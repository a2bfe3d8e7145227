package workspace

import (
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// ProjectType is the primary toolchain of a workspace.
type ProjectType string

const (
	ProjectTypeGo      ProjectType = "go"
	ProjectTypeNode    ProjectType = "node"
	ProjectTypeRust    ProjectType = "rust"
	ProjectTypePython  ProjectType = "python"
	ProjectTypeUnknown ProjectType = "unknown"
)

// ProjectInfo carries the verification commands a toolchain usually offers.
// Empty commands mean the workspace has no obvious equivalent.
type ProjectInfo struct {
	Type  ProjectType `json:"type"`
	Build string      `json:"build,omitempty"`
	Test  string      `json:"test,omitempty"`
	Lint  string      `json:"lint,omitempty"`
}

// DetectProjectType checks marker files from most to least specific.
// package.json is checked last because tooling repos of every kind carry one.
func DetectProjectType(root string) ProjectType {
	switch {
	case isFile(filepath.Join(root, "go.mod")):
		return ProjectTypeGo
	case isFile(filepath.Join(root, "Cargo.toml")):
		return ProjectTypeRust
	case isFile(filepath.Join(root, "pyproject.toml")),
		isFile(filepath.Join(root, "setup.py")),
		isFile(filepath.Join(root, "requirements.txt")):
		return ProjectTypePython
	case isFile(filepath.Join(root, "package.json")):
		return ProjectTypeNode
	}
	return ProjectTypeUnknown
}

// DetectProject returns the project type of root with its usual commands.
func DetectProject(root string) ProjectInfo {
	info := ProjectInfo{Type: DetectProjectType(root)}

	switch info.Type {
	case ProjectTypeGo:
		info.Build = "go build ./..."
		info.Test = "go test ./..."
		info.Lint = "go vet ./..."
	case ProjectTypeRust:
		info.Build = "cargo build"
		info.Test = "cargo test"
		info.Lint = "cargo clippy"
	case ProjectTypePython:
		if isDir(filepath.Join(root, "tests")) {
			info.Test = "python -m pytest"
		}
	case ProjectTypeNode:
		scripts := nodeScripts(root)
		if scripts["build"] {
			info.Build = "npm run build"
		} else if isFile(filepath.Join(root, "tsconfig.json")) {
			info.Build = "npx tsc --noEmit"
		}
		if scripts["test"] {
			info.Test = "npm test"
		}
		if scripts["lint"] {
			info.Lint = "npm run lint"
		}
	}

	return info
}

func nodeScripts(root string) map[string]bool {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil || !gjson.ValidBytes(data) {
		return nil
	}
	scripts := make(map[string]bool)
	gjson.GetBytes(data, "scripts").ForEach(func(key, _ gjson.Result) bool {
		scripts[key.String()] = true
		return true
	})
	return scripts
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
