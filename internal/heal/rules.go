package heal

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/ShayCichocki/architect/internal/exec"
)

// FixFunc applies a corrective action for a matched failure.
// match holds the full match followed by the capture groups.
// It returns a description of what it did, or false if nothing was fixed.
type FixFunc func(ctx context.Context, runner exec.CommandRunner, dir string, match []string) (string, bool)

// Rule pairs a failure signature with its corrective action.
type Rule struct {
	Name      string
	Signature *regexp.Regexp
	Fix       FixFunc
}

// ManifestFixDescription is recorded when package.json is switched to ES modules.
const ManifestFixDescription = "Set package.json -> type: module"

// packageName accepts registry-style names; relative paths and shell
// metacharacters are never passed to an installer.
var packageName = regexp.MustCompile(`^@?[A-Za-z0-9_][A-Za-z0-9._~/-]*$`)

// DefaultRules is the ordered rule chain; the first matching signature wins.
var DefaultRules = []Rule{
	{
		Name:      "node-missing-module",
		Signature: regexp.MustCompile(`(?i)Cannot find module '(.*?)'`),
		Fix:       installWithPackageManager,
	},
	{
		Name:      "node-missing-package",
		Signature: regexp.MustCompile(`(?i)Cannot find package '(.*?)'`),
		Fix:       installWithPackageManager,
	},
	{
		Name:      "bundler-unresolved",
		Signature: regexp.MustCompile(`(?i)Module not found: (?:Error: )?Can't resolve '(.*?)'`),
		Fix:       installWithPackageManager,
	},
	{
		Name:      "python-missing-module",
		Signature: regexp.MustCompile(`(?i)ModuleNotFoundError: No module named '(.*?)'`),
		Fix:       installWithPip,
	},
	{
		Name:      "ts-missing-module",
		Signature: regexp.MustCompile(`(?i)TS2307: Cannot find module '(.*?)'`),
		Fix:       installWithPackageManager,
	},
	{
		Name:      "esm-syntax",
		Signature: regexp.MustCompile(`(?i)SyntaxError: (?:Unexpected token 'export'|Cannot use import statement outside a module)`),
		Fix:       setModuleType,
	},
}

func installWithPackageManager(ctx context.Context, runner exec.CommandRunner, dir string, match []string) (string, bool) {
	return install(ctx, runner, dir, DetectPackageManager(dir).Install, match)
}

func installWithPip(ctx context.Context, runner exec.CommandRunner, dir string, match []string) (string, bool) {
	return install(ctx, runner, dir, "pip install", match)
}

func install(ctx context.Context, runner exec.CommandRunner, dir, prefix string, match []string) (string, bool) {
	if len(match) < 2 {
		return "", false
	}
	pkg := strings.TrimSpace(match[1])
	if pkg == "" || !packageName.MatchString(pkg) {
		return "", false
	}

	command := prefix + " " + pkg
	if _, err := runner.RunShell(ctx, dir, command); err != nil {
		return "", false
	}
	return command, true
}

// manifestStyle indents with two spaces. A zero Width never folds arrays
// onto one line.
var manifestStyle = &pretty.Options{Indent: "  "}

// setModuleType marks package.json as an ES module package, keeping key order.
// An already-correct or unreadable manifest yields no fix.
func setModuleType(_ context.Context, _ exec.CommandRunner, dir string, _ []string) (string, bool) {
	path := filepath.Join(dir, "package.json")
	data, err := os.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		return "", false
	}
	if gjson.GetBytes(data, "type").String() == "module" {
		return "", false
	}

	updated, err := sjson.SetBytes(data, "type", "module")
	if err != nil {
		return "", false
	}
	if err := os.WriteFile(path, pretty.PrettyOptions(updated, manifestStyle), 0644); err != nil {
		return "", false
	}
	return ManifestFixDescription, true
}
