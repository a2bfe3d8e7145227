package heal

import (
	"os"
	"path/filepath"
)

// PackageManager describes the tool that governs a JavaScript project.
type PackageManager struct {
	// Name is the executable name.
	Name string
	// Install is the command prefix that adds a dependency.
	Install string
	// Marker is the lockfile that identified the manager, empty for the default.
	Marker string
}

var (
	pnpm = PackageManager{Name: "pnpm", Install: "pnpm add", Marker: "pnpm-lock.yaml"}
	yarn = PackageManager{Name: "yarn", Install: "yarn add", Marker: "yarn.lock"}
	bun  = PackageManager{Name: "bun", Install: "bun add", Marker: "bun.lockb"}
	npm  = PackageManager{Name: "npm", Install: "npm install"}
)

// markerOrder is checked first to last; the first lockfile present wins.
var markerOrder = []PackageManager{pnpm, yarn, bun}

// DetectPackageManager returns the package manager for dir, falling back
// to npm when no known lockfile is present or dir cannot be read.
func DetectPackageManager(dir string) PackageManager {
	for _, pm := range markerOrder {
		if fileExists(filepath.Join(dir, pm.Marker)) {
			return pm
		}
	}
	return npm
}

// fileExists checks if a file exists at the given path.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
