// Package version reports the release of the architect binary.
package version

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionContent string

// Override replaces the embedded version when set at link time:
//
//	go build -ldflags "-X github.com/ShayCichocki/architect/internal/version.Override=1.2.3"
var Override string

// Get returns the release version.
func Get() string {
	if v := strings.TrimSpace(Override); v != "" {
		return v
	}
	return strings.TrimSpace(versionContent)
}

// Info returns the version followed by the short VCS revision the binary was
// built from, when the toolchain recorded one.
func Info() string {
	v := Get()
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}

	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return v
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if dirty {
		rev += "-dirty"
	}
	return v + " (" + rev + ")"
}
