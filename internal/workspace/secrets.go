package workspace

import (
	"path"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar"
)

// DefaultSecretPatterns are directories whose contents never leave the disk.
var DefaultSecretPatterns = []string{
	"**/.ssh/**",
	"**/secrets/**",
	"**/credentials/**",
	"**/certs/**",
	"**/.aws/**",
	"**/.gnupg/**",
}

// DefaultSecretFileTypes are extensions of key material and env files.
var DefaultSecretFileTypes = []string{
	".env",
	".pem",
	".key",
	".p12",
	".pfx",
	".jks",
	".keystore",
	".crt",
	".cer",
}

// DefaultSecretNames are base names, lower-cased, of well-known credential files.
var DefaultSecretNames = []string{
	".env",
	".npmrc",
	".netrc",
	".pypirc",
	"id_rsa",
	"id_ed25519",
	"credentials.json",
	"service-account.json",
}

// SecretDetector recognizes files that hold credentials, so they are neither
// embedded nor echoed back as retrieval previews.
type SecretDetector struct {
	mu        sync.RWMutex
	patterns  []string
	fileTypes []string
	names     []string
}

// NewSecretDetector creates a detector with the default rules.
func NewSecretDetector() *SecretDetector {
	return &SecretDetector{
		patterns:  append([]string{}, DefaultSecretPatterns...),
		fileTypes: append([]string{}, DefaultSecretFileTypes...),
		names:     append([]string{}, DefaultSecretNames...),
	}
}

// IsSecret reports whether rel, a slash-separated path, looks like a
// credential file.
func (d *SecretDetector) IsSecret(rel string) bool {
	secret, _ := d.IsSecretWithReason(rel)
	return secret
}

// IsSecretWithReason is IsSecret plus the rule that matched.
func (d *SecretDetector) IsSecretWithReason(rel string) (bool, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, pattern := range d.patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true, "pattern " + pattern
		}
	}

	base := strings.ToLower(path.Base(rel))
	for _, name := range d.names {
		if base == name {
			return true, "name " + name
		}
	}
	// .env.local, .env.production and friends.
	if strings.HasPrefix(base, ".env.") {
		return true, "name .env.*"
	}

	ext := strings.ToLower(path.Ext(base))
	for _, ft := range d.fileTypes {
		if ext == ft {
			return true, "file type " + ft
		}
	}
	return false, ""
}

// AddPattern adds a doublestar glob to the rules.
func (d *SecretDetector) AddPattern(pattern string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patterns = append(d.patterns, pattern)
}

// AddFileType adds an extension, with its leading dot, to the rules.
func (d *SecretDetector) AddFileType(ext string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fileTypes = append(d.fileTypes, strings.ToLower(ext))
}
