// Package workspace turns project files into normalized documents.
package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ShayCichocki/architect/pkg/models"
)

// FallbackLanguage is the label for extensions missing from the table.
const FallbackLanguage = "PlainText"

// topFilesLimit caps WorkspaceInsights.TopFiles.
const topFilesLimit = 8

var languageByExt = map[string]string{
	".ts":   "TypeScript",
	".tsx":  "TypeScript React",
	".js":   "JavaScript",
	".jsx":  "JavaScript React",
	".json": "JSON",
	".py":   "Python",
	".go":   "Go",
	".rs":   "Rust",
	".java": "Java",
	".cs":   "C#",
	".rb":   "Ruby",
	".php":  "PHP",
	".md":   "Markdown",
	".yaml": "YAML",
	".yml":  "YAML",
	".html": "HTML",
	".css":  "CSS",
	".scss": "SCSS",
}

// InferLanguage returns the language label for a file path.
// Matching is on the exact, case-sensitive extension.
func InferLanguage(path string) string {
	if lang, ok := languageByExt[filepath.Ext(path)]; ok {
		return lang
	}
	return FallbackLanguage
}

// Ingest normalizes a (path, content) pair into a Document.
// Any input is accepted, including empty content.
func Ingest(path, content string) models.Document {
	sum := sha256.Sum256([]byte(content))
	return models.Document{
		Path:     path,
		Content:  content,
		Language: InferLanguage(path),
		Hash:     hex.EncodeToString(sum[:]),
		Tokens:   len(strings.Fields(content)),
	}
}

// IngestAll ingests files in order.
func IngestAll(files []models.SourceFile) []models.Document {
	docs := make([]models.Document, 0, len(files))
	for _, f := range files {
		docs = append(docs, Ingest(f.Path, f.Content))
	}
	return docs
}

// Summarize counts documents per language and picks the largest files by token count.
func Summarize(docs []models.Document) models.WorkspaceInsights {
	languages := make(map[string]int)
	for _, doc := range docs {
		languages[doc.Language]++
	}

	top := make([]models.Document, len(docs))
	copy(top, docs)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Tokens > top[j].Tokens
	})
	if len(top) > topFilesLimit {
		top = top[:topFilesLimit]
	}

	return models.WorkspaceInsights{
		TotalFiles: len(docs),
		Languages:  languages,
		TopFiles:   top,
		ModifiedAt: time.Now(),
	}
}
