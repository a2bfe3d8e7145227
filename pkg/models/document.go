// Package models defines the data types shared by the architect engine
// and its transports.
package models

import "time"

// SourceFile is a raw (path, content) pair supplied by a caller.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Document is a normalized workspace file.
type Document struct {
	// Path identifies the document.
	Path string `json:"path"`
	// Content is the raw file text.
	Content string `json:"content"`
	// Language is a display label inferred from the file extension.
	Language string `json:"language"`
	// Hash is a hex digest of Content, for change detection by callers.
	Hash string `json:"hash"`
	// Tokens is the number of whitespace-delimited chunks in Content.
	Tokens int `json:"tokens"`
}

// WorkspaceInsights summarizes a set of documents.
type WorkspaceInsights struct {
	TotalFiles int            `json:"totalFiles"`
	Languages  map[string]int `json:"languages"`
	TopFiles   []Document     `json:"topFiles"`
	ModifiedAt time.Time      `json:"modifiedAt"`
}

// Embedding is the hashed bag-of-words fingerprint of one document.
type Embedding struct {
	Path   string
	Vector []float32
	// Norm is the Euclidean norm of Vector, or 1 when the vector is all zeros.
	Norm float64
	// Preview is the leading slice of the document content, for display.
	Preview string
}

// RetrievalHit is a document ranked against a query.
type RetrievalHit struct {
	Path       string  `json:"path"`
	Preview    string  `json:"preview"`
	Similarity float64 `json:"similarity"`
}
