// Package vector implements a hashed bag-of-words index for ranking
// documents against free text.
//
// Tokens are hashed into a fixed number of buckets with no collision
// handling, so the vectors are lossy count fingerprints rather than
// learned embeddings.
package vector

import (
	"crypto/sha1"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ShayCichocki/architect/pkg/models"
)

const (
	// Size is the number of buckets in every vector.
	Size = 384
	// PreviewLength is the number of characters kept for display.
	PreviewLength = 400

	// ContextTopK and ContextMinScore bound the retrieval that feeds commentary.
	ContextTopK     = 6
	ContextMinScore = 0.08

	// DefaultTopK and DefaultMinScore bound a generic query.
	DefaultTopK     = 8
	DefaultMinScore = 0.12
)

var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

// Tokenize lower-cases text and returns its alphanumeric runs longer than one character.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if len(tok) > 1 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Bucket returns the vector index a token is counted in.
func Bucket(token string) int {
	digest := sha1.Sum([]byte(token))
	return int(digest[0]^digest[len(digest)-1]) % Size
}

// Vectorize counts tokens into buckets and returns the vector with its norm.
// A zero vector reports a norm of 1.
func Vectorize(tokens []string) ([]float32, float64) {
	vec := make([]float32, Size)
	for _, tok := range tokens {
		vec[Bucket(tok)]++
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}
	return vec, norm
}

// Embed fingerprints each document.
func Embed(docs []models.Document) []models.Embedding {
	out := make([]models.Embedding, 0, len(docs))
	for _, doc := range docs {
		vec, norm := Vectorize(Tokenize(doc.Content))
		out = append(out, models.Embedding{
			Path:    doc.Path,
			Vector:  vec,
			Norm:    norm,
			Preview: Preview(doc.Content),
		})
	}
	return out
}

// Preview returns the first PreviewLength characters of content.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength])
}

// Query ranks embeddings by cosine similarity to text.
// Hits below minScore are dropped, the rest are sorted by descending
// similarity (ties keep input order) and truncated to topK.
func Query(embeddings []models.Embedding, text string, topK int, minScore float64) []models.RetrievalHit {
	qvec, qnorm := Vectorize(Tokenize(text))

	hits := make([]models.RetrievalHit, 0, len(embeddings))
	for _, emb := range embeddings {
		sim := dot(emb.Vector, qvec) / (emb.Norm * qnorm)
		if math.IsNaN(sim) || math.IsInf(sim, 0) {
			sim = 0
		}
		if sim < minScore {
			continue
		}
		hits = append(hits, models.RetrievalHit{
			Path:       emb.Path,
			Preview:    emb.Preview,
			Similarity: sim,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if topK < 0 {
		topK = 0
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
