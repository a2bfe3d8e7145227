package vector

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ShayCichocki/architect/pkg/models"
)

// DefaultCacheSize is the number of fingerprints an Embedder keeps.
const DefaultCacheSize = 1024

type fingerprint struct {
	vector []float32
	norm   float64
}

// Embedder embeds documents, reusing fingerprints of content it has seen.
// Entries are keyed on the document content hash, so cached and fresh
// embeddings are identical. Safe for concurrent use.
type Embedder struct {
	cache *lru.Cache[string, fingerprint]
}

// NewEmbedder creates an Embedder holding up to size fingerprints.
func NewEmbedder(size int) (*Embedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, fingerprint](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Embedder{cache: cache}, nil
}

// Embed behaves like the package-level Embed.
// Documents without a hash are embedded without touching the cache.
func (e *Embedder) Embed(docs []models.Document) []models.Embedding {
	out := make([]models.Embedding, 0, len(docs))
	for _, doc := range docs {
		fp, ok := e.lookup(doc)
		if !ok {
			fp.vector, fp.norm = Vectorize(Tokenize(doc.Content))
			if doc.Hash != "" {
				e.cache.Add(doc.Hash, fp)
			}
		}
		// Callers own the returned vector.
		vec := make([]float32, len(fp.vector))
		copy(vec, fp.vector)
		out = append(out, models.Embedding{
			Path:    doc.Path,
			Vector:  vec,
			Norm:    fp.norm,
			Preview: Preview(doc.Content),
		})
	}
	return out
}

// Len returns the number of cached fingerprints.
func (e *Embedder) Len() int {
	return e.cache.Len()
}

func (e *Embedder) lookup(doc models.Document) (fingerprint, bool) {
	if doc.Hash == "" {
		return fingerprint{}, false
	}
	return e.cache.Get(doc.Hash)
}
