package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/architect/pkg/models"
)

// DefaultIgnore lists the globs skipped when collecting a workspace.
var DefaultIgnore = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/.next/**",
	"**/build/**",
	"**/.turbo/**",
	"**/*.lock",
	"**/*.png",
	"**/*.jpg",
	"**/*.jpeg",
	"**/*.svg",
}

const (
	// DefaultMaxFiles caps how many files a collection enumerates.
	DefaultMaxFiles = 180
	// DefaultMaxFileSize is the largest file, in bytes, that gets read.
	DefaultMaxFileSize = 100 * 1024
	defaultReaders     = 8
)

// CollectorConfig holds the limits for a workspace collection.
type CollectorConfig struct {
	// MaxFiles is the number of files enumerated before the walk stops.
	MaxFiles int
	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64
	// Ignore holds doublestar globs matched against slash-separated relative paths.
	Ignore []string
	// Readers bounds concurrent file reads.
	Readers int
	// Secrets, when set, skips credential files.
	Secrets *SecretDetector
}

// DefaultCollectorConfig returns the stock collection limits.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		MaxFiles:    DefaultMaxFiles,
		MaxFileSize: DefaultMaxFileSize,
		Ignore:      DefaultIgnore,
		Readers:     defaultReaders,
		Secrets:     NewSecretDetector(),
	}
}

// Collector enumerates and reads the files of a workspace directory.
type Collector struct {
	cfg    CollectorConfig
	logger *zap.Logger
}

// NewCollector creates a Collector. A nil logger disables logging.
func NewCollector(cfg CollectorConfig, logger *zap.Logger) *Collector {
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = DefaultMaxFiles
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Readers <= 0 {
		cfg.Readers = defaultReaders
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{cfg: cfg, logger: logger}
}

type candidate struct {
	abs string
	rel string
}

// Collect walks root and returns its documents in walk order.
// Unreadable files are skipped; only a failure to walk root is an error.
func (c *Collector) Collect(ctx context.Context, root string) ([]models.Document, error) {
	var files []candidate

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			c.logger.Warn("skip unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			// A directory is pruned when anything beneath it would be ignored.
			if c.ignored(rel + "/.x") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || c.ignored(rel) {
			return nil
		}
		if c.cfg.Secrets != nil {
			if secret, reason := c.cfg.Secrets.IsSecretWithReason(rel); secret {
				c.logger.Debug("skip secret file", zap.String("path", rel), zap.String("rule", reason))
				return nil
			}
		}

		files = append(files, candidate{abs: path, rel: rel})
		if len(files) >= c.cfg.MaxFiles {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk workspace %s: %w", root, err)
	}

	docs := make([]*models.Document, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Readers)
	for i, f := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			doc, ok := c.read(f)
			if ok {
				docs[i] = &doc
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read workspace files: %w", err)
	}

	out := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			out = append(out, *doc)
		}
	}

	c.logger.Debug("workspace collected",
		zap.String("root", root),
		zap.Int("enumerated", len(files)),
		zap.Int("documents", len(out)))
	return out, nil
}

func (c *Collector) read(f candidate) (models.Document, bool) {
	info, err := os.Stat(f.abs)
	if err != nil {
		c.logger.Warn("skip file", zap.String("path", f.rel), zap.Error(err))
		return models.Document{}, false
	}
	if info.Size() > c.cfg.MaxFileSize {
		c.logger.Debug("skip large file", zap.String("path", f.rel), zap.Int64("size", info.Size()))
		return models.Document{}, false
	}
	data, err := os.ReadFile(f.abs)
	if err != nil {
		c.logger.Warn("skip file", zap.String("path", f.rel), zap.Error(err))
		return models.Document{}, false
	}
	return Ingest(f.rel, string(data)), true
}

func (c *Collector) ignored(rel string) bool {
	for _, pattern := range c.cfg.Ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
