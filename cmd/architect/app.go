package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShayCichocki/architect/internal/commentary"
	"github.com/ShayCichocki/architect/internal/config"
	"github.com/ShayCichocki/architect/internal/orchestrator"
	"github.com/ShayCichocki/architect/internal/vector"
	"github.com/ShayCichocki/architect/internal/workspace"
	"github.com/ShayCichocki/architect/pkg/models"
)

// newEngine builds an engine from the loaded configuration.
// A non-positive cache size disables the fingerprint cache.
func newEngine(c *config.Config, commands commentary.Commands, retrieval orchestrator.Retrieval) (*orchestrator.Engine, error) {
	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger.Named("engine")),
		orchestrator.WithCommands(commands),
		orchestrator.WithRetrieval(retrieval),
	}
	if c.Retrieval.CacheSize > 0 {
		embedder, err := vector.NewEmbedder(c.Retrieval.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
		opts = append(opts, orchestrator.WithEmbedder(embedder))
	}
	return orchestrator.New(opts...), nil
}

func configCommands(c *config.Config) commentary.Commands {
	return commentary.Commands{
		Build: c.Commands.Build,
		Test:  c.Commands.Test,
		Lint:  c.Commands.Lint,
	}
}

func configRetrieval(c *config.Config) orchestrator.Retrieval {
	return orchestrator.Retrieval{
		ContextTopK:     c.Retrieval.ContextTopK,
		ContextMinScore: c.Retrieval.ContextMinScore,
		TopK:            c.Retrieval.TopK,
		MinScore:        c.Retrieval.MinScore,
	}
}

// detectedCommands prefers the toolchain's own commands and falls back to
// the configured ones where the toolchain has none.
func detectedCommands(project workspace.ProjectInfo, fallback commentary.Commands) commentary.Commands {
	out := fallback
	if project.Build != "" {
		out.Build = project.Build
	}
	if project.Test != "" {
		out.Test = project.Test
	}
	if project.Lint != "" {
		out.Lint = project.Lint
	}
	return out
}

func collect(ctx context.Context, c *config.Config, dir string) ([]models.Document, error) {
	collectorCfg := workspace.DefaultCollectorConfig()
	collectorCfg.MaxFiles = c.Workspace.MaxFiles
	collectorCfg.MaxFileSize = c.Workspace.MaxFileSize
	if c.Workspace.Ignore != nil {
		collectorCfg.Ignore = c.Workspace.Ignore
	}
	for _, pattern := range c.Workspace.SecretPatterns {
		collectorCfg.Secrets.AddPattern(pattern)
	}
	for _, ext := range c.Workspace.SecretExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		collectorCfg.Secrets.AddFileType(ext)
	}

	docs, err := workspace.NewCollector(collectorCfg, logger.Named("collector")).Collect(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("collect workspace: %w", err)
	}
	return docs, nil
}
