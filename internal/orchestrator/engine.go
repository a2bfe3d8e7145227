package orchestrator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ShayCichocki/architect/internal/commentary"
	"github.com/ShayCichocki/architect/internal/decompose"
	"github.com/ShayCichocki/architect/internal/heal"
	"github.com/ShayCichocki/architect/internal/vector"
	"github.com/ShayCichocki/architect/internal/workspace"
	"github.com/ShayCichocki/architect/pkg/models"
)

// Engine runs orchestrations and self-healing commands.
// It keeps no per-call state and is safe for concurrent use.
type Engine struct {
	logger    *zap.Logger
	embedder  *vector.Embedder
	generator *commentary.Generator
	executor  *heal.Executor
	commands  commentary.Commands
	retrieval Retrieval
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		logger:    o.logger,
		embedder:  o.embedder,
		generator: o.generator,
		executor:  heal.New(heal.WithRunner(o.execRunner), heal.WithLogger(o.logger.Named("heal"))),
		commands:  o.commands,
		retrieval: o.retrieval,
	}
}

// RunOrchestration ingests files and orchestrates spec against them.
func (e *Engine) RunOrchestration(spec string, files []models.SourceFile, tests []string) models.OrchestrationResult {
	return e.OrchestrateDocuments(spec, workspace.IngestAll(files), tests)
}

// OrchestrateDocuments plans spec, ranks docs against it and narrates the plan.
func (e *Engine) OrchestrateDocuments(spec string, docs []models.Document, tests []string) models.OrchestrationResult {
	embeddings := e.embed(docs)
	plan := decompose.Synthesize(spec)
	if err := decompose.ValidateChain(plan); err != nil {
		e.logger.Error("synthesized plan is not a chain", zap.Error(err))
	}

	hits := vector.Query(embeddings, contextQuery(spec, docs), e.retrieval.ContextTopK, e.retrieval.ContextMinScore)
	summary := commentary.ContextSummary(hits)

	codingNotes := append([]models.AgentMessage{e.generator.ManagerMessage(plan)}, e.generator.CodingNotes(plan, summary)...)
	reviewNotes := e.generator.ReviewNotes(plan, summary)
	commands := commentary.SuggestCommands(tests, plan, e.commands)

	e.logger.Debug("orchestration complete",
		zap.Int("documents", len(docs)),
		zap.Int("steps", len(plan)),
		zap.Int("hits", len(hits)),
		zap.Strings("commands", commands))

	return models.OrchestrationResult{
		Plan:              plan,
		CodingNotes:       codingNotes,
		ReviewNotes:       reviewNotes,
		RelevantContext:   hits,
		SuggestedCommands: commands,
	}
}

// Query ranks docs against free text with the generic limits.
func (e *Engine) Query(docs []models.Document, text string) []models.RetrievalHit {
	return vector.Query(e.embed(docs), text, e.retrieval.TopK, e.retrieval.MinScore)
}

// RunSelfHealingCommand runs command in dir, repairing known failures between attempts.
func (e *Engine) RunSelfHealingCommand(ctx context.Context, command, dir string) models.CommandRunResult {
	return e.executor.Run(ctx, command, dir, nil)
}

// StreamSelfHealingCommand is RunSelfHealingCommand with a per-attempt observer.
func (e *Engine) StreamSelfHealingCommand(ctx context.Context, command, dir string, observe heal.Observer) models.CommandRunResult {
	return e.executor.Run(ctx, command, dir, observe)
}

func (e *Engine) embed(docs []models.Document) []models.Embedding {
	if e.embedder != nil {
		return e.embedder.Embed(docs)
	}
	return vector.Embed(docs)
}

// contextQuery appends the document paths to spec so file names count as evidence.
func contextQuery(spec string, docs []models.Document) string {
	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		paths = append(paths, doc.Path)
	}
	return spec + "\n\nFocus file paths: " + strings.Join(paths, ", ")
}
