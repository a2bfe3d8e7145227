package orchestrator

import (
	"go.uber.org/zap"

	"github.com/ShayCichocki/architect/internal/commentary"
	iexec "github.com/ShayCichocki/architect/internal/exec"
	"github.com/ShayCichocki/architect/internal/vector"
)

// Retrieval holds the ranking limits for the two kinds of query.
type Retrieval struct {
	// ContextTopK and ContextMinScore bound the query that feeds commentary.
	ContextTopK     int
	ContextMinScore float64
	// TopK and MinScore bound a generic query.
	TopK     int
	MinScore float64
}

// DefaultRetrieval returns the stock ranking limits.
func DefaultRetrieval() Retrieval {
	return Retrieval{
		ContextTopK:     vector.ContextTopK,
		ContextMinScore: vector.ContextMinScore,
		TopK:            vector.DefaultTopK,
		MinScore:        vector.DefaultMinScore,
	}
}

// Option configures an Engine. Use With* functions to create Options.
type Option func(*engineOptions)

type engineOptions struct {
	logger     *zap.Logger
	embedder   *vector.Embedder
	generator  *commentary.Generator
	execRunner iexec.CommandRunner
	commands   commentary.Commands
	retrieval  Retrieval
}

func defaultOptions() engineOptions {
	return engineOptions{
		logger:    zap.NewNop(),
		generator: commentary.New(),
		commands:  commentary.DefaultCommands(),
		retrieval: DefaultRetrieval(),
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEmbedder reuses fingerprints across runs through a content-keyed cache.
func WithEmbedder(e *vector.Embedder) Option {
	return func(o *engineOptions) { o.embedder = e }
}

// WithGenerator sets the commentary generator, mainly to pin its clock in tests.
func WithGenerator(g *commentary.Generator) Option {
	return func(o *engineOptions) {
		if g != nil {
			o.generator = g
		}
	}
}

// WithExecRunner sets the runner used by the self-healing executor.
func WithExecRunner(r iexec.CommandRunner) Option {
	return func(o *engineOptions) { o.execRunner = r }
}

// WithCommands sets the fallback build, test and lint commands.
func WithCommands(c commentary.Commands) Option {
	return func(o *engineOptions) { o.commands = c }
}

// WithRetrieval sets the ranking limits.
func WithRetrieval(r Retrieval) Option {
	return func(o *engineOptions) { o.retrieval = r }
}
