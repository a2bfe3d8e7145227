package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/architect/internal/commentary"
	"github.com/ShayCichocki/architect/internal/orchestrator"
	"github.com/ShayCichocki/architect/internal/render"
	"github.com/ShayCichocki/architect/internal/watch"
	"github.com/ShayCichocki/architect/internal/workspace"
)

var (
	planSpecFile string
	planDir      string
	planTests    []string
	planFormat   string
	planWatch    bool
	planHeal     bool
	planDetect   bool
)

var errNoSpec = errors.New("no specification: pass it as arguments or with --spec-file")

var planCmd = &cobra.Command{
	Use:   "plan [specification...]",
	Short: "Plan a specification against the workspace",
	Long: `Build a step plan from a specification, rank the workspace files
most relevant to it, and print manager, coder and reviewer notes with the
commands that verify the work.

Each non-empty line of the specification becomes one step. Write one
requirement per line, or pass a file with --spec-file.

Examples:
  architect plan "Add a login endpoint"
  architect plan --spec-file SPEC.md --dir ./app --format json
  architect plan --spec-file SPEC.md --watch
  architect plan --spec-file SPEC.md --heal`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planSpecFile, "spec-file", "f", "", "Read the specification from a file")
	planCmd.Flags().StringVarP(&planDir, "dir", "d", ".", "Workspace directory to collect")
	planCmd.Flags().StringArrayVarP(&planTests, "test", "t", nil, "Verification command (repeatable)")
	planCmd.Flags().StringVar(&planFormat, "format", "text", "Output format: text, json or yaml")
	planCmd.Flags().BoolVarP(&planWatch, "watch", "w", false, "Re-plan whenever the spec file changes")
	planCmd.Flags().BoolVar(&planHeal, "heal", false, "Run the first verification command with self-repair afterwards")
	planCmd.Flags().BoolVar(&planDetect, "detect", false, "Use the build, test and lint commands of the detected toolchain")
}

func runPlan(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(planFormat)
	if err != nil {
		return err
	}
	if planWatch && planSpecFile == "" {
		return errors.New("--watch needs --spec-file")
	}

	commands := configCommands(cfg)
	if planDetect {
		commands = detectedCommands(workspace.DetectProject(planDir), commands)
	}
	engine, err := newEngine(cfg, commands, configRetrieval(cfg))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	r := render.New(cmd.OutOrStdout(), format)
	tests := resolveTests(planTests, cfg.Commands.DefaultTest)
	once := func() error {
		spec, err := resolveSpec(args, planSpecFile)
		if err != nil {
			return err
		}
		return planOnce(ctx, engine, r, spec, tests, commands)
	}

	if err := once(); err != nil {
		return err
	}
	if !planWatch {
		return nil
	}

	w, err := watch.New(planSpecFile, watch.WithLogger(logger.Named("watch")))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", planSpecFile)
	return w.Run(ctx, func() {
		if err := once(); err != nil {
			logger.Error("re-plan failed", zap.Error(err))
		}
	})
}

func planOnce(ctx context.Context, engine *orchestrator.Engine, r *render.Renderer, spec string, tests []string, commands commentary.Commands) error {
	docs, err := collect(ctx, cfg, planDir)
	if err != nil {
		return err
	}

	result := engine.OrchestrateDocuments(spec, docs, tests)
	if err := r.Orchestration(result); err != nil {
		return err
	}
	if !planHeal {
		return nil
	}

	command := healCommand(tests, commands)
	if command == "" {
		return errors.New("--heal needs a test command")
	}
	run := engine.StreamSelfHealingCommand(ctx, command, planDir, r.Attempt)
	if err := r.CommandRun(run); err != nil {
		return err
	}
	if !run.Success && !planWatch {
		return errCommandFailed
	}
	return nil
}

// resolveSpec reads the specification from a file when one is named,
// otherwise joins the positional arguments.
func resolveSpec(args []string, specFile string) (string, error) {
	if specFile != "" {
		data, err := os.ReadFile(specFile)
		if err != nil {
			return "", fmt.Errorf("read spec file: %w", err)
		}
		return string(data), nil
	}
	spec := strings.Join(args, " ")
	if strings.TrimSpace(spec) == "" {
		return "", errNoSpec
	}
	return spec, nil
}

// resolveTests falls back to the configured default test command when
// none is given on the command line.
func resolveTests(flagTests []string, defaultTest string) []string {
	if len(flagTests) > 0 {
		return flagTests
	}
	if strings.TrimSpace(defaultTest) != "" {
		return []string{defaultTest}
	}
	return nil
}

func healCommand(tests []string, commands commentary.Commands) string {
	for _, t := range tests {
		if strings.TrimSpace(t) != "" {
			return t
		}
	}
	return commands.Test
}
