package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/architect/internal/render"
)

var errCommandFailed = errors.New("command failed")

var (
	runDir    string
	runFormat string
)

var runCmd = &cobra.Command{
	Use:   "run <command...>",
	Short: "Run a shell command with self-repair",
	Long: `Run a shell command, repairing known failures between attempts.

Recognized failures include missing Node.js, TypeScript and Python modules
(installed with the package manager the lockfiles point to) and ES module
syntax errors (fixed by setting "type": "module" in package.json). The
command runs at most three times.

Examples:
  architect run npm test
  architect run --dir ./app "node server.js"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(runFormat)
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg, configCommands(cfg), configRetrieval(cfg))
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		r := render.New(cmd.OutOrStdout(), format)
		result := engine.StreamSelfHealingCommand(ctx, strings.Join(args, " "), runDir, r.Attempt)
		if err := r.CommandRun(result); err != nil {
			return err
		}
		if !result.Success {
			return errCommandFailed
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runDir, "dir", "d", ".", "Working directory")
	runCmd.Flags().StringVar(&runFormat, "format", "text", "Output format: text, json or yaml")
	// Flags after the command belong to the command.
	runCmd.Flags().SetInterspersed(false)
}
