package main

import (
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/architect/internal/render"
	"github.com/ShayCichocki/architect/internal/workspace"
)

var (
	scanDir    string
	scanFormat string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Summarize the workspace",
	Long: `Collect the workspace and report file counts per language, the
largest files by token count, and the detected toolchain commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(scanFormat)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		docs, err := collect(ctx, cfg, scanDir)
		if err != nil {
			return err
		}
		insights := workspace.Summarize(docs)
		// Contents are not useful in a summary.
		for i := range insights.TopFiles {
			insights.TopFiles[i].Content = ""
		}
		return render.New(cmd.OutOrStdout(), format).Insights(insights, workspace.DetectProject(scanDir))
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanDir, "dir", "d", ".", "Workspace directory to collect")
	scanCmd.Flags().StringVar(&scanFormat, "format", "text", "Output format: text, json or yaml")
}
