package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/architect/internal/render"
)

var (
	queryDir      string
	queryTopK     int
	queryMinScore float64
	queryFormat   string
)

var queryCmd = &cobra.Command{
	Use:   "query <text...>",
	Short: "Rank workspace files against free text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(queryFormat)
		if err != nil {
			return err
		}

		retrieval := configRetrieval(cfg)
		if cmd.Flags().Changed("top-k") {
			retrieval.TopK = queryTopK
		}
		if cmd.Flags().Changed("min-score") {
			retrieval.MinScore = queryMinScore
		}
		engine, err := newEngine(cfg, configCommands(cfg), retrieval)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		docs, err := collect(ctx, cfg, queryDir)
		if err != nil {
			return err
		}
		return render.New(cmd.OutOrStdout(), format).Hits(engine.Query(docs, strings.Join(args, " ")))
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryDir, "dir", "d", ".", "Workspace directory to collect")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 8, "Maximum number of hits")
	queryCmd.Flags().Float64Var(&queryMinScore, "min-score", 0.12, "Minimum cosine similarity")
	queryCmd.Flags().StringVar(&queryFormat, "format", "text", "Output format: text, json or yaml")
}
